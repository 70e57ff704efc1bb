package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"soilstat/internal/config"
)

var (
	cfgFile string

	cfg     *config.AppConfig
	cfgInfo config.LoadConfigInfo
)

var rootCmd = &cobra.Command{
	Use:   "soilstat",
	Short: "土壤属性统计与分级工具",
	Long:  "soilstat 读取土壤普查样点与制图数据，按分级标准统计各属性，生成属性统计表。",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, info, err := config.LoadConfigWithInfo(cfgFile)
		if err != nil {
			log.Printf("加载配置失败，使用默认配置: %v", err)
			c = config.DefaultConfig()
			info = config.LoadConfigInfo{}
		}
		cfg, cfgInfo = c, info
		return nil
	},
	SilenceUsage: true,
	// 无子命令时启动服务
	RunE: runServe,
}

// Execute 入口
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件 (默认为可执行文件目录下的 config.toml)")
	addServeFlags(rootCmd)
}
