package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"soilstat/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "生成默认 config.toml",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if len(args) == 1 {
			path = args[0]
		}
		written, err := config.InitConfigFile(path, initForce)
		if err != nil {
			return err
		}
		fmt.Printf("已生成配置文件: %s\n", written)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "覆盖已存在的配置文件")
	rootCmd.AddCommand(initCmd)
}
