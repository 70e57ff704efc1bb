package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"soilstat/internal/classifier"
	"soilstat/internal/config"
	"soilstat/internal/standard"
)

var standardsCmd = &cobra.Command{
	Use:   "standards [id]",
	Short: "列出分级标准，或查看某个标准的属性与等级",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := standard.Load(config.StandardsDir(cfg), cfg.Grading.DefaultStandard)
		if err != nil {
			return err
		}

		if len(args) == 0 {
			for _, info := range registry.List() {
				mark := " "
				if info.ID == registry.DefaultID() {
					mark = "*"
				}
				fmt.Printf("%s %-12s %s", mark, info.ID, info.Name)
				if info.Description != "" {
					fmt.Printf("  (%s)", info.Description)
				}
				fmt.Println()
			}
			return nil
		}

		std, err := registry.Get(args[0])
		if err != nil {
			return err
		}
		rows := make([][]string, 0, std.Len())
		for _, a := range std.Attributes() {
			ranges := classifier.RangeLabels(a.Thresholds)
			grades := make([]string, len(a.Thresholds))
			for i, t := range a.Thresholds {
				grades[i] = t.Label + " " + ranges[i]
			}
			rows = append(rows, []string{a.Key, a.DisplayName, a.Unit, a.LandUseFilter.Label(), strings.Join(grades, "; ")})
		}
		fmt.Println(renderTable([]string{"属性", "名称", "单位", "适用地类", "等级"}, rows))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(standardsCmd)
}
