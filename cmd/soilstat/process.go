package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"soilstat/internal/config"
	"soilstat/internal/ingest"
	"soilstat/internal/pipeline"
	"soilstat/internal/standard"
)

var (
	processSamples  []string
	processAreas    []string
	processOutput   string
	processStandard string
	processQuiet    bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "离线生成属性统计表",
	Example: `  soilstat process --sample samples.csv --area map_a.xlsx --area map_b.xlsx -o stats.xlsx
  soilstat process --sample samples.csv --standard jiangsu`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(processSamples) == 0 {
			return fmt.Errorf("至少需要一个 --sample 样点数据文件")
		}

		registry, err := standard.Load(config.StandardsDir(cfg), cfg.Grading.DefaultStandard)
		if err != nil {
			return err
		}

		sampleTables, err := readTables(processSamples)
		if err != nil {
			return err
		}
		areaTables, err := readTables(processAreas)
		if err != nil {
			return err
		}

		processor := pipeline.NewProcessor(registry, pipeline.Options{
			Columns:     cfg.Columns,
			Percentiles: cfg.Grading.Percentiles,
			AreaUnit:    cfg.Data.AreaUnit,
			Concurrency: cfg.Grading.Concurrency,
		})
		var progress func(pipeline.ProgressEvent)
		if !processQuiet {
			progress = func(e pipeline.ProgressEvent) {
				fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", e.Percent, e.Stage)
			}
		}

		run, err := processor.Process(context.Background(), pipeline.Input{
			StandardID:   processStandard,
			SampleTables: sampleTables,
			AreaTables:   areaTables,
		}, progress)
		if err != nil {
			return err
		}

		out := processOutput
		if out == "" {
			out = fmt.Sprintf("土壤属性统计表_%s.xlsx", run.Result.ProcessID)
		}
		if err := os.WriteFile(out, run.Result.ExcelBytes, 0644); err != nil {
			return fmt.Errorf("写入 %s 失败: %w", out, err)
		}

		fmt.Println(renderPreview(run.Result.Preview))
		if len(run.Result.Skipped) > 0 {
			fmt.Printf("无有效数据已跳过: %s\n", strings.Join(run.Result.Skipped, ", "))
		}
		if len(run.Samples.UnknownLandUse) > 0 {
			fmt.Printf("未识别地类（归入其他）: %s\n", strings.Join(run.Samples.UnknownLandUse, ", "))
		}
		fmt.Printf("已生成: %s (标准 %s, 处理编号 %s)\n", out, run.Result.StandardID, run.Result.ProcessID)
		return nil
	},
}

func readTables(paths []string) ([]*ingest.Table, error) {
	tables := make([]*ingest.Table, 0, len(paths))
	for _, p := range paths {
		t, err := ingest.ReadFile(p)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func init() {
	processCmd.Flags().StringSliceVar(&processSamples, "sample", nil, "样点数据文件 (csv/xlsx，可重复)")
	processCmd.Flags().StringSliceVar(&processAreas, "area", nil, "制图数据文件 (csv/xlsx，可重复)")
	processCmd.Flags().StringVarP(&processOutput, "output", "o", "", "输出 xlsx 路径")
	processCmd.Flags().StringVar(&processStandard, "standard", "", "分级标准 id (默认取配置)")
	processCmd.Flags().BoolVarP(&processQuiet, "quiet", "q", false, "不输出进度")
	rootCmd.AddCommand(processCmd)
}
