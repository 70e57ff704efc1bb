// Package pipeline 串联读取、统计与报表组装
package pipeline

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"soilstat/internal/ingest"
	"soilstat/internal/landuse"
	"soilstat/internal/model"
	"soilstat/internal/report"
	"soilstat/internal/standard"
	"soilstat/internal/stats"
)

// 地类面积合计与总面积的相对误差上限
const conservationTolerance = 1e-6

// Options 处理参数
type Options struct {
	Columns     ingest.Columns
	Percentiles []int
	AreaUnit    string
	Concurrency int
}

// Input 一次处理的输入表
type Input struct {
	// 非空时沿用该编号（从处理记录重新计算）
	ProcessID    string
	StandardID   string
	SampleTables []*ingest.Table
	AreaTables   []*ingest.Table
}

// Run 一次处理的完整结果，供 process_id 回查
type Run struct {
	Result     *model.ProcessResult
	Standard   *model.GradingStandard
	Samples    *stats.SampleResult
	Area       *stats.AreaResult
	GradeAreas *model.OrderedMap[*stats.GradeArea]
	AreaRows   int
	// 面积无效被跳过的图斑数
	SkippedAreaRows int
}

// Processor 处理器，无共享可变状态，可并发调用
type Processor struct {
	registry  *standard.Registry
	taxonomy  *landuse.Taxonomy
	assembler *report.Assembler
	opts      Options

	now   func() time.Time
	newID func() string
}

// NewProcessor 创建处理器
func NewProcessor(registry *standard.Registry, opts Options) *Processor {
	if len(opts.Columns.LandUse) == 0 {
		opts.Columns = ingest.DefaultColumns().Merge(opts.Columns)
	}
	if len(opts.Percentiles) == 0 {
		opts.Percentiles = stats.DefaultPercentiles
	}
	tx := landuse.Default()
	return &Processor{
		registry:  registry,
		taxonomy:  tx,
		assembler: report.NewAssembler(tx, opts.AreaUnit),
		opts:      opts,
		now:       time.Now,
		newID:     func() string { return uuid.New().String()[:8] },
	}
}

// Process 读取 -> 并行统计 -> 组装工作簿 -> 预览
func (p *Processor) Process(ctx context.Context, in Input, progress func(ProgressEvent)) (*Run, error) {
	stdID := in.StandardID
	if stdID == "" {
		stdID = p.registry.DefaultID()
	}
	std, err := p.registry.Get(stdID)
	if err != nil {
		return nil, err
	}
	if len(in.SampleTables) == 0 {
		return nil, &model.InputFormatError{Table: "样点数据", Reason: "未提供样点数据文件"}
	}

	reportProgress(progress, 5, "读取样点数据")
	sampleTables := make([][]model.SampleRow, 0, len(in.SampleTables))
	sampleFiles := make([]string, 0, len(in.SampleTables))
	for _, t := range in.SampleTables {
		rows, err := ingest.SampleRows(t, p.opts.Columns, std)
		if err != nil {
			return nil, fmt.Errorf("样点数据: %w", err)
		}
		sampleTables = append(sampleTables, rows)
		sampleFiles = append(sampleFiles, t.Name)
	}

	reportProgress(progress, 15, "读取制图数据")
	areaTables := make([][]model.AreaRow, 0, len(in.AreaTables))
	areaFiles := make([]string, 0, len(in.AreaTables))
	run := &Run{Standard: std}
	for _, t := range in.AreaTables {
		rows, skipped, err := ingest.AreaRows(t, p.opts.Columns, std)
		if err != nil {
			return nil, fmt.Errorf("制图数据: %w", err)
		}
		areaTables = append(areaTables, rows)
		areaFiles = append(areaFiles, t.Name)
		run.AreaRows += len(rows)
		run.SkippedAreaRows += skipped
	}

	reportProgress(progress, 30, "统计计算")
	g, gctx := errgroup.WithContext(ctx)
	if len(areaTables) > 0 {
		g.Go(func() error {
			run.Area = stats.AggregateArea(areaTables, p.taxonomy)
			run.GradeAreas = stats.AggregateGradeAreas(areaTables, std, p.taxonomy)
			if d := run.Area.ConservationDelta(); math.Abs(d) > conservationTolerance*math.Max(1, run.Area.Total) {
				return fmt.Errorf("地类面积之和与总面积不一致: 差值 %g", d)
			}
			return nil
		})
	}
	g.Go(func() error {
		res, err := stats.AggregateSamples(gctx, sampleTables, std, stats.SampleOptions{
			Percentiles: p.opts.Percentiles,
			Taxonomy:    p.taxonomy,
			Concurrency: p.opts.Concurrency,
		})
		if err != nil {
			return err
		}
		run.Samples = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("统计失败: %w", err)
	}

	reportProgress(progress, 70, "生成统计表")
	data, err := p.assembler.Build(report.Input{
		Standard:   std,
		Area:       run.Area,
		Samples:    run.Samples,
		GradeAreas: run.GradeAreas,
	})
	if err != nil {
		return nil, fmt.Errorf("生成工作簿失败: %w", err)
	}

	skipped := make([]string, 0, len(run.Samples.Skipped))
	for _, s := range run.Samples.Skipped {
		skipped = append(skipped, s.Attribute)
	}
	id := in.ProcessID
	if id == "" {
		id = p.newID()
	}
	run.Result = &model.ProcessResult{
		ProcessID:   id,
		StandardID:  std.ID(),
		ExcelBytes:  data,
		Preview:     stats.Summarize(run.Samples, std),
		Skipped:     skipped,
		SampleFiles: sampleFiles,
		AreaFiles:   areaFiles,
		CreatedAt:   p.now(),
	}

	log.Printf("处理完成: %s 标准=%s 属性=%d 跳过=%d 样点=%d 图斑=%d",
		run.Result.ProcessID, std.ID(), len(run.Result.Preview), len(skipped), run.Samples.TotalRows, run.AreaRows)
	reportProgress(progress, 100, "完成")
	return run, nil
}

// Standard 按 id 取标准，空 id 使用默认标准
func (p *Processor) Standard(id string) (*model.GradingStandard, error) {
	if id == "" {
		id = p.registry.DefaultID()
	}
	return p.registry.Get(id)
}
