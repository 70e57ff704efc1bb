package v1

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"soilstat/internal/ingest"
	"soilstat/internal/model"
	"soilstat/internal/pipeline"
	"soilstat/internal/stats"
)

// errSourceUnavailable 原始文件缺失，无法重新计算
var errSourceUnavailable = errors.New("原始数据文件不可用")

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ProcessResponse 属性统计处理响应
type ProcessResponse struct {
	Success     bool                     `json:"success"`
	Message     string                   `json:"message"`
	ProcessID   string                   `json:"process_id"`
	StandardID  string                   `json:"standard_id"`
	Preview     []model.AttributePreview `json:"preview"`
	Skipped     []string                 `json:"skipped"`
	DownloadURL string                   `json:"download_url"`
}

// readUploads 逐个解析上传的表格
func readUploads(files []*multipart.FileHeader) ([]*ingest.Table, error) {
	tables := make([]*ingest.Table, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("打开上传文件 %s 失败: %w", fh.Filename, err)
		}
		t, err := ingest.Read(fh.Filename, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// ProcessAttributeData 上传样点与制图数据，生成属性统计表
// POST /api/report/attribute-data
func (h *Handler) ProcessAttributeData(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的表单数据"})
		return
	}
	sampleFiles := form.File["sample_files"]
	if len(sampleFiles) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请上传样点数据文件"})
		return
	}

	sampleTables, err := readUploads(sampleFiles)
	if err != nil {
		writeError(c, err)
		return
	}
	areaTables, err := readUploads(form.File["area_files"])
	if err != nil {
		writeError(c, err)
		return
	}

	stdID := c.PostForm("standard_id")
	if stdID == "" {
		stdID = h.currentStandard()
	}

	run, err := h.processor.Process(c.Request.Context(), pipeline.Input{
		StandardID:   stdID,
		SampleTables: sampleTables,
		AreaTables:   areaTables,
	}, nil)
	if err != nil {
		writeError(c, err)
		return
	}
	res := run.Result

	excelPath := ""
	if h.exportsDir != "" {
		excelPath = filepath.Join(h.exportsDir, res.ProcessID+".xlsx")
		if err := os.WriteFile(excelPath, res.ExcelBytes, 0644); err != nil {
			log.Printf("保存统计表失败: %v", err)
			excelPath = ""
		}
	}

	samplePaths := h.saveUploads(c, res.ProcessID, "sample", sampleFiles)
	areaPaths := h.saveUploads(c, res.ProcessID, "area", form.File["area_files"])

	if err := h.store.SaveProcessRecord(&model.ProcessRecord{
		ProcessID:      res.ProcessID,
		StandardID:     res.StandardID,
		SampleFiles:    res.SampleFiles,
		AreaFiles:      res.AreaFiles,
		AttributeCount: len(res.Preview),
		SampleRows:     run.Samples.TotalRows,
		AreaRows:       run.AreaRows,
		Skipped:        res.Skipped,
		Preview:        res.Preview,
		ExcelPath:      excelPath,
		SamplePaths:    samplePaths,
		AreaPaths:      areaPaths,
		CreatedAt:      res.CreatedAt,
	}); err != nil {
		log.Printf("保存处理记录失败: %v", err)
	}

	h.runs.Put(res.ProcessID, run)

	c.JSON(http.StatusOK, ProcessResponse{
		Success:     true,
		Message:     fmt.Sprintf("处理完成，共统计 %d 项属性", len(res.Preview)),
		ProcessID:   res.ProcessID,
		StandardID:  res.StandardID,
		Preview:     res.Preview,
		Skipped:     res.Skipped,
		DownloadURL: "/api/report/download/" + res.ProcessID,
	})
}

// saveUploads 保存原始上传文件：uploads/<process_id>/<kind>/<序号>/<文件名>；
// 任一文件保存失败时返回 nil，该记录不支持重新计算
func (h *Handler) saveUploads(c *gin.Context, processID, kind string, files []*multipart.FileHeader) []string {
	if h.uploadsDir == "" || len(files) == 0 {
		return nil
	}
	paths := make([]string, 0, len(files))
	for i, fh := range files {
		dst := filepath.Join(h.uploadsDir, processID, kind, strconv.Itoa(i), filepath.Base(fh.Filename))
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			log.Printf("保存上传文件失败: %v", err)
			return nil
		}
		if err := c.SaveUploadedFile(fh, dst); err != nil {
			log.Printf("保存上传文件 %s 失败: %v", fh.Filename, err)
			return nil
		}
		paths = append(paths, dst)
	}
	return paths
}

// reload 缓存失效后按处理记录保存的原始文件重新计算，沿用原处理编号
func (h *Handler) reload(ctx context.Context, processID string) (*pipeline.Run, error) {
	rec, err := h.store.GetProcessRecord(processID)
	if err != nil {
		return nil, err
	}
	if len(rec.SamplePaths) == 0 {
		return nil, fmt.Errorf("%w: %s 未保存原始文件", errSourceUnavailable, processID)
	}
	sampleTables, err := readFiles(rec.SamplePaths)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errSourceUnavailable, err)
	}
	areaTables, err := readFiles(rec.AreaPaths)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errSourceUnavailable, err)
	}

	run, err := h.processor.Process(ctx, pipeline.Input{
		ProcessID:    rec.ProcessID,
		StandardID:   rec.StandardID,
		SampleTables: sampleTables,
		AreaTables:   areaTables,
	}, nil)
	if err != nil {
		return nil, err
	}
	log.Printf("已从处理记录重新计算: %s", processID)
	h.runs.Put(processID, run)
	return run, nil
}

func readFiles(paths []string) ([]*ingest.Table, error) {
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

// AreaView 面积汇总
type AreaView struct {
	Total                float64                                       `json:"total"`
	Rows                 int                                           `json:"rows"`
	ByTownship           *model.OrderedMap[float64]                    `json:"by_township"`
	ByLandUse            *model.OrderedMap[float64]                    `json:"by_land_use"`
	BySecondaryLandUse   *model.OrderedMap[float64]                    `json:"by_secondary_land_use"`
	BySoilType           *model.OrderedMap[float64]                    `json:"by_soil_type"`
	ByTownshipAndLandUse *model.OrderedMap[*model.OrderedMap[float64]] `json:"by_township_and_land_use"`
	UnknownLandUse       []string                                      `json:"unknown_land_use"`
}

// ProcessDetail 完整统计结果
type ProcessDetail struct {
	ProcessID      string                                   `json:"process_id"`
	StandardID     string                                   `json:"standard_id"`
	Attributes     *model.OrderedMap[*model.AttributeStats] `json:"attributes"`
	Skipped        []string                                 `json:"skipped"`
	UnknownLandUse []string                                 `json:"unknown_land_use"`
	Area           *AreaView                                `json:"area,omitempty"`
	GradeAreas     *model.OrderedMap[*stats.GradeArea]      `json:"grade_areas,omitempty"`
}

// GetProcess 按 process_id 取回完整统计结果；缓存失效时从保存的原始文件重新计算
// GET /api/report/process/:id
func (h *Handler) GetProcess(c *gin.Context) {
	id := c.Param("id")
	run, ok := h.runs.Get(id)
	if !ok {
		var err error
		run, err = h.reload(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
	}

	detail := ProcessDetail{
		ProcessID:      run.Result.ProcessID,
		StandardID:     run.Result.StandardID,
		Attributes:     run.Samples.Attributes,
		Skipped:        run.Result.Skipped,
		UnknownLandUse: run.Samples.UnknownLandUse,
		GradeAreas:     run.GradeAreas,
	}
	if a := run.Area; a != nil {
		detail.Area = &AreaView{
			Total:                a.Total,
			Rows:                 a.Rows,
			ByTownship:           a.ByTownship,
			ByLandUse:            a.ByLandUse,
			BySecondaryLandUse:   a.BySecondaryLandUse,
			BySoilType:           a.BySoilType,
			ByTownshipAndLandUse: a.ByTownshipAndLandUse,
			UnknownLandUse:       a.UnknownLandUse,
		}
	}
	c.JSON(http.StatusOK, detail)
}

// Download 下载统计表；缓存过期后读取已保存的文件
// GET /api/report/download/:id
func (h *Handler) Download(c *gin.Context) {
	id := c.Param("id")

	if run, ok := h.runs.Get(id); ok {
		c.Header("Content-Disposition", buildReportContentDisposition(id))
		c.Data(http.StatusOK, xlsxContentType, run.Result.ExcelBytes)
		return
	}

	rec, err := h.store.GetProcessRecord(id)
	if err != nil {
		writeError(c, err)
		return
	}
	if rec.ExcelPath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "统计表文件不存在"})
		return
	}
	if _, err := os.Stat(rec.ExcelPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "统计表文件不存在"})
		return
	}
	c.Header("Content-Disposition", buildReportContentDisposition(id))
	c.Header("Content-Type", xlsxContentType)
	c.File(rec.ExcelPath)
}

func buildReportContentDisposition(processID string) string {
	asciiName := fmt.Sprintf("soil-attribute-stats-%s.xlsx", processID)
	utf8Name := fmt.Sprintf("土壤属性统计表_%s.xlsx", processID)
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", asciiName, url.PathEscape(utf8Name))
}
