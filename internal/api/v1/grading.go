package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"soilstat/internal/classifier"
	"soilstat/internal/ingest"
	"soilstat/internal/model"
	"soilstat/internal/standard"
)

// AttributeView 属性定义及分级区间
type AttributeView struct {
	Key            string              `json:"key"`
	Name           string              `json:"name"`
	Unit           string              `json:"unit"`
	LandUseFilter  model.LandUseFilter `json:"land_use_filter"`
	FilterLabel    string              `json:"filter_label"`
	ReverseDisplay bool                `json:"reverse_display"`
	Grades         []GradeView         `json:"grades"`
}

// GradeView 等级
type GradeView struct {
	Label       string `json:"label"`
	Range       string `json:"range"`
	Description string `json:"description,omitempty"`
}

// StandardView 分级标准详情
type StandardView struct {
	model.StandardInfo
	Current            bool            `json:"current"`
	ExcludeNonPositive bool            `json:"exclude_non_positive"`
	Attributes         []AttributeView `json:"attributes"`
}

func attributeViews(attrs []model.AttributeDefinition) []AttributeView {
	views := make([]AttributeView, 0, len(attrs))
	for _, a := range attrs {
		ranges := classifier.RangeLabels(a.Thresholds)
		grades := make([]GradeView, len(a.Thresholds))
		for i, t := range a.Thresholds {
			grades[i] = GradeView{Label: t.Label, Range: ranges[i], Description: t.Description}
		}
		views = append(views, AttributeView{
			Key:            a.Key,
			Name:           a.DisplayName,
			Unit:           a.Unit,
			LandUseFilter:  a.LandUseFilter,
			FilterLabel:    a.LandUseFilter.Label(),
			ReverseDisplay: a.ReverseDisplay,
			Grades:         grades,
		})
	}
	return views
}

// ListStandards 列出可用分级标准
// GET /api/grading/standards
func (h *Handler) ListStandards(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"current":   h.currentStandard(),
		"standards": h.registry.List(),
	})
}

// GetStandard 获取分级标准详情
// GET /api/grading/standards/:id
func (h *Handler) GetStandard(c *gin.Context) {
	std, err := h.registry.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardView{
		StandardInfo:       std.Info(),
		Current:            std.ID() == h.currentStandard(),
		ExcludeNonPositive: std.ExcludeNonPositive(),
		Attributes:         attributeViews(std.Attributes()),
	})
}

// GetCurrentStandard 当前分级标准
// GET /api/grading/standards/current
func (h *Handler) GetCurrentStandard(c *gin.Context) {
	std, err := h.registry.Get(h.currentStandard())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, std.Info())
}

// SetCurrentStandardRequest 切换标准请求
type SetCurrentStandardRequest struct {
	StandardID string `json:"standard_id" binding:"required"`
}

// SetCurrentStandard 切换当前分级标准
// POST /api/grading/standards/current
func (h *Handler) SetCurrentStandard(c *gin.Context) {
	var req SetCurrentStandardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 standard_id"})
		return
	}
	if !h.registry.Has(req.StandardID) {
		writeError(c, fmt.Errorf("%w: %s", standard.ErrUnknownStandard, req.StandardID))
		return
	}
	if err := h.store.SetCurrentStandard(req.StandardID); err != nil {
		writeError(c, err)
		return
	}
	std, _ := h.registry.Get(req.StandardID)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "已切换分级标准为 " + std.Info().Name,
		"standard": std.Info(),
	})
}

// ListAttributes 当前（或指定）标准的属性定义
// GET /api/grading/attributes?standard_id=
func (h *Handler) ListAttributes(c *gin.Context) {
	id := c.Query("standard_id")
	if id == "" {
		id = h.currentStandard()
	}
	attrs, err := h.registry.Attributes(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"standard_id": id,
		"attributes":  attributeViews(attrs),
	})
}

// DetectedFile 单个文件识别出的属性列
type DetectedFile struct {
	File       string   `json:"file"`
	Rows       int      `json:"rows"`
	Attributes []string `json:"attributes"`
}

// DetectAttributes 上传样点表，预览可识别的属性列
// POST /api/grading/attributes/detect
func (h *Handler) DetectAttributes(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的表单数据"})
		return
	}
	files := form.File["sample_files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请上传样点数据文件"})
		return
	}

	id := c.PostForm("standard_id")
	if id == "" {
		id = h.currentStandard()
	}
	std, err := h.registry.Get(id)
	if err != nil {
		writeError(c, err)
		return
	}
	tables, err := readUploads(files)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]DetectedFile, 0, len(tables))
	for _, t := range tables {
		keys := ingest.DetectAttributes(t, std)
		if keys == nil {
			keys = []string{}
		}
		out = append(out, DetectedFile{File: t.Name, Rows: len(t.Rows), Attributes: keys})
	}
	c.JSON(http.StatusOK, gin.H{
		"standard_id": std.ID(),
		"files":       out,
	})
}

// ClassifyValue 按当前（或指定）标准为单个属性值定级
// GET /api/grading/classify?attribute=OM&value=12.5&standard_id=
func (h *Handler) ClassifyValue(c *gin.Context) {
	value, err := strconv.ParseFloat(c.Query("value"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的 value"})
		return
	}
	id := c.Query("standard_id")
	if id == "" {
		id = h.currentStandard()
	}
	std, err := h.registry.Get(id)
	if err != nil {
		writeError(c, err)
		return
	}
	def, ok := std.Attribute(c.Query("attribute"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "属性不存在: " + c.Query("attribute")})
		return
	}

	idx := classifier.Index(value, def.Thresholds)
	c.JSON(http.StatusOK, gin.H{
		"standard_id": std.ID(),
		"attribute":   def.Key,
		"value":       value,
		"grade":       classifier.Classify(value, def.Thresholds),
		"range":       classifier.RangeLabels(def.Thresholds)[idx],
	})
}
