package v1

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"soilstat/internal/model"
	"soilstat/internal/pipeline"
	"soilstat/internal/session"
	"soilstat/internal/standard"
	"soilstat/internal/store"
)

// Handler API 处理器
type Handler struct {
	store      *store.Store
	registry   *standard.Registry
	processor  *pipeline.Processor
	runs       *session.Store[*pipeline.Run]
	exportsDir string
	uploadsDir string
}

// NewHandler 创建 API 处理器；工作簿保存到 dataDir/exports，上传文件保存到 dataDir/uploads。
// dataDir 为空时不落盘。
func NewHandler(st *store.Store, registry *standard.Registry, processor *pipeline.Processor, runs *session.Store[*pipeline.Run], dataDir string) *Handler {
	h := &Handler{
		store:     st,
		registry:  registry,
		processor: processor,
		runs:      runs,
	}
	if dataDir != "" {
		h.exportsDir = filepath.Join(dataDir, "exports")
		h.uploadsDir = filepath.Join(dataDir, "uploads")
		for _, dir := range []string{h.exportsDir, h.uploadsDir} {
			if err := os.MkdirAll(dir, 0755); err != nil {
				log.Printf("创建目录 %s 失败: %v", dir, err)
			}
		}
	}
	return h
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 分级标准
	router.GET("/grading/standards", h.ListStandards)
	router.GET("/grading/standards/current", h.GetCurrentStandard)
	router.POST("/grading/standards/current", h.SetCurrentStandard)
	router.GET("/grading/standards/:id", h.GetStandard)
	router.GET("/grading/attributes", h.ListAttributes)
	router.POST("/grading/attributes/detect", h.DetectAttributes)
	router.GET("/grading/classify", h.ClassifyValue)

	// 属性统计
	router.POST("/report/attribute-data", h.ProcessAttributeData)
	router.GET("/report/process/:id", h.GetProcess)
	router.GET("/report/download/:id", h.Download)

	// 处理记录
	router.GET("/report/process-records", h.ListProcessRecords)
	router.GET("/report/process-records/:id", h.GetProcessRecord)
}

// currentStandard 已保存的当前标准；失效时退回默认标准
func (h *Handler) currentStandard() string {
	id, err := h.store.GetCurrentStandard(h.registry.DefaultID())
	if err != nil {
		log.Printf("读取当前标准失败: %v", err)
		return h.registry.DefaultID()
	}
	if !h.registry.Has(id) {
		return h.registry.DefaultID()
	}
	return id
}

// writeError 按错误类别返回状态码
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, standard.ErrUnknownStandard), errors.Is(err, store.ErrRecordNotFound),
		errors.Is(err, errSourceUnavailable):
		status = http.StatusNotFound
	default:
		switch model.KindOf(err) {
		case model.KindInputFormat:
			status = http.StatusBadRequest
		case model.KindClassificationConfig:
			status = http.StatusUnprocessableEntity
		}
	}
	if status == http.StatusInternalServerError {
		log.Printf("请求处理失败 %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
