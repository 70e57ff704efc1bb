package server

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	v1 "soilstat/internal/api/v1"
	"soilstat/internal/config"
	"soilstat/internal/pipeline"
	"soilstat/internal/session"
	"soilstat/internal/standard"
	"soilstat/internal/store"
)

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	store  *store.Store
	api    *v1.Handler
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig) (*Server, error) {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}

	registry, err := standard.Load(config.StandardsDir(cfg), cfg.Grading.DefaultStandard)
	if err != nil {
		return nil, fmt.Errorf("加载分级标准失败: %w", err)
	}

	sqliteStore, err := store.New(filepath.Join(dataDir, "soilstat.db"), cfg.Session.MaxRecords)
	if err != nil {
		return nil, fmt.Errorf("初始化数据库失败: %w", err)
	}

	processor := pipeline.NewProcessor(registry, pipeline.Options{
		Columns:     cfg.Columns,
		Percentiles: cfg.Grading.Percentiles,
		AreaUnit:    cfg.Data.AreaUnit,
		Concurrency: cfg.Grading.Concurrency,
	})
	runs := session.New[*pipeline.Run](time.Duration(cfg.Session.TTLMinutes)*time.Minute, cfg.Session.MaxRuns)

	router := gin.Default()
	if cfg.Server.MaxUploadMB > 0 {
		router.MaxMultipartMemory = int64(cfg.Server.MaxUploadMB) << 20
	}

	s := &Server{
		router: router,
		store:  sqliteStore,
		api:    v1.NewHandler(sqliteStore, registry, processor, runs, dataDir),
	}
	s.setupRoutes()

	log.Printf("分级标准: %d 套，默认 %s", len(registry.List()), registry.DefaultID())
	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Expose-Headers", "Content-Disposition")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	{
		s.api.RegisterRoutes(api)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "接口不存在"})
	})
}

// Handler 返回 http.Handler（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close 关闭数据库
func (s *Server) Close() error {
	return s.store.Close()
}
