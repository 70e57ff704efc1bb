package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"soilstat/internal/ingest"
	"soilstat/internal/standard"
	"soilstat/internal/stats"
)

// AppConfig 应用配置
type AppConfig struct {
	Server  ServerConfig   `toml:"server"`
	Data    DataConfig     `toml:"data"`
	Grading GradingConfig  `toml:"grading"`
	Columns ingest.Columns `toml:"columns"`
	Session SessionConfig  `toml:"session"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
	// 单次上传大小上限（MB）
	MaxUploadMB int `toml:"max_upload_mb"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir  string `toml:"data_dir"`
	AreaUnit string `toml:"area_unit"`
}

// GradingConfig 分级与统计配置
type GradingConfig struct {
	DefaultStandard string `toml:"default_standard"`
	StandardsDir    string `toml:"standards_dir"`
	Percentiles     []int  `toml:"percentiles"`
	Concurrency     int    `toml:"concurrency"`
}

// SessionConfig 处理结果缓存配置
type SessionConfig struct {
	TTLMinutes int `toml:"ttl_minutes"`
	MaxRuns    int `toml:"max_runs"`
	MaxRecords int `toml:"max_records"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        20262,
			MaxUploadMB: 200,
		},
		Data: DataConfig{
			DataDir:  "data",
			AreaUnit: "亩",
		},
		Grading: GradingConfig{
			DefaultStandard: standard.JiangsuID,
			StandardsDir:    "standards",
			Percentiles:     append([]int(nil), stats.DefaultPercentiles...),
		},
		Columns: ingest.DefaultColumns(),
		Session: SessionConfig{
			TTLMinutes: 120,
			MaxRuns:    20,
			MaxRecords: 50,
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw struct {
		Server map[string]any `toml:"server"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}
	_, ok := raw.Server["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

func exeDirOrDot() string {
	dir, err := GetExeDir()
	if err != nil || dir == "" {
		return "."
	}
	return dir
}

// LoadConfigWithInfo 加载配置；path 为空时读取可执行文件同目录的 config.toml
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = filepath.Join(exeDirOrDot(), "config.toml")
	}
	info := LoadConfigInfo{Path: path}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	case err != nil:
		return nil, info, err
	default:
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, info, err
		}
	}

	// 列名只覆盖配置了的角色
	cfg.Columns = ingest.DefaultColumns().Merge(cfg.Columns)

	// 环境变量覆盖
	if v := os.Getenv("SOILSTAT_STANDARDS_DIR"); v != "" {
		cfg.Grading.StandardsDir = v
	}
	if v := os.Getenv("SOILSTAT_DATA_DIR"); v != "" {
		cfg.Data.DataDir = v
	}

	return cfg, info, nil
}

// SaveConfig 保存配置到 path
func SaveConfig(cfg *AppConfig, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ErrConfigExists 配置文件已存在
var ErrConfigExists = errors.New("配置文件已存在")

// InitConfigFile 写出默认配置；path 为空时写到可执行文件目录，已存在且 force 为 false 时拒绝覆盖
func InitConfigFile(path string, force bool) (string, error) {
	if path == "" {
		path = filepath.Join(exeDirOrDot(), "config.toml")
	}
	if _, err := os.Stat(path); err == nil && !force {
		return path, fmt.Errorf("%w: %s", ErrConfigExists, path)
	} else if err != nil && !os.IsNotExist(err) {
		return path, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return path, err
	}
	return path, SaveConfig(DefaultConfig(), path)
}

// resolve 相对路径以可执行文件目录为基准
func resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(exeDirOrDot(), p)
}

// EnsureDataDir 确保数据目录及子目录存在
func EnsureDataDir(cfg *AppConfig) (string, error) {
	dataDir := resolve(cfg.Data.DataDir)
	for _, sub := range []string{"", "exports", "uploads"} {
		if err := os.MkdirAll(filepath.Join(dataDir, sub), 0755); err != nil {
			return "", err
		}
	}
	return dataDir, nil
}

// StandardsDir 标准文件目录的绝对路径
func StandardsDir(cfg *AppConfig) string {
	if cfg.Grading.StandardsDir == "" {
		return ""
	}
	return resolve(cfg.Grading.StandardsDir)
}
