package model

import "time"

// ProcessRecord 处理记录（持久化的来源信息与预览）
type ProcessRecord struct {
	ProcessID      string             `json:"process_id"`
	StandardID     string             `json:"standard_id"`
	SampleFiles    []string           `json:"sample_files"`
	AreaFiles      []string           `json:"area_files"`
	AttributeCount int                `json:"attribute_count"`
	SampleRows     int                `json:"sample_rows"`
	AreaRows       int                `json:"area_rows"`
	Skipped        []string           `json:"skipped"`
	Preview        []AttributePreview `json:"preview,omitempty"`
	ExcelPath      string             `json:"-"`
	// 保存的原始上传文件，缓存失效后据此重新计算
	SamplePaths []string  `json:"-"`
	AreaPaths   []string  `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
