package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	CurrentStandard string `json:"current_standard"`
	Standards       int    `json:"standards"`
	CachedRuns      int    `json:"cached_runs"`
	LastProcessID   string `json:"last_process_id,omitempty"`
	LastProcessTime string `json:"last_process_time,omitempty"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	resp := StatusResponse{
		CurrentStandard: h.currentStandard(),
		Standards:       len(h.registry.List()),
		CachedRuns:      h.runs.Len(),
	}

	records, err := h.store.ListProcessRecords(1)
	if err == nil && len(records) > 0 {
		resp.LastProcessID = records[0].ProcessID
		resp.LastProcessTime = records[0].CreatedAt.Format("2006-01-02 15:04:05")
	}

	c.JSON(http.StatusOK, resp)
}
