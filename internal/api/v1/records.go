package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListProcessRecords 最近的处理记录
// GET /api/report/process-records?limit=
func (h *Handler) ListProcessRecords(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的 limit"})
		return
	}
	records, err := h.store.ListProcessRecords(limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":   len(records),
		"records": records,
	})
}

// GetProcessRecord 处理记录详情（含预览）
// GET /api/report/process-records/:id
func (h *Handler) GetProcessRecord(c *gin.Context) {
	rec, err := h.store.GetProcessRecord(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
