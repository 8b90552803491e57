package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/storefront/internal/api/middleware"
	"github.com/d60-Lab/storefront/internal/service"
	"github.com/d60-Lab/storefront/pkg/response"
)

type clearRecentRequest struct {
	Before *time.Time `json:"before"`
}

// ListRecent 最近动态（不含已清除记录）
// @Summary 最近动态
// @Tags 最近动态
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Param after query string false "RFC3339 时间，仅返回此后（含）的记录"
// @Success 200 {object} response.Response{data=pageResponse}
// @Router /api/v1/recent [get]
func (h *Handler) ListRecent(c *gin.Context) {
	var q service.RecentQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	page, err := h.activityService.Recent(c.Request.Context(), middleware.GetUserID(c), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, newPageResponse(page))
}

// ClearRecent 清除最近动态，记录仍保留在收件箱
// @Summary 清除最近动态
// @Tags 最近动态
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body clearRecentRequest false "before 为空时清除全部"
// @Success 200 {object} response.Response{data=map[string]int64}
// @Router /api/v1/recent/clear [post]
func (h *Handler) ClearRecent(c *gin.Context) {
	var req clearRecentRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	n, err := h.activityService.ClearRecent(c.Request.Context(), middleware.GetUserID(c), req.Before)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"cleared": n})
}
