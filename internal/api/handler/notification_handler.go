package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/storefront/internal/api/middleware"
	"github.com/d60-Lab/storefront/internal/service"
	"github.com/d60-Lab/storefront/pkg/response"
)

// ListNotifications 收件箱
// @Summary 通知列表（按偏好过滤，含已清除记录）
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param filter query string false "all | unread" default(all)
// @Param search query string false "标题或内容关键字"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=pageResponse}
// @Failure 400 {object} response.Response
// @Router /api/v1/notifications [get]
func (h *Handler) ListNotifications(c *gin.Context) {
	var q service.InboxQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	page, err := h.activityService.Inbox(c.Request.Context(), middleware.GetUserID(c), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, newPageResponse(page))
}

// GetNotification 查看单条通知（同时标记已读）
// @Summary 通知详情
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param id path string true "通知ID"
// @Success 200 {object} response.Response{data=model.Notification}
// @Failure 404 {object} response.Response
// @Router /api/v1/notifications/{id} [get]
func (h *Handler) GetNotification(c *gin.Context) {
	n, err := h.activityService.Get(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, n)
}

// MarkNotificationRead 标记已读，重复调用结果不变
// @Summary 标记通知已读
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param id path string true "通知ID"
// @Success 200 {object} response.Response{data=model.Notification}
// @Failure 404 {object} response.Response
// @Router /api/v1/notifications/{id}/read [put]
// @Router /api/v1/recent/{id}/read [put]
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	n, err := h.activityService.MarkRead(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, n)
}

// MarkAllNotificationsRead 全部已读
// @Summary 全部标记已读
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=map[string]int64}
// @Router /api/v1/notifications/read-all [put]
// @Router /api/v1/recent/read-all [put]
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	n, err := h.activityService.MarkAllRead(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"modified": n})
}

// GetPreferences 通知偏好，未初始化时写入默认值
// @Summary 获取通知偏好
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=model.NotificationPreferences}
// @Router /api/v1/notifications/preferences [get]
func (h *Handler) GetPreferences(c *gin.Context) {
	prefs, err := h.preferenceService.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, prefs)
}

// UpdatePreference 修改单个偏好开关
// @Summary 更新通知偏好
// @Tags 通知
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.UpdatePreferenceInput true "偏好开关"
// @Success 200 {object} response.Response{data=model.NotificationPreferences}
// @Failure 400 {object} response.Response
// @Router /api/v1/notifications/preferences [put]
func (h *Handler) UpdatePreference(c *gin.Context) {
	var req service.UpdatePreferenceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	prefs, err := h.preferenceService.Update(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, prefs)
}

// SendAdminMessage 管理员广播
// @Summary 发送管理员消息
// @Tags 通知
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.AdminMessageInput true "消息内容；recipientIds 为空时发给除自己外的所有人"
// @Success 201 {object} response.Response{data=map[string]int}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/notifications/admin-message [post]
func (h *Handler) SendAdminMessage(c *gin.Context) {
	var req service.AdminMessageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	req.SenderID = middleware.GetUserID(c)
	sent, err := h.broadcastService.SendAdminMessage(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"recipients": len(sent)})
}
