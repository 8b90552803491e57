package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/storefront/internal/api/middleware"
	"github.com/d60-Lab/storefront/internal/service"
	"github.com/d60-Lab/storefront/pkg/response"
)

type unregisterPushRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// VAPIDPublicKey 浏览器订阅所需的应用服务器公钥
// @Summary 获取 VAPID 公钥
// @Tags 推送
// @Produce json
// @Success 200 {object} response.Response{data=map[string]string}
// @Failure 404 {object} response.Response
// @Router /api/v1/push-subscription/public-key [get]
func (h *Handler) VAPIDPublicKey(c *gin.Context) {
	if h.vapidPublicKey == "" {
		response.NotFound(c, "web push is not configured")
		return
	}
	response.Success(c, gin.H{"publicKey": h.vapidPublicKey})
}

// RegisterPushSubscription 保存浏览器推送订阅，同一 endpoint 覆盖
// @Summary 注册推送订阅
// @Tags 推送
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.RegisterSubscriptionInput true "PushSubscription.toJSON()"
// @Success 201 {object} response.Response{data=model.PushSubscription}
// @Failure 400 {object} response.Response
// @Router /api/v1/push-subscription [post]
func (h *Handler) RegisterPushSubscription(c *gin.Context) {
	var req service.RegisterSubscriptionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	sub, err := h.subscriptionService.Register(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sub)
}

// UnregisterPushSubscription 删除自己的推送订阅
// @Summary 注销推送订阅
// @Tags 推送
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body unregisterPushRequest true "endpoint"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/push-subscription [delete]
func (h *Handler) UnregisterPushSubscription(c *gin.Context) {
	var req unregisterPushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.subscriptionService.Unregister(c.Request.Context(), middleware.GetUserID(c), req.Endpoint); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
