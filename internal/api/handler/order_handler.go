package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/storefront/internal/api/middleware"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/service"
	"github.com/d60-Lab/storefront/pkg/response"
)

type updateOrderStatusRequest struct {
	Status       model.OrderStatus  `json:"status" binding:"required"`
	CancelReason model.CancelReason `json:"cancelReason"`
}

type cancelOrderRequest struct {
	Reason model.CancelReason `json:"reason"`
}

// PlaceOrder 下单
// @Summary 创建订单
// @Tags 订单
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.PlaceOrderInput true "订单明细"
// @Success 201 {object} response.Response{data=model.Order}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/orders [post]
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req service.PlaceOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	req.BuyerID = middleware.GetUserID(c)
	order, err := h.orderService.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, order)
}

// GetOrder 订单详情（买家或卖家）
// @Summary 订单详情
// @Tags 订单
// @Produce json
// @Security BearerAuth
// @Param id path string true "订单ID"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 404 {object} response.Response
// @Router /api/v1/orders/{id} [get]
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orderService.Get(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, order)
}

// UpdateOrderStatus 卖家推进订单状态
// @Summary 更新订单状态
// @Tags 订单
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "订单ID"
// @Param request body updateOrderStatusRequest true "目标状态；取消时必须给出原因"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/orders/{id}/status [put]
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	order, err := h.orderService.UpdateStatus(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), req.Status, req.CancelReason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, order)
}

// CancelOrder 买家取消订单
// @Summary 取消订单
// @Tags 订单
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "订单ID"
// @Param request body cancelOrderRequest false "取消原因，默认 Customer requested cancellation"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/orders/{id}/cancel [post]
func (h *Handler) CancelOrder(c *gin.Context) {
	var req cancelOrderRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	order, err := h.orderService.Cancel(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, order)
}
