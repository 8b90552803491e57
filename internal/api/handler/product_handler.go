package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/storefront/internal/api/middleware"
	"github.com/d60-Lab/storefront/internal/service"
	"github.com/d60-Lab/storefront/pkg/response"
)

// CreateProduct 卖家上架商品，发布状态会通知所有买家
// @Summary 创建商品
// @Tags 商品
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateProductInput true "商品信息"
// @Success 201 {object} response.Response{data=model.Product}
// @Failure 400 {object} response.Response
// @Router /api/v1/products [post]
func (h *Handler) CreateProduct(c *gin.Context) {
	var req service.CreateProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	req.SellerID = middleware.GetUserID(c)
	p, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, p)
}

// UpdateProduct 局部更新商品，降价与库存变化触发通知
// @Summary 更新商品
// @Tags 商品
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "商品ID"
// @Param request body service.UpdateProductInput true "需要修改的字段"
// @Success 200 {object} response.Response{data=model.Product}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/products/{id} [put]
func (h *Handler) UpdateProduct(c *gin.Context) {
	var req service.UpdateProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.productService.Update(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, p)
}
