package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/repository"
	"github.com/d60-Lab/storefront/internal/service"
)

// Handler HTTP 处理器集合
type Handler struct {
	activityService     service.ActivityService
	preferenceService   service.PreferenceService
	broadcastService    service.BroadcastService
	orderService        service.OrderService
	productService      service.ProductService
	subscriptionService service.SubscriptionService
	vapidPublicKey      string
}

// Services 处理器依赖
type Services struct {
	Activity       service.ActivityService
	Preference     service.PreferenceService
	Broadcast      service.BroadcastService
	Order          service.OrderService
	Product        service.ProductService
	Subscription   service.SubscriptionService
	VAPIDPublicKey string
}

func NewHandler(s Services) *Handler {
	return &Handler{
		activityService:     s.Activity,
		preferenceService:   s.Preference,
		broadcastService:    s.Broadcast,
		orderService:        s.Order,
		productService:      s.Product,
		subscriptionService: s.Subscription,
		vapidPublicKey:      s.VAPIDPublicKey,
	}
}

// pageResponse 分页结果
type pageResponse struct {
	Items    []*model.Notification `json:"items"`
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"pageSize"`
	HasMore  bool                  `json:"hasMore"`
}

func newPageResponse(p *repository.NotificationPage) pageResponse {
	items := p.Items
	if items == nil {
		items = []*model.Notification{}
	}
	return pageResponse{Items: items, Total: p.Total, Page: p.Page, PageSize: p.PageSize, HasMore: p.HasMore}
}

// bindOptionalJSON 请求体可选；长度未知（分块传输）时同样解析，空体保持零值
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
