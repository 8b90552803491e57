package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/storefront/internal/apperr"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/notify"
	"github.com/d60-Lab/storefront/internal/repository"
)

// Notifier 事件生产者依赖的扇出入口
type Notifier interface {
	Fanout(ctx context.Context, d notify.Draft) ([]*model.Notification, error)
}

// transitions 订单状态机，终态无出边
var transitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:    {model.OrderStatusProcessing, model.OrderStatusCancelled},
	model.OrderStatusProcessing: {model.OrderStatusShipped, model.OrderStatusCancelled},
	model.OrderStatusShipped:    {model.OrderStatusDelivered, model.OrderStatusCancelled},
}

// CanTransition 判断 from -> to 是否合法
func CanTransition(from, to model.OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// OrderItemInput 下单明细
type OrderItemInput struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// PlaceOrderInput 下单请求
type PlaceOrderInput struct {
	BuyerID string           `json:"-"`
	Items   []OrderItemInput `json:"items" binding:"required,min=1,dive"`
}

// OrderService 订单服务
type OrderService interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*model.Order, error)
	Get(ctx context.Context, actorID, orderID string) (*model.Order, error)
	UpdateStatus(ctx context.Context, actorID, orderID string, target model.OrderStatus, reason model.CancelReason) (*model.Order, error)
	Cancel(ctx context.Context, buyerID, orderID string, reason model.CancelReason) (*model.Order, error)
}

type orderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	users    repository.UserRepository
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, users repository.UserRepository, notifier Notifier, log *zap.Logger) OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &orderService{
		orders:   orders,
		products: products,
		users:    users,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*model.Order, error) {
	if len(in.Items) == 0 {
		return nil, apperr.Validation("items", "order must contain at least one item")
	}
	ids := make([]string, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return nil, apperr.Validation("quantity", "must be at least 1")
		}
		ids = append(ids, it.ProductID)
	}
	found, err := s.products.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	order := &model.Order{BuyerID: in.BuyerID, Status: model.OrderStatusPending, CreatedAt: s.now().UTC()}
	for _, it := range in.Items {
		p, ok := byID[it.ProductID]
		if !ok || p.Status != model.ProductStatusPublished {
			return nil, apperr.NotFound("product", it.ProductID)
		}
		if order.SellerID == "" {
			order.SellerID = p.SellerID
		} else if order.SellerID != p.SellerID {
			return nil, apperr.Validation("items", "all items must come from the same seller")
		}
		order.Items = append(order.Items, model.OrderItem{ProductID: p.ID, Quantity: it.Quantity, Price: p.Price})
		order.TotalAmount += p.Price * float64(it.Quantity)
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, apperr.Conflict("%s", err.Error())
		}
		return nil, err
	}

	payload := model.OrderPayload{OrderID: order.ID, OrderStatus: model.OrderStatusPending}
	s.notify(ctx, notify.Draft{
		RecipientIDs: []string{order.BuyerID},
		Type:         model.TypeOrderStatus,
		Title:        "Order Placed Successfully",
		Message:      fmt.Sprintf("Your order #%s has been placed successfully", order.OrderNumber),
		Payload:      payload,
	})
	s.notify(ctx, notify.Draft{
		RecipientIDs: []string{order.SellerID},
		Type:         model.TypeNewOrder,
		Title:        "New Order Received",
		Message:      fmt.Sprintf("You have received a new order #%s", order.OrderNumber),
		Payload:      payload,
		SenderID:     order.BuyerID,
	})
	return order, nil
}

// Get 仅买家或卖家可见，其他人视为不存在
func (s *orderService) Get(ctx context.Context, actorID, orderID string) (*model.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != actorID && order.SellerID != actorID {
		return nil, apperr.NotFound("order", orderID)
	}
	return order, nil
}

// UpdateStatus 卖家推进订单状态；取消必须给出封闭集合内的原因
func (s *orderService) UpdateStatus(ctx context.Context, actorID, orderID string, target model.OrderStatus, reason model.CancelReason) (*model.Order, error) {
	if !target.Valid() {
		return nil, apperr.Validation("status", fmt.Sprintf("unknown order status %q", target))
	}
	if target == model.OrderStatusCancelled && !reason.Valid() {
		return nil, apperr.Validation("cancelReason", "a valid cancellation reason is required")
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.SellerID != actorID {
		return nil, apperr.NotFound("order", orderID)
	}
	if err := s.transition(ctx, order, target, reason); err != nil {
		return nil, err
	}

	if target == model.OrderStatusCancelled {
		s.notifyCancelled(ctx, order, actorID, "")
		return order, nil
	}
	s.notify(ctx, notify.Draft{
		RecipientIDs: []string{order.BuyerID},
		Type:         model.TypeOrderStatus,
		Title:        "Order " + capitalize(string(target)),
		Message:      statusMessage(order.OrderNumber, target),
		Payload:      model.OrderPayload{OrderID: order.ID, OrderNumber: order.OrderNumber, OrderStatus: target},
		SenderID:     actorID,
	})
	return order, nil
}

// Cancel 买家主动取消，未给原因时按客户申请处理
func (s *orderService) Cancel(ctx context.Context, buyerID, orderID string, reason model.CancelReason) (*model.Order, error) {
	if reason == "" {
		reason = model.CancelReasonCustomer
	}
	if !reason.Valid() {
		return nil, apperr.Validation("cancelReason", fmt.Sprintf("unknown cancellation reason %q", reason))
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, apperr.NotFound("order", orderID)
	}
	if err := s.transition(ctx, order, model.OrderStatusCancelled, reason); err != nil {
		return nil, err
	}

	buyerName := buyerID
	if u, err := s.users.GetByID(ctx, buyerID); err == nil {
		buyerName = u.DisplayName()
	}
	s.notifyCancelled(ctx, order, buyerID, buyerName)
	return order, nil
}

func (s *orderService) transition(ctx context.Context, order *model.Order, target model.OrderStatus, reason model.CancelReason) error {
	from := order.Status
	if !CanTransition(from, target) {
		return apperr.Conflict("cannot transition order from %s to %s", from, target)
	}
	err := s.orders.TransitionStatus(ctx, order.ID, from, target, reason)
	if errors.Is(err, repository.ErrStaleOrderStatus) {
		return apperr.Conflict("order %s was modified concurrently", order.ID)
	}
	if err != nil {
		return err
	}
	order.Status = target
	if target == model.OrderStatusCancelled {
		order.CancelReason = reason
	}
	return nil
}

// notifyCancelled 买家与全部管理员收到取消通知；卖家单独收到带买家名的通知（卖家自己取消时除外）
func (s *orderService) notifyCancelled(ctx context.Context, order *model.Order, actorID, buyerName string) {
	payload := model.OrderPayload{
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		OrderStatus:  model.OrderStatusCancelled,
		BuyerID:      order.BuyerID,
		CancelReason: order.CancelReason,
	}
	recipients := []string{order.BuyerID}
	admins, err := s.users.ListIDsByRole(ctx, model.RoleAdmin)
	if err != nil {
		s.log.Warn("list admins for cancellation notice failed", zap.String("order_id", order.ID), zap.Error(err))
	}
	recipients = append(recipients, admins...)

	sellerMessage := fmt.Sprintf("Order #%s has been cancelled: %s", order.OrderNumber, order.CancelReason)
	if buyerName != "" {
		sellerMessage = fmt.Sprintf("Order #%s has been cancelled by %s", order.OrderNumber, buyerName)
	}
	if actorID == order.SellerID {
		recipients = append(recipients, order.SellerID)
	}

	s.notify(ctx, notify.Draft{
		RecipientIDs: recipients,
		Type:         model.TypeOrderCancelled,
		Title:        "Order Cancelled",
		Message:      fmt.Sprintf("Your order #%s has been cancelled: %s", order.OrderNumber, order.CancelReason),
		Payload:      payload,
		SenderID:     actorID,
	})
	if actorID != order.SellerID {
		s.notify(ctx, notify.Draft{
			RecipientIDs: []string{order.SellerID},
			Type:         model.TypeOrderCancelled,
			Title:        "Order Cancelled",
			Message:      sellerMessage,
			Payload:      payload,
			SenderID:     actorID,
		})
	}
}

// notify 通知失败只记录日志，不回滚业务
func (s *orderService) notify(ctx context.Context, d notify.Draft) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Fanout(ctx, d); err != nil {
		s.log.Error("order notification failed",
			zap.String("type", string(d.Type)),
			zap.Strings("recipients", d.RecipientIDs),
			zap.Error(err),
		)
	}
}

func statusMessage(number string, status model.OrderStatus) string {
	switch status {
	case model.OrderStatusProcessing:
		return fmt.Sprintf("Your order #%s is now being processed and will be shipped soon.", number)
	case model.OrderStatusShipped:
		return fmt.Sprintf("Great news! Your order #%s has been shipped and is on its way.", number)
	case model.OrderStatusDelivered:
		return fmt.Sprintf("Your order #%s has been successfully delivered. Thank you for shopping with us!", number)
	}
	return fmt.Sprintf("Your order #%s status has been updated to %s.", number, status)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
