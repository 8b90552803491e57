package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/storefront/internal/apperr"
	"github.com/d60-Lab/storefront/internal/model"
)

var (
	// ErrStaleOrderStatus 比较并设置失败，订单状态已被并发修改
	ErrStaleOrderStatus = errors.New("order status changed concurrently")
	// ErrInsufficientStock 扣减库存失败
	ErrInsufficientStock = errors.New("insufficient stock")
)

// orderNumberAttempts 订单号唯一冲突时的最大尝试次数
const orderNumberAttempts = 5

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// Create 创建订单并在同一事务内扣减库存；OrderNumber 为空时按 CreatedAt 当日生成 ORD-YYYYMMDD-NNNN
	Create(ctx context.Context, order *model.Order) error

	// GetByID 根据订单ID查询订单（含明细）
	GetByID(ctx context.Context, id string) (*model.Order, error)

	// TransitionStatus 仅当当前状态为 from 时更新为 to，取消时同一事务内回补库存
	TransitionStatus(ctx context.Context, id string, from, to model.OrderStatus, reason model.CancelReason) error
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.Status == "" {
		order.Status = model.OrderStatusPending
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	if order.OrderNumber != "" {
		return r.create(ctx, order, false)
	}

	var err error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.OrderNumber = ""
		for i := range order.Items {
			order.Items[i].ID = 0
			order.Items[i].OrderID = ""
		}
		err = r.create(ctx, order, true)
		if !isUniqueViolation(err) {
			return err
		}
	}
	order.OrderNumber = ""
	return fmt.Errorf("allocate order number: %w", err)
}

func (r *orderRepository) create(ctx context.Context, order *model.Order, assignNumber bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			res := tx.Model(&model.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				Update("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: product %s", ErrInsufficientStock, item.ProductID)
			}
		}
		if assignNumber {
			number, err := nextOrderNumber(tx, order.CreatedAt)
			if err != nil {
				return err
			}
			order.OrderNumber = number
		}
		return tx.Create(order).Error
	})
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("order", id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// nextOrderNumber 当日最大序号加一，并发插入由唯一索引兜底
func nextOrderNumber(tx *gorm.DB, day time.Time) (string, error) {
	prefix := "ORD-" + day.UTC().Format("20060102") + "-"
	var last []string
	err := tx.Model(&model.Order{}).
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		Limit(1).
		Pluck("order_number", &last).Error
	if err != nil {
		return "", err
	}
	seq := 1
	if len(last) > 0 {
		n, err := strconv.Atoi(strings.TrimPrefix(last[0], prefix))
		if err != nil {
			return "", fmt.Errorf("parse order number %q: %w", last[0], err)
		}
		seq = n + 1
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

func (r *orderRepository) TransitionStatus(ctx context.Context, id string, from, to model.OrderStatus, reason model.CancelReason) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": to, "updated_at": time.Now().UTC()}
		if to == model.OrderStatusCancelled {
			updates["cancel_reason"] = reason
		}
		res := tx.Model(&model.Order{}).Where("id = ? AND status = ?", id, from).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleOrderStatus
		}
		if to != model.OrderStatusCancelled {
			return nil
		}

		var items []model.OrderItem
		if err := tx.Where("order_id = ?", id).Find(&items).Error; err != nil {
			return err
		}
		for _, item := range items {
			err := tx.Model(&model.Product{}).
				Where("id = ?", item.ProductID).
				Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error
			if err != nil {
				return fmt.Errorf("restore stock for %s: %w", item.ProductID, err)
			}
		}
		return nil
	})
}

// isUniqueViolation 兼容未开启 TranslateError 的各方言唯一约束错误
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "Duplicate entry")
}
