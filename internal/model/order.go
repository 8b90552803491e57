package model

import (
	"time"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal 终态不再允许迁移
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CancelReason 取消原因（封闭集合）
type CancelReason string

const (
	CancelReasonLocation CancelReason = "Location not serviceable"
	CancelReasonStock    CancelReason = "Out of stock"
	CancelReasonCustomer CancelReason = "Customer requested cancellation"
	CancelReasonDelivery CancelReason = "Delivery issues"
	CancelReasonPayment  CancelReason = "Payment issues"
	CancelReasonOther    CancelReason = "Other"
)

var CancelReasons = []CancelReason{
	CancelReasonLocation,
	CancelReasonStock,
	CancelReasonCustomer,
	CancelReasonDelivery,
	CancelReasonPayment,
	CancelReasonOther,
}

func (r CancelReason) Valid() bool {
	for _, v := range CancelReasons {
		if r == v {
			return true
		}
	}
	return false
}

// Order 订单模型
type Order struct {
	ID           string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderNumber  string       `json:"orderNumber" gorm:"type:varchar(32);uniqueIndex;not null"`
	BuyerID      string       `json:"buyerId" gorm:"type:varchar(36);index:idx_order_buyer_created;not null"`
	SellerID     string       `json:"sellerId" gorm:"type:varchar(36);index;not null"`
	Items        []OrderItem  `json:"items" gorm:"foreignKey:OrderID"`
	TotalAmount  float64      `json:"totalAmount" gorm:"type:decimal(10,2);not null"`
	Status       OrderStatus  `json:"status" gorm:"type:varchar(16);index;not null"`
	CancelReason CancelReason `json:"cancelReason,omitempty" gorm:"type:varchar(64)"`
	CreatedAt    time.Time    `json:"createdAt" gorm:"index:idx_order_buyer_created;not null"`
	UpdatedAt    time.Time    `json:"updatedAt" gorm:"not null"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单明细
type OrderItem struct {
	ID        uint    `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   string  `json:"-" gorm:"type:varchar(36);index;not null"`
	ProductID string  `json:"productId" gorm:"type:varchar(36);not null"`
	Quantity  int     `json:"quantity" gorm:"not null"`
	Price     float64 `json:"price" gorm:"type:decimal(10,2);not null"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
