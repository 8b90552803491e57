package model

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationType 通知类型（封闭集合）
type NotificationType string

const (
	TypeNewProduct     NotificationType = "NEW_PRODUCT"
	TypeProductUpdate  NotificationType = "PRODUCT_UPDATE"
	TypePriceUpdate    NotificationType = "PRICE_UPDATE"
	TypeStockUpdate    NotificationType = "STOCK_UPDATE"
	TypeOrderStatus    NotificationType = "ORDER_STATUS"
	TypeNewOrder       NotificationType = "NEW_ORDER"
	TypeAdminMessage   NotificationType = "ADMIN_MESSAGE"
	TypePriceDrop      NotificationType = "PRICE_DROP"
	TypeOrderCancelled NotificationType = "ORDER_CANCELLED"
)

var NotificationTypes = []NotificationType{
	TypeNewProduct,
	TypeProductUpdate,
	TypePriceUpdate,
	TypeStockUpdate,
	TypeOrderStatus,
	TypeNewOrder,
	TypeAdminMessage,
	TypePriceDrop,
	TypeOrderCancelled,
}

func (t NotificationType) Valid() bool {
	_, ok := variantFor(t)
	return ok
}

// Color 列表展示色
func (t NotificationType) Color() string {
	switch t {
	case TypeAdminMessage:
		return "green"
	case TypeOrderCancelled:
		return "red"
	default:
		return "blue"
	}
}

// Notification 通知记录，创建后仅 IsRead / Hidden 可变
type Notification struct {
	ID          string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RecipientID string           `json:"recipientId" gorm:"type:varchar(36);not null;index:idx_notification_recipient_created,priority:1"`
	SenderID    *string          `json:"senderId,omitempty" gorm:"type:varchar(36)"`
	Type        NotificationType `json:"type" gorm:"type:varchar(32);not null;index"`
	Title       string           `json:"title" gorm:"type:varchar(255);not null"`
	Message     string           `json:"message" gorm:"type:text;not null"`
	Data        datatypes.JSON   `json:"data"`
	IsRead      bool             `json:"isRead" gorm:"not null;default:false"`
	Hidden      bool             `json:"hidden" gorm:"not null;default:false"`
	CreatedAt   time.Time        `json:"createdAt" gorm:"not null;index:idx_notification_recipient_created,priority:2"`
}

func (Notification) TableName() string { return "notifications" }

// Payload 解码 data 字段
func (n *Notification) Payload() (Payload, error) {
	return DecodePayload(n.Type, n.Data)
}

// Sender 返回发送者 ID，系统通知为空串
func (n *Notification) Sender() string {
	if n.SenderID == nil {
		return ""
	}
	return *n.SenderID
}
