package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
)

var ErrPayloadMismatch = errors.New("payload does not match notification type")

type payloadKind int

const (
	kindMessage payloadKind = iota + 1
	kindOrder
	kindPrice
	kindStock
	kindProduct
)

// Payload 通知附带数据，按通知类型取唯一变体
type Payload interface {
	payloadKind() payloadKind
}

// OrderPayload ORDER_STATUS / NEW_ORDER / ORDER_CANCELLED
type OrderPayload struct {
	OrderID      string       `json:"orderId"`
	OrderNumber  string       `json:"orderNumber,omitempty"`
	OrderStatus  OrderStatus  `json:"orderStatus"`
	BuyerID      string       `json:"buyerId,omitempty"`
	CancelReason CancelReason `json:"cancelReason,omitempty"`
}

// PricePayload PRICE_DROP / PRICE_UPDATE
type PricePayload struct {
	ProductID string  `json:"productId"`
	OldPrice  float64 `json:"oldPrice"`
	NewPrice  float64 `json:"newPrice"`
}

// StockPayload STOCK_UPDATE
type StockPayload struct {
	ProductID string `json:"productId"`
	NewStock  int    `json:"newStock"`
}

// ProductPayload NEW_PRODUCT / PRODUCT_UPDATE
type ProductPayload struct {
	ProductID string `json:"productId"`
}

// MessagePayload ADMIN_MESSAGE
type MessagePayload struct{}

func (OrderPayload) payloadKind() payloadKind   { return kindOrder }
func (PricePayload) payloadKind() payloadKind   { return kindPrice }
func (StockPayload) payloadKind() payloadKind   { return kindStock }
func (ProductPayload) payloadKind() payloadKind { return kindProduct }
func (MessagePayload) payloadKind() payloadKind { return kindMessage }

func variantFor(t NotificationType) (payloadKind, bool) {
	switch t {
	case TypeOrderStatus, TypeNewOrder, TypeOrderCancelled:
		return kindOrder, true
	case TypePriceDrop, TypePriceUpdate:
		return kindPrice, true
	case TypeStockUpdate:
		return kindStock, true
	case TypeNewProduct, TypeProductUpdate:
		return kindProduct, true
	case TypeAdminMessage:
		return kindMessage, true
	}
	return 0, false
}

// CheckPayload nil 视为该类型的空变体
func CheckPayload(t NotificationType, p Payload) error {
	want, ok := variantFor(t)
	if !ok {
		return fmt.Errorf("unknown notification type %q", t)
	}
	if p == nil {
		return nil
	}
	if p.payloadKind() != want {
		return fmt.Errorf("%w: %T for %s", ErrPayloadMismatch, p, t)
	}
	return nil
}

// EncodePayload 校验后序列化为 JSON 列
func EncodePayload(t NotificationType, p Payload) (datatypes.JSON, error) {
	if err := CheckPayload(t, p); err != nil {
		return nil, err
	}
	if p == nil {
		p = emptyPayload(t)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// DecodePayload 按类型反序列化 data 列
func DecodePayload(t NotificationType, raw datatypes.JSON) (Payload, error) {
	kind, ok := variantFor(t)
	if !ok {
		return nil, fmt.Errorf("unknown notification type %q", t)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return emptyPayload(t), nil
	}
	var p Payload
	var err error
	switch kind {
	case kindOrder:
		var v OrderPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case kindPrice:
		var v PricePayload
		err = json.Unmarshal(raw, &v)
		p = v
	case kindStock:
		var v StockPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case kindProduct:
		var v ProductPayload
		err = json.Unmarshal(raw, &v)
		p = v
	default:
		p = MessagePayload{}
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", t, err)
	}
	return p, nil
}

func emptyPayload(t NotificationType) Payload {
	kind, _ := variantFor(t)
	switch kind {
	case kindOrder:
		return OrderPayload{}
	case kindPrice:
		return PricePayload{}
	case kindStock:
		return StockPayload{}
	case kindProduct:
		return ProductPayload{}
	default:
		return MessagePayload{}
	}
}
