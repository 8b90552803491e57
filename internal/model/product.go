package model

import "time"

// LowStockThreshold 库存低于等于该值视为紧张
const LowStockThreshold = 5

type ProductStatus string

const (
	ProductStatusDraft     ProductStatus = "draft"
	ProductStatusPublished ProductStatus = "published"
)

// Product 商品（仅保留通知生产者所需字段）
type Product struct {
	ID        string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string        `json:"name" gorm:"type:varchar(255);not null"`
	Price     float64       `json:"price" gorm:"type:decimal(10,2);not null"`
	Stock     int           `json:"stock" gorm:"not null"`
	SellerID  string        `json:"sellerId" gorm:"type:varchar(36);index;not null"`
	Status    ProductStatus `json:"status" gorm:"type:varchar(16);not null"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (Product) TableName() string { return "products" }
