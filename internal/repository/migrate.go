package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/storefront/internal/model"
)

// AutoMigrate 初始化数据库表结构
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.Notification{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}
	return nil
}
