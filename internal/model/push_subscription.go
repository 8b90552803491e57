package model

import "time"

// PushSubscription Web Push 端点，endpoint 全局唯一
type PushSubscription struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);index;not null"`
	Endpoint  string    `json:"endpoint" gorm:"type:varchar(512);uniqueIndex;not null"`
	P256dh    string    `json:"p256dh" gorm:"type:varchar(255);not null"`
	Auth      string    `json:"auth" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (PushSubscription) TableName() string { return "push_subscriptions" }
