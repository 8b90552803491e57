package model

import "time"

type UserRole string

const (
	RoleUser   UserRole = "user"
	RoleSeller UserRole = "seller"
	RoleAdmin  UserRole = "admin"
)

// PreferenceKey 可开关的通知类别
type PreferenceKey string

const (
	PrefOrderUpdates PreferenceKey = "orderUpdates"
	PrefPromotions   PreferenceKey = "promotions"
	PrefPriceAlerts  PreferenceKey = "priceAlerts"
)

func (k PreferenceKey) Valid() bool {
	return k == PrefOrderUpdates || k == PrefPromotions || k == PrefPriceAlerts
}

// NotificationPreferences 用户通知偏好
type NotificationPreferences struct {
	OrderUpdates bool `json:"orderUpdates"`
	Promotions   bool `json:"promotions"`
	PriceAlerts  bool `json:"priceAlerts"`
}

// DefaultNotificationPreferences 初始化偏好时使用的默认值
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{OrderUpdates: true, Promotions: false, PriceAlerts: true}
}

// Enabled 返回某类别开关
func (p NotificationPreferences) Enabled(key PreferenceKey) bool {
	switch key {
	case PrefOrderUpdates:
		return p.OrderUpdates
	case PrefPromotions:
		return p.Promotions
	case PrefPriceAlerts:
		return p.PriceAlerts
	}
	return false
}

// Set 设置某类别开关，未知类别返回 false
func (p *NotificationPreferences) Set(key PreferenceKey, enabled bool) bool {
	switch key {
	case PrefOrderUpdates:
		p.OrderUpdates = enabled
	case PrefPromotions:
		p.Promotions = enabled
	case PrefPriceAlerts:
		p.PriceAlerts = enabled
	default:
		return false
	}
	return true
}

// User 用户（协作方记录）
type User struct {
	ID          string                   `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username    string                   `json:"username" gorm:"type:varchar(64);uniqueIndex;not null"`
	Name        string                   `json:"name" gorm:"type:varchar(128)"`
	Email       string                   `json:"email" gorm:"type:varchar(255)"`
	Role        UserRole                 `json:"role" gorm:"type:varchar(16);index;not null"`
	Preferences *NotificationPreferences `json:"notificationPreferences,omitempty" gorm:"column:notification_preferences;type:text;serializer:json"`
	CreatedAt   time.Time                `json:"createdAt"`
	UpdatedAt   time.Time                `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// DisplayName 优先使用姓名
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// RecipientProfile 偏好过滤所需的最小用户视图
type RecipientProfile struct {
	ID          string                   `json:"id"`
	Role        UserRole                 `json:"role"`
	Preferences *NotificationPreferences `json:"preferences,omitempty"`
}

func (u *User) Profile() RecipientProfile {
	return RecipientProfile{ID: u.ID, Role: u.Role, Preferences: u.Preferences}
}
