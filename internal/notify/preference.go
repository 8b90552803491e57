package notify

import "github.com/d60-Lab/storefront/internal/model"

// categoryOf 可选类型对应的偏好开关；关键类型返回 false
func categoryOf(t model.NotificationType) (model.PreferenceKey, bool) {
	switch t {
	case model.TypeOrderStatus, model.TypeNewOrder:
		return model.PrefOrderUpdates, true
	case model.TypePriceDrop:
		return model.PrefPriceAlerts, true
	case model.TypeNewProduct, model.TypeProductUpdate:
		return model.PrefPromotions, true
	}
	return "", false
}

// Critical 关键类型不受偏好约束
func Critical(t model.NotificationType) bool {
	_, optional := categoryOf(t)
	return !optional
}

// Eligible 收件人不存在时一律排除；偏好缺失时可选类型排除（失败即关闭）
func Eligible(recipient *model.RecipientProfile, t model.NotificationType) bool {
	if recipient == nil {
		return false
	}
	key, optional := categoryOf(t)
	if !optional {
		return true
	}
	if recipient.Preferences == nil {
		return false
	}
	return recipient.Preferences.Enabled(key)
}

// Defaults 初始化偏好
func Defaults() model.NotificationPreferences {
	return model.DefaultNotificationPreferences()
}

// Resolve 读接口视图：未设置时返回默认值
func Resolve(prefs *model.NotificationPreferences) model.NotificationPreferences {
	if prefs == nil {
		return Defaults()
	}
	return *prefs
}

// HiddenTypes 收件箱视图中应隐藏的可选类型
func HiddenTypes(prefs *model.NotificationPreferences) []model.NotificationType {
	var out []model.NotificationType
	for _, t := range model.NotificationTypes {
		key, optional := categoryOf(t)
		if !optional {
			continue
		}
		if prefs == nil || !prefs.Enabled(key) {
			out = append(out, t)
		}
	}
	return out
}

// VisibleTypes HiddenTypes 的补集
func VisibleTypes(prefs *model.NotificationPreferences) []model.NotificationType {
	hidden := make(map[model.NotificationType]bool)
	for _, t := range HiddenTypes(prefs) {
		hidden[t] = true
	}
	out := make([]model.NotificationType, 0, len(model.NotificationTypes))
	for _, t := range model.NotificationTypes {
		if !hidden[t] {
			out = append(out, t)
		}
	}
	return out
}
