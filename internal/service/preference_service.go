package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/d60-Lab/storefront/internal/apperr"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/notify"
	"github.com/d60-Lab/storefront/internal/repository"
)

// ProfileInvalidator 偏好变更后失效收件人缓存
type ProfileInvalidator interface {
	Invalidate(ctx context.Context, id string) error
}

// UpdatePreferenceInput 单个开关更新
type UpdatePreferenceInput struct {
	Type    model.PreferenceKey `json:"type" binding:"required"`
	Enabled *bool               `json:"enabled" binding:"required"`
}

type PreferenceService interface {
	Get(ctx context.Context, userID string) (model.NotificationPreferences, error)
	Update(ctx context.Context, userID string, in UpdatePreferenceInput) (model.NotificationPreferences, error)
}

type preferenceService struct {
	users repository.UserRepository
	cache ProfileInvalidator
	log   *zap.Logger
}

func NewPreferenceService(users repository.UserRepository, cache ProfileInvalidator, log *zap.Logger) PreferenceService {
	if log == nil {
		log = zap.NewNop()
	}
	return &preferenceService{users: users, cache: cache, log: log}
}

// Get 未初始化时写入默认值
func (s *preferenceService) Get(ctx context.Context, userID string) (model.NotificationPreferences, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.NotificationPreferences{}, err
	}
	if u.Preferences != nil {
		return *u.Preferences, nil
	}
	prefs := notify.Defaults()
	if err := s.save(ctx, userID, prefs); err != nil {
		return model.NotificationPreferences{}, err
	}
	return prefs, nil
}

func (s *preferenceService) Update(ctx context.Context, userID string, in UpdatePreferenceInput) (model.NotificationPreferences, error) {
	if !in.Type.Valid() {
		return model.NotificationPreferences{}, apperr.Validation("type", fmt.Sprintf("unknown preference %q", in.Type))
	}
	if in.Enabled == nil {
		return model.NotificationPreferences{}, apperr.Validation("enabled", "is required")
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.NotificationPreferences{}, err
	}
	prefs := notify.Resolve(u.Preferences)
	prefs.Set(in.Type, *in.Enabled)
	if err := s.save(ctx, userID, prefs); err != nil {
		return model.NotificationPreferences{}, err
	}
	return prefs, nil
}

func (s *preferenceService) save(ctx context.Context, userID string, prefs model.NotificationPreferences) error {
	if err := s.users.UpdatePreferences(ctx, userID, prefs); err != nil {
		return err
	}
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warn("invalidate recipient cache failed", zap.String("user_id", userID), zap.Error(err))
	}
	return nil
}
