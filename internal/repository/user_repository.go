package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/storefront/internal/apperr"
	"github.com/d60-Lab/storefront/internal/model"
)

// UserRepository 用户仓储（收件人解析与偏好读写）
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]*model.User, error)
	ListIDsByRole(ctx context.Context, role model.UserRole) ([]string, error)
	ListIDsExcept(ctx context.Context, excludeID string) ([]string, error)
	UpdatePreferences(ctx context.Context, id string, prefs model.NotificationPreferences) error
}

type userRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user", id)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListByIDs 不存在的 ID 直接缺席结果
func (r *userRepository) ListByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var res []*model.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&res).Error
	return res, err
}

func (r *userRepository) ListIDsByRole(ctx context.Context, role model.UserRole) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("role = ?", role).Order("created_at").Pluck("id", &ids).Error
	return ids, err
}

func (r *userRepository) ListIDsExcept(ctx context.Context, excludeID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("id <> ?", excludeID).Order("created_at").Pluck("id", &ids).Error
	return ids, err
}

func (r *userRepository) UpdatePreferences(ctx context.Context, id string, prefs model.NotificationPreferences) error {
	res := r.db.WithContext(ctx).Model(&model.User{ID: id}).
		Select("notification_preferences").
		Updates(&model.User{Preferences: &prefs})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
