package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/storefront/internal/model"
)

// PushSubscriptionRepository 推送端点仓储，以 endpoint 为唯一键
type PushSubscriptionRepository interface {
	ListForUser(ctx context.Context, userID string) ([]*model.PushSubscription, error)
	Upsert(ctx context.Context, sub *model.PushSubscription) error
	DeleteByEndpoint(ctx context.Context, endpoint string) (int64, error)
	DeleteByID(ctx context.Context, id string) (int64, error)
}

type pushSubscriptionRepository struct{ db *gorm.DB }

func NewPushSubscriptionRepository(db *gorm.DB) PushSubscriptionRepository {
	return &pushSubscriptionRepository{db: db}
}

func (r *pushSubscriptionRepository) ListForUser(ctx context.Context, userID string) ([]*model.PushSubscription, error) {
	var res []*model.PushSubscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&res).Error
	return res, err
}

// Upsert 同一 endpoint 重复注册时原地覆盖（含归属用户），sub 回填为存储后的行
func (r *pushSubscriptionRepository) Upsert(ctx context.Context, sub *model.PushSubscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth", "updated_at"}),
	}).Create(sub).Error
	if err != nil {
		return err
	}
	var stored model.PushSubscription
	if err := r.db.WithContext(ctx).Where("endpoint = ?", sub.Endpoint).First(&stored).Error; err != nil {
		return err
	}
	*sub = stored
	return nil
}

func (r *pushSubscriptionRepository) DeleteByEndpoint(ctx context.Context, endpoint string) (int64, error) {
	res := r.db.WithContext(ctx).Where("endpoint = ?", endpoint).Delete(&model.PushSubscription{})
	return res.RowsAffected, res.Error
}

func (r *pushSubscriptionRepository) DeleteByID(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.PushSubscription{})
	return res.RowsAffected, res.Error
}
