package service

import (
	"context"

	"github.com/d60-Lab/storefront/internal/apperr"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/repository"
)

// SubscriptionKeys 浏览器 PushSubscription.keys
type SubscriptionKeys struct {
	P256dh string `json:"p256dh" binding:"required"`
	Auth   string `json:"auth" binding:"required"`
}

// RegisterSubscriptionInput 浏览器 PushSubscription.toJSON() 的形状
type RegisterSubscriptionInput struct {
	Endpoint string           `json:"endpoint" binding:"required,url,max=512"`
	Keys     SubscriptionKeys `json:"keys" binding:"required"`
}

type SubscriptionService interface {
	Register(ctx context.Context, userID string, in RegisterSubscriptionInput) (*model.PushSubscription, error)
	Unregister(ctx context.Context, userID, endpoint string) error
}

type subscriptionService struct {
	subs repository.PushSubscriptionRepository
}

func NewSubscriptionService(subs repository.PushSubscriptionRepository) SubscriptionService {
	return &subscriptionService{subs: subs}
}

// Register 同一 endpoint 重复注册时覆盖密钥与归属
func (s *subscriptionService) Register(ctx context.Context, userID string, in RegisterSubscriptionInput) (*model.PushSubscription, error) {
	if in.Endpoint == "" {
		return nil, apperr.Validation("endpoint", "is required")
	}
	if in.Keys.P256dh == "" || in.Keys.Auth == "" {
		return nil, apperr.Validation("keys", "p256dh and auth are required")
	}
	sub := &model.PushSubscription{
		UserID:   userID,
		Endpoint: in.Endpoint,
		P256dh:   in.Keys.P256dh,
		Auth:     in.Keys.Auth,
	}
	if err := s.subs.Upsert(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Unregister 只能删除自己的端点
func (s *subscriptionService) Unregister(ctx context.Context, userID, endpoint string) error {
	if endpoint == "" {
		return apperr.Validation("endpoint", "is required")
	}
	owned, err := s.subs.ListForUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, sub := range owned {
		if sub.Endpoint != endpoint {
			continue
		}
		if _, err := s.subs.DeleteByEndpoint(ctx, endpoint); err != nil {
			return err
		}
		return nil
	}
	return apperr.NotFound("push subscription", endpoint)
}
