package service

import (
	"context"
	"strings"

	"github.com/d60-Lab/storefront/internal/apperr"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/notify"
)

// Broadcaster 管理员广播所需的扇出能力
type Broadcaster interface {
	Notifier
	FanoutToAllExcept(ctx context.Context, senderID string, t model.NotificationType, title, message string) ([]*model.Notification, error)
}

// AdminMessageInput 管理员消息；RecipientIDs 为空时发送给除自己外的所有人
type AdminMessageInput struct {
	SenderID     string   `json:"-"`
	Title        string   `json:"title" binding:"required,max=255"`
	Message      string   `json:"message" binding:"required"`
	RecipientIDs []string `json:"recipientIds"`
}

type BroadcastService interface {
	SendAdminMessage(ctx context.Context, in AdminMessageInput) ([]*model.Notification, error)
}

type broadcastService struct {
	engine Broadcaster
}

func NewBroadcastService(engine Broadcaster) BroadcastService {
	return &broadcastService{engine: engine}
}

func (s *broadcastService) SendAdminMessage(ctx context.Context, in AdminMessageInput) ([]*model.Notification, error) {
	title := strings.TrimSpace(in.Title)
	message := strings.TrimSpace(in.Message)
	if title == "" {
		return nil, apperr.Validation("title", "is required")
	}
	if message == "" {
		return nil, apperr.Validation("message", "is required")
	}
	if len(in.RecipientIDs) == 0 {
		return s.engine.FanoutToAllExcept(ctx, in.SenderID, model.TypeAdminMessage, title, message)
	}
	return s.engine.Fanout(ctx, notify.Draft{
		RecipientIDs: in.RecipientIDs,
		Type:         model.TypeAdminMessage,
		Title:        title,
		Message:      message,
		SenderID:     in.SenderID,
	})
}
