package service

import (
	"context"
	"time"

	"github.com/d60-Lab/storefront/internal/apperr"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/notify"
	"github.com/d60-Lab/storefront/internal/repository"
)

// InboxFilter 收件箱过滤：all 或 unread
type InboxFilter string

const (
	InboxAll    InboxFilter = "all"
	InboxUnread InboxFilter = "unread"
)

// RecentQuery 最近动态查询
type RecentQuery struct {
	Page  int        `form:"page"`
	Limit int        `form:"limit"`
	After *time.Time `form:"after" time_format:"2006-01-02T15:04:05Z07:00"`
}

// InboxQuery 收件箱查询
type InboxQuery struct {
	Filter InboxFilter `form:"filter"`
	Search string      `form:"search"`
	Page   int         `form:"page"`
	Limit  int         `form:"limit"`
}

// ActivityService 通知读取面：最近动态与收件箱。读写都不会触发投递
type ActivityService interface {
	Recent(ctx context.Context, recipientID string, q RecentQuery) (*repository.NotificationPage, error)
	Inbox(ctx context.Context, recipientID string, q InboxQuery) (*repository.NotificationPage, error)
	Get(ctx context.Context, recipientID, id string) (*model.Notification, error)
	MarkRead(ctx context.Context, recipientID, id string) (*model.Notification, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	ClearRecent(ctx context.Context, recipientID string, before *time.Time) (int64, error)
}

type activityService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
}

func NewActivityService(notifications repository.NotificationRepository, users repository.UserRepository) ActivityService {
	return &activityService{notifications: notifications, users: users}
}

func (s *activityService) Recent(ctx context.Context, recipientID string, q RecentQuery) (*repository.NotificationPage, error) {
	return s.notifications.List(ctx, recipientID, repository.NotificationFilter{
		After:    q.After,
		Page:     q.Page,
		PageSize: q.Limit,
	})
}

// Inbox 按当前偏好隐藏已关闭的可选类型，已清除的记录仍然可见
func (s *activityService) Inbox(ctx context.Context, recipientID string, q InboxQuery) (*repository.NotificationPage, error) {
	switch q.Filter {
	case "", InboxAll, InboxUnread:
	default:
		return nil, apperr.Validation("filter", "must be one of all, unread")
	}
	u, err := s.users.GetByID(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	return s.notifications.List(ctx, recipientID, repository.NotificationFilter{
		UnreadOnly:    q.Filter == InboxUnread,
		Search:        q.Search,
		ExcludeTypes:  notify.HiddenTypes(u.Preferences),
		IncludeHidden: true,
		Page:          q.Page,
		PageSize:      q.Limit,
	})
}

// Get 查看即已读
func (s *activityService) Get(ctx context.Context, recipientID, id string) (*model.Notification, error) {
	return s.notifications.MarkRead(ctx, id, recipientID)
}

func (s *activityService) MarkRead(ctx context.Context, recipientID, id string) (*model.Notification, error) {
	return s.notifications.MarkRead(ctx, id, recipientID)
}

func (s *activityService) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	return s.notifications.MarkAllRead(ctx, recipientID)
}

func (s *activityService) ClearRecent(ctx context.Context, recipientID string, before *time.Time) (int64, error) {
	return s.notifications.Hide(ctx, recipientID, before)
}
