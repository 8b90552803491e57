package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/storefront/internal/apperr"
	"github.com/d60-Lab/storefront/internal/model"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	createBatchSize = 500
)

// NotificationFilter 列表查询条件，时间边界均为闭区间
type NotificationFilter struct {
	UnreadOnly    bool
	Search        string
	Types         []model.NotificationType
	ExcludeTypes  []model.NotificationType
	After         *time.Time
	Before        *time.Time
	IncludeHidden bool
	Page          int
	PageSize      int
}

// NotificationPage 分页结果
type NotificationPage struct {
	Items    []*model.Notification
	Total    int64
	Page     int
	PageSize int
	HasMore  bool
}

// NotificationRepository 通知仓储，所有变更按收件人隔离
type NotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []*model.Notification) error
	List(ctx context.Context, recipientID string, filter NotificationFilter) (*NotificationPage, error)
	Get(ctx context.Context, id, recipientID string) (*model.Notification, error)
	MarkRead(ctx context.Context, id, recipientID string) (*model.Notification, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	Hide(ctx context.Context, recipientID string, before *time.Time) (int64, error)
}

type notificationRepository struct {
	db    *gorm.DB
	clock *monotonicClock
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db, clock: newMonotonicClock(time.Now)}
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	for _, n := range notifications {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}
		n.CreatedAt = r.clock.Next()
	}
	return r.db.WithContext(ctx).CreateInBatches(notifications, createBatchSize).Error
}

func (r *notificationRepository) List(ctx context.Context, recipientID string, f NotificationFilter) (*NotificationPage, error) {
	page, size := normalizePage(f.Page, f.PageSize)

	var total int64
	if err := r.filtered(ctx, recipientID, f).Count(&total).Error; err != nil {
		return nil, err
	}

	items := make([]*model.Notification, 0, size)
	err := r.filtered(ctx, recipientID, f).
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &NotificationPage{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: size,
		HasMore:  int64(page*size) < total,
	}, nil
}

// likeEscaper 转义 LIKE 通配符，配合 ESCAPE '!'
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func (r *notificationRepository) filtered(ctx context.Context, recipientID string, f NotificationFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Notification{}).Where("recipient_id = ?", recipientID)
	if !f.IncludeHidden {
		q = q.Where("hidden = ?", false)
	}
	if f.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
		q = q.Where("(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(message) LIKE ? ESCAPE '!')", like, like)
	}
	if len(f.Types) > 0 {
		q = q.Where("type IN ?", f.Types)
	}
	if len(f.ExcludeTypes) > 0 {
		q = q.Where("type NOT IN ?", f.ExcludeTypes)
	}
	if f.After != nil {
		q = q.Where("created_at >= ?", f.After.UTC())
	}
	if f.Before != nil {
		q = q.Where("created_at <= ?", f.Before.UTC())
	}
	return q
}

func (r *notificationRepository) Get(ctx context.Context, id, recipientID string) (*model.Notification, error) {
	var n model.Notification
	err := r.db.WithContext(ctx).Where("id = ? AND recipient_id = ?", id, recipientID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("notification", id)
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID string) (*model.Notification, error) {
	n, err := r.Get(ctx, id, recipientID)
	if err != nil {
		return nil, err
	}
	if n.IsRead {
		return n, nil
	}
	err = r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("is_read", true).Error
	if err != nil {
		return nil, err
	}
	n.IsRead = true
	return n, nil
}

// MarkAllRead 包含已隐藏记录
func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// Hide before 为空时隐藏全部
func (r *notificationRepository) Hide(ctx context.Context, recipientID string, before *time.Time) (int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? AND hidden = ?", recipientID, false)
	if before != nil {
		q = q.Where("created_at <= ?", before.UTC())
	}
	res := q.Update("hidden", true)
	return res.RowsAffected, res.Error
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}
