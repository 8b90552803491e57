// Package notify 通知扇出引擎：过滤、持久化，再经工作池并发投递到实时与推送通道
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/d60-Lab/storefront/internal/apperr"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/push"
	"github.com/d60-Lab/storefront/internal/realtime"
)

// NotificationStore 批量落库
type NotificationStore interface {
	CreateBatch(ctx context.Context, notifications []*model.Notification) error
}

// RecipientLookup 按 ID 批量解析收件人，不存在的 ID 不出现在结果中
type RecipientLookup interface {
	LookupRecipients(ctx context.Context, ids []string) (map[string]model.RecipientProfile, error)
}

// Audience 广播受众
type Audience interface {
	ListIDsExcept(ctx context.Context, excludeID string) ([]string, error)
}

// SubscriptionStore 推送端点读取与失效清理
type SubscriptionStore interface {
	ListForUser(ctx context.Context, userID string) ([]*model.PushSubscription, error)
	DeleteByID(ctx context.Context, id string) (int64, error)
}

// LiveDirectory 在线连接快照
type LiveDirectory interface {
	Lookup(userID string) []realtime.Conn
}

// Draft 一次扇出的内容
type Draft struct {
	RecipientIDs []string               `validate:"dive,required"`
	Type         model.NotificationType `validate:"required"`
	Title        string                 `validate:"required,max=255"`
	Message      string                 `validate:"required"`
	Payload      model.Payload
	SenderID     string
}

// Deps 引擎协作方；Live / Push / Subscriptions 为 nil 时跳过对应通道
type Deps struct {
	Store         NotificationStore
	Recipients    RecipientLookup
	Audience      Audience
	Subscriptions SubscriptionStore
	Live          LiveDirectory
	Push          push.Sender
	Metrics       *Metrics
	Logger        *zap.Logger
}

// Options 工作池与通道超时
type Options struct {
	Workers      int
	QueueSize    int
	LiveTimeout  time.Duration
	PushTimeout  time.Duration
	StoreTimeout time.Duration
}

type Engine struct {
	store      NotificationStore
	recipients RecipientLookup
	audience   Audience
	subs       SubscriptionStore
	live       LiveDirectory
	push       push.Sender

	opts     Options
	pool     *pool
	metrics  *Metrics
	log      *zap.Logger
	validate *validator.Validate
	tracer   trace.Tracer
	now      func() time.Time
}

func NewEngine(deps Deps, opts Options) *Engine {
	if opts.LiveTimeout <= 0 {
		opts.LiveTimeout = 5 * time.Second
	}
	if opts.PushTimeout <= 0 {
		opts.PushTimeout = 5 * time.Second
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 5 * time.Second
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	e := &Engine{
		store:      deps.Store,
		recipients: deps.Recipients,
		audience:   deps.Audience,
		subs:       deps.Subscriptions,
		live:       deps.Live,
		push:       deps.Push,
		opts:       opts,
		metrics:    metrics,
		log:        log,
		validate:   validator.New(),
		tracer:     otel.Tracer("github.com/d60-Lab/storefront/internal/notify"),
		now:        time.Now,
	}
	e.pool = newPool(opts.QueueSize, e.deliver, metrics, log)
	return e
}

// Start 启动投递 worker，返回停止函数
func (e *Engine) Start() func(context.Context) error {
	return e.pool.Start(e.opts.Workers)
}

// Metrics 投递完成耗时采样
func (e *Engine) Metrics() <-chan time.Duration { return e.pool.metricsCh }

// QueueLen 待投递任务数
func (e *Engine) QueueLen() int { return e.pool.QueueLen() }

// Fanout 校验 -> 去重/解析/偏好过滤 -> 单批落库 -> 入队投递。落库成功即返回
func (e *Engine) Fanout(ctx context.Context, d Draft) ([]*model.Notification, error) {
	ctx, span := e.tracer.Start(ctx, "notify.Fanout", trace.WithAttributes(
		attribute.String("notification.type", string(d.Type)),
		attribute.Int("notification.candidates", len(d.RecipientIDs)),
	))
	defer span.End()

	data, err := e.check(d)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	ids := dedupe(d.RecipientIDs)
	if len(ids) == 0 {
		return []*model.Notification{}, nil
	}
	profiles, err := e.recipients.LookupRecipients(ctx, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup recipients")
		return nil, fmt.Errorf("lookup recipients: %w", err)
	}

	var sender *string
	if d.SenderID != "" {
		s := d.SenderID
		sender = &s
	}
	batch := make([]*model.Notification, 0, len(ids))
	for _, id := range ids {
		var profile *model.RecipientProfile
		if p, ok := profiles[id]; ok {
			profile = &p
		}
		if !Eligible(profile, d.Type) {
			continue
		}
		batch = append(batch, &model.Notification{
			ID:          uuid.New().String(),
			RecipientID: id,
			SenderID:    sender,
			Type:        d.Type,
			Title:       d.Title,
			Message:     d.Message,
			Data:        data,
		})
	}
	span.SetAttributes(attribute.Int("notification.recipients", len(batch)))
	if len(batch) == 0 {
		return batch, nil
	}

	if err := e.persist(ctx, batch); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist")
		return nil, err
	}

	enqAt := e.now()
	for _, n := range batch {
		cp := *n
		e.pool.Enqueue(deliveryJob{notification: &cp, enqAt: enqAt})
	}
	return batch, nil
}

// FanoutToAllExcept 除发送者外的全部用户
func (e *Engine) FanoutToAllExcept(ctx context.Context, senderID string, t model.NotificationType, title, message string) ([]*model.Notification, error) {
	ids, err := e.audience.ListIDsExcept(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("list audience: %w", err)
	}
	return e.Fanout(ctx, Draft{RecipientIDs: ids, Type: t, Title: title, Message: message, SenderID: senderID})
}

func (e *Engine) persist(ctx context.Context, batch []*model.Notification) error {
	ctx, span := e.tracer.Start(ctx, "notify.CreateBatch", trace.WithAttributes(attribute.Int("batch.size", len(batch))))
	defer span.End()
	if err := e.store.CreateBatch(ctx, batch); err != nil {
		span.RecordError(err)
		return apperr.Persistence("create notifications", err)
	}
	e.metrics.Persisted.Add(float64(len(batch)))
	return nil
}

func (e *Engine) check(d Draft) ([]byte, error) {
	if err := e.validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, apperr.Validation(verrs[0].Field(), "failed "+verrs[0].Tag()+" check")
		}
		return nil, apperr.Validation("", err.Error())
	}
	if !d.Type.Valid() {
		return nil, apperr.Validation("Type", fmt.Sprintf("unknown notification type %q", d.Type))
	}
	data, err := model.EncodePayload(d.Type, d.Payload)
	if err != nil {
		return nil, apperr.Validation("Payload", err.Error())
	}
	return data, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
