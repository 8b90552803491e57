package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/push"
	"github.com/d60-Lab/storefront/internal/realtime"
)

// LiveMessage 实时通道 notification 事件载荷
type LiveMessage struct {
	ID             string                 `json:"id"`
	NotificationID string                 `json:"notificationId"`
	RecipientID    string                 `json:"recipientId"`
	SenderID       string                 `json:"senderId,omitempty"`
	Type           model.NotificationType `json:"type"`
	Title          string                 `json:"title"`
	Message        string                 `json:"message"`
	Data           datatypes.JSON         `json:"data"`
	Color          string                 `json:"color"`
	IsRead         bool                   `json:"isRead"`
	CreatedAt      time.Time              `json:"createdAt"`
	Timestamp      time.Time              `json:"timestamp"`
}

// PushAction 通知操作按钮
type PushAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// PushMessage 离线推送载荷
type PushMessage struct {
	LiveMessage
	Priority           string       `json:"priority"`
	Vibrate            []int        `json:"vibrate"`
	RequireInteraction bool         `json:"requireInteraction"`
	Actions            []PushAction `json:"actions"`
}

// newDeliveryID 形如 <unixMillis>-<9位随机>
func newDeliveryID(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), strings.ReplaceAll(uuid.New().String(), "-", "")[:9])
}

func newLiveMessage(n *model.Notification, now time.Time) LiveMessage {
	return LiveMessage{
		ID:             newDeliveryID(now),
		NotificationID: n.ID,
		RecipientID:    n.RecipientID,
		SenderID:       n.Sender(),
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		Data:           n.Data,
		Color:          n.Type.Color(),
		IsRead:         n.IsRead,
		CreatedAt:      n.CreatedAt,
		Timestamp:      now,
	}
}

func newPushMessage(n *model.Notification, now time.Time) PushMessage {
	return PushMessage{
		LiveMessage:        newLiveMessage(n, now),
		Priority:           "high",
		Vibrate:            []int{100, 50, 100},
		RequireInteraction: true,
		Actions: []PushAction{
			{Action: "view", Title: "View"},
			{Action: "close", Title: "Close"},
		},
	}
}

// deliver 两个通道并发，互不影响
func (e *Engine) deliver(ctx context.Context, job deliveryJob) {
	n := job.notification
	var wg sync.WaitGroup
	if e.live != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer e.recoverChannel(channelLive, n)
			e.deliverLive(ctx, n)
		}()
	}
	if e.push != nil && e.subs != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer e.recoverChannel(channelPush, n)
			e.deliverPush(ctx, n)
		}()
	}
	wg.Wait()
}

func (e *Engine) recoverChannel(channel string, n *model.Notification) {
	if r := recover(); r != nil {
		e.metrics.Panics.Inc()
		e.metrics.delivery(channel, outcomeFailed)
		e.log.Error("delivery channel panicked",
			zap.String("channel", channel),
			zap.String("notification_id", n.ID),
			zap.Any("panic", r))
		sentry.CurrentHub().Recover(fmt.Sprintf("%s delivery %s: %v", channel, n.ID, r))
	}
}

func (e *Engine) deliverLive(ctx context.Context, n *model.Notification) {
	conns := e.live.Lookup(n.RecipientID)
	if len(conns) == 0 {
		e.metrics.delivery(channelLive, outcomeSkipped)
		return
	}
	msg := newLiveMessage(n, e.now())
	for _, c := range conns {
		e.emit(ctx, c, msg)
	}
}

func (e *Engine) emit(ctx context.Context, c realtime.Conn, msg LiveMessage) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.LiveTimeout)
	defer cancel()
	if err := c.Emit(ctx, realtime.EventNotification, msg); err != nil {
		e.metrics.delivery(channelLive, outcomeFailed)
		e.log.Warn("live delivery failed",
			zap.String("notification_id", msg.NotificationID),
			zap.String("recipient_id", msg.RecipientID),
			zap.String("conn_id", c.ID()),
			zap.Error(err))
		return
	}
	e.metrics.delivery(channelLive, outcomeDelivered)
}

func (e *Engine) deliverPush(ctx context.Context, n *model.Notification) {
	listCtx, cancel := context.WithTimeout(ctx, e.opts.StoreTimeout)
	subs, err := e.subs.ListForUser(listCtx, n.RecipientID)
	cancel()
	if err != nil {
		e.metrics.delivery(channelPush, outcomeFailed)
		e.log.Warn("list push subscriptions failed", zap.String("recipient_id", n.RecipientID), zap.Error(err))
		return
	}
	if len(subs) == 0 {
		e.metrics.delivery(channelPush, outcomeSkipped)
		return
	}
	body, err := json.Marshal(newPushMessage(n, e.now()))
	if err != nil {
		e.log.Error("encode push payload failed", zap.String("notification_id", n.ID), zap.Error(err))
		return
	}

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(sub *model.PushSubscription) {
			defer wg.Done()
			defer e.recoverChannel(channelPush, n)
			e.sendPush(ctx, n, sub, body)
		}(sub)
	}
	wg.Wait()
}

func (e *Engine) sendPush(ctx context.Context, n *model.Notification, sub *model.PushSubscription, body []byte) {
	sendCtx, cancel := context.WithTimeout(ctx, e.opts.PushTimeout)
	defer cancel()
	err := e.push.Send(sendCtx, sub, body)
	switch {
	case err == nil:
		e.metrics.delivery(channelPush, outcomeDelivered)
	case push.IsPermanent(err):
		e.metrics.delivery(channelPush, outcomeFailed)
		pruneCtx, pruneCancel := context.WithTimeout(ctx, e.opts.StoreTimeout)
		_, derr := e.subs.DeleteByID(pruneCtx, sub.ID)
		pruneCancel()
		if derr != nil {
			e.log.Warn("prune push subscription failed", zap.String("subscription_id", sub.ID), zap.Error(derr))
			return
		}
		e.metrics.Pruned.Inc()
		e.log.Info("pruned expired push subscription",
			zap.String("subscription_id", sub.ID),
			zap.String("user_id", sub.UserID))
	default:
		e.metrics.delivery(channelPush, outcomeFailed)
		e.log.Warn("push delivery failed",
			zap.String("notification_id", n.ID),
			zap.String("subscription_id", sub.ID),
			zap.Error(err))
	}
}
