// Package push 离线推送通道：Web Push (VAPID) 发送与失败分类
package push

import (
	"context"
	"errors"
	"fmt"

	"github.com/d60-Lab/storefront/internal/model"
)

// ErrSubscriptionGone 推送服务确认端点已失效
var ErrSubscriptionGone = errors.New("push subscription gone")

// Sender 向单个端点发送一条推送
type Sender interface {
	Send(ctx context.Context, sub *model.PushSubscription, payload []byte) error
}

// DeliveryError 推送失败；Permanent 表示端点应被删除
type DeliveryError struct {
	StatusCode int
	Permanent  bool
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("push delivery failed (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("push delivery failed: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// IsPermanent 仅 410 Gone 视为永久失败
func IsPermanent(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de) && de.Permanent
}
