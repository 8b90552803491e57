package push

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/storefront/internal/model"
)

// WebPushConfig VAPID 发送配置
type WebPushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
	TTL             int
	Timeout         time.Duration
	// Rate 每秒发送上限，<=0 不限速
	Rate       float64
	Burst      int
	HTTPClient webpush.HTTPClient
}

// WebPushSender 基于 webpush-go 的发送器，令牌桶限速，单次发送有超时
type WebPushSender struct {
	cfg     WebPushConfig
	limiter *rate.Limiter
}

func NewWebPushSender(cfg WebPushConfig) *WebPushSender {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 3600
	}
	s := &WebPushSender{cfg: cfg}
	if cfg.Rate > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), burst)
	}
	return s
}

func (s *WebPushSender) Send(ctx context.Context, sub *model.PushSubscription, payload []byte) error {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return &DeliveryError{Err: fmt.Errorf("rate limit: %w", err)}
		}
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
	}, &webpush.Options{
		HTTPClient:      s.cfg.HTTPClient,
		Subscriber:      s.cfg.Subscriber,
		VAPIDPublicKey:  s.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: s.cfg.VAPIDPrivateKey,
		TTL:             s.cfg.TTL,
		Urgency:         webpush.UrgencyHigh,
	})
	if err != nil {
		return &DeliveryError{Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusGone:
		return &DeliveryError{StatusCode: resp.StatusCode, Permanent: true, Err: ErrSubscriptionGone}
	default:
		return &DeliveryError{StatusCode: resp.StatusCode, Err: fmt.Errorf("push service responded %s", resp.Status)}
	}
}
