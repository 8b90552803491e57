package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/storefront/internal/model"
)

type deliveryJob struct {
	notification *model.Notification
	enqAt        time.Time
}

// pool 本地有界异步投递执行器，队列满时丢弃并告警
type pool struct {
	handle    func(context.Context, deliveryJob)
	ch        chan deliveryJob
	metricsCh chan time.Duration
	metrics   *Metrics
	log       *zap.Logger

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

func newPool(queueSize int, handle func(context.Context, deliveryJob), metrics *Metrics, log *zap.Logger) *pool {
	if queueSize <= 0 {
		queueSize = 10000
	}
	return &pool{
		handle:    handle,
		ch:        make(chan deliveryJob, queueSize),
		metricsCh: make(chan time.Duration, 65536),
		metrics:   metrics,
		log:       log,
	}
}

// Start 启动 worker；返回的停止函数关闭队列并等待已入队任务处理完毕
func (p *pool) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 4
	}
	p.mu.Lock()
	if !p.started && !p.closed {
		p.started = true
		for i := 0; i < workers; i++ {
			p.wg.Add(1)
			go p.worker()
		}
	}
	p.mu.Unlock()

	return func(ctx context.Context) error {
		p.mu.Lock()
		if !p.closed {
			p.closed = true
			close(p.ch)
		}
		p.mu.Unlock()

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *pool) worker() {
	defer p.wg.Done()
	for job := range p.ch {
		p.run(job)
	}
}

func (p *pool) run(job deliveryJob) {
	defer func() {
		if r := recover(); r != nil {
			p.metrics.Panics.Inc()
			p.log.Error("delivery job panicked",
				zap.String("notification_id", job.notification.ID),
				zap.Any("panic", r))
			sentry.CurrentHub().Recover(fmt.Sprintf("delivery job %s: %v", job.notification.ID, r))
		}
	}()

	p.handle(context.Background(), job)

	if !job.enqAt.IsZero() {
		d := time.Since(job.enqAt)
		p.metrics.Latency.Observe(d.Seconds())
		select {
		case p.metricsCh <- d:
		default:
		}
	}
}

// Enqueue 非阻塞入队
func (p *pool) Enqueue(job deliveryJob) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.metrics.Dropped.Inc()
		p.log.Warn("delivery queue closed, drop job", zap.String("notification_id", job.notification.ID))
		return false
	}
	select {
	case p.ch <- job:
		return true
	default:
		p.metrics.Dropped.Inc()
		p.log.Warn("delivery queue full, drop job",
			zap.String("notification_id", job.notification.ID),
			zap.String("recipient_id", job.notification.RecipientID))
		return false
	}
}

// QueueLen 当前队列长度（采样值）
func (p *pool) QueueLen() int { return len(p.ch) }
