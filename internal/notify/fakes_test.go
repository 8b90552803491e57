package notify

import (
	"context"
	"sync"

	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/realtime"
)

type fakeStore struct {
	mu      sync.Mutex
	batches [][]*model.Notification
	err     error
}

func (s *fakeStore) CreateBatch(_ context.Context, ns []*model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, ns)
	return nil
}

func (s *fakeStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

type fakeRecipients map[string]model.RecipientProfile

func (f fakeRecipients) LookupRecipients(_ context.Context, ids []string) (map[string]model.RecipientProfile, error) {
	out := make(map[string]model.RecipientProfile)
	for _, id := range ids {
		if p, ok := f[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f fakeRecipients) ListIDsExcept(_ context.Context, exclude string) ([]string, error) {
	var ids []string
	for id := range f {
		if id != exclude {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// fakeSubs stall 为 true 时模拟数据库卡死，直到 ctx 结束
type fakeSubs struct {
	mu      sync.Mutex
	byUser  map[string][]*model.PushSubscription
	deleted []string
	stall   bool
}

func (f *fakeSubs) wait(ctx context.Context) error {
	f.mu.Lock()
	stall := f.stall
	f.mu.Unlock()
	if !stall {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeSubs) ListForUser(ctx context.Context, userID string) ([]*model.PushSubscription, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*model.PushSubscription(nil), f.byUser[userID]...), nil
}

func (f *fakeSubs) DeleteByID(ctx context.Context, id string) (int64, error) {
	if err := f.wait(ctx); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return 1, nil
}

func (f *fakeSubs) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

type senderFunc func(ctx context.Context, sub *model.PushSubscription, payload []byte) error

func (f senderFunc) Send(ctx context.Context, sub *model.PushSubscription, payload []byte) error {
	return f(ctx, sub, payload)
}

// recordingConn 记录收到的 notification 事件；emit 可替换以模拟阻塞或 panic
type recordingConn struct {
	id   string
	emit func(ctx context.Context) error
	got  chan LiveMessage
}

func newRecordingConn(id string) *recordingConn {
	return &recordingConn{id: id, got: make(chan LiveMessage, 16)}
}

func (c *recordingConn) ID() string { return c.id }

func (c *recordingConn) Emit(ctx context.Context, event string, payload interface{}) error {
	if c.emit != nil {
		if err := c.emit(ctx); err != nil {
			return err
		}
	}
	if event == realtime.EventNotification {
		c.got <- payload.(LiveMessage)
	}
	return nil
}

func (c *recordingConn) Close() error { return nil }
