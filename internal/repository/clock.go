package repository

import (
	"sync"
	"time"
)

// monotonicClock 进程内严格递增的时间戳，保证同一收件人的通知按创建顺序排序
type monotonicClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func newMonotonicClock(now func() time.Time) *monotonicClock {
	return &monotonicClock{now: now}
}

// Next 精度为微秒，与各数据库时间列精度一致
func (c *monotonicClock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}
