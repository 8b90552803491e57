// Package realtime 在线用户的实时连接通道
package realtime

import (
	"context"
	"sync"
)

// Conn 单条实时连接句柄
type Conn interface {
	ID() string
	Emit(ctx context.Context, event string, payload interface{}) error
	Close() error
}

// Registry 进程内 userID -> 连接集合，读多写少
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]map[string]Conn
	owner  map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]map[string]Conn),
		owner:  make(map[string]string),
	}
}

// Register 同一用户可持有多条连接；已登记在其他用户名下的句柄会被迁移
func (r *Registry) Register(userID string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.owner[c.ID()]; ok && prev != userID {
		r.removeLocked(prev, c.ID())
	}
	conns, ok := r.byUser[userID]
	if !ok {
		conns = make(map[string]Conn)
		r.byUser[userID] = conns
	}
	conns[c.ID()] = c
	r.owner[c.ID()] = userID
}

// Deregister 只移除该句柄本身
func (r *Registry) Deregister(c Conn) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userID, ok := r.owner[c.ID()]
	if !ok {
		return "", false
	}
	r.removeLocked(userID, c.ID())
	return userID, true
}

func (r *Registry) removeLocked(userID, connID string) {
	delete(r.owner, connID)
	if conns, ok := r.byUser[userID]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(r.byUser, userID)
		}
	}
}

// Lookup 返回快照，调用方可在锁外写入
func (r *Registry) Lookup(userID string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := r.byUser[userID]
	if len(conns) == 0 {
		return nil
	}
	out := make([]Conn, 0, len(conns))
	for _, c := range conns {
		out = append(out, c)
	}
	return out
}

func (r *Registry) Connected(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}

// Stats 在线用户数与连接数
func (r *Registry) Stats() (users, conns int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser), len(r.owner)
}
