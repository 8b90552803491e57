package realtime

import (
	"errors"
	"sync"
)

var (
	ErrIdentityMismatch = errors.New("claimed identity does not match token")
	ErrSessionClosed    = errors.New("session closed")
)

// State 连接生命周期 Connecting -> Authenticated -> Closed
type State int

const (
	StateConnecting State = iota
	StateAuthenticated
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Session 绑定一条已通过令牌校验的连接；认证与关闭互斥，关闭后不会再登记
type Session struct {
	mu       sync.Mutex
	registry *Registry
	conn     Conn
	userID   string
	state    State
}

func NewSession(registry *Registry, conn Conn, verifiedUserID string) *Session {
	return &Session{registry: registry, conn: conn, userID: verifiedUserID}
}

// Authenticate 声明身份必须与令牌一致；重复认证幂等
func (s *Session) Authenticate(claimedUserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateClosed:
		return ErrSessionClosed
	case StateAuthenticated:
		if claimedUserID != s.userID {
			return ErrIdentityMismatch
		}
		return nil
	}
	if claimedUserID == "" || claimedUserID != s.userID {
		return ErrIdentityMismatch
	}
	s.registry.Register(s.userID, s.conn)
	s.state = StateAuthenticated
	return nil
}

// Close 终态；已登记的句柄被注销
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	if s.state == StateAuthenticated {
		s.registry.Deregister(s.conn)
	}
	s.state = StateClosed
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) UserID() string { return s.userID }
