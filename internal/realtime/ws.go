package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/d60-Lab/storefront/pkg/token"
)

const (
	EventAuthenticate  = "authenticate"
	EventAuthenticated = "authenticated"
	EventAuthError     = "auth_error"
	EventNotification  = "notification"
	EventPing          = "ping"
	EventPong          = "pong"
)

var ErrConnClosed = errors.New("connection closed")

// TokenVerifier 升级前校验握手令牌
type TokenVerifier interface {
	Parse(tokenString string) (*token.Claims, error)
}

// Envelope 线上帧格式
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Options 传输层参数
type Options struct {
	WriteTimeout   time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	ReadLimit      int64
	AllowedOrigins []string
}

func (o *Options) withDefaults() {
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 5 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = o.PongWait * 9 / 10
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = 4096
	}
}

// Server WebSocket 入口：令牌校验 -> 升级 -> authenticate 事件登记
type Server struct {
	registry *Registry
	verifier TokenVerifier
	opts     Options
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewServer(registry *Registry, verifier TokenVerifier, opts Options, log *zap.Logger) *Server {
	opts.withDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{registry: registry, verifier: verifier, opts: opts, log: log}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.opts.AllowedOrigins) == 0 {
		return true
	}
	for _, o := range s.opts.AllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := tokenFromRequest(r)
	if raw == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	claims, err := s.verifier.Parse(raw)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	conn := newWSConn(ws, s.opts.WriteTimeout)
	sess := NewSession(s.registry, conn, claims.UserID)
	s.log.Debug("websocket connected", zap.String("user_id", claims.UserID), zap.String("conn_id", conn.ID()))

	s.serve(sess, conn)
}

func (s *Server) serve(sess *Session, conn *wsConn) {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.heartbeat(conn, stop)
	}()
	defer func() {
		close(stop)
		sess.Close()
		_ = conn.Close()
		wg.Wait()
		s.log.Debug("websocket closed", zap.String("user_id", sess.UserID()), zap.String("conn_id", conn.ID()))
	}()

	ws := conn.ws
	ws.SetReadLimit(s.opts.ReadLimit)
	_ = ws.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	})

	ctx := context.Background()
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("websocket read failed", zap.Error(err))
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(s.opts.PongWait))

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		switch msg.Event {
		case EventAuthenticate:
			claimed := claimedUserID(msg.Data)
			if err := sess.Authenticate(claimed); err != nil {
				s.log.Warn("websocket authentication rejected",
					zap.String("user_id", sess.UserID()), zap.String("claimed", claimed), zap.Error(err))
				_ = conn.Emit(ctx, EventAuthError, map[string]string{"message": "Authentication failed"})
				continue
			}
			_ = conn.Emit(ctx, EventAuthenticated, map[string]string{"userId": sess.UserID()})
		case EventPing:
			_ = conn.Emit(ctx, EventPong, nil)
		}
	}
}

func (s *Server) heartbeat(conn *wsConn, stop <-chan struct{}) {
	ticker := time.NewTicker(s.opts.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

// claimedUserID 接受 "id" 或 {"userId":"id"}
func claimedUserID(raw json.RawMessage) string {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id
	}
	var obj struct {
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.UserID
	}
	return ""
}

func tokenFromRequest(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// wsConn 单写者：所有数据帧经 writeMu 串行，控制帧由 gorilla 保证并发安全
type wsConn struct {
	id           string
	ws           *websocket.Conn
	writeTimeout time.Duration
	writeMu      sync.Mutex
	closeOnce    sync.Once
	done         chan struct{}
}

func newWSConn(ws *websocket.Conn, writeTimeout time.Duration) *wsConn {
	return &wsConn{id: uuid.New().String(), ws: ws, writeTimeout: writeTimeout, done: make(chan struct{})}
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) Emit(ctx context.Context, event string, payload interface{}) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}
	deadline := time.Now().Add(c.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.ws.WriteJSON(Envelope{Event: event, Data: payload})
}

func (c *wsConn) ping() error {
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout))
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.ws.Close()
	})
	return err
}
