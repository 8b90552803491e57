package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/storefront/pkg/token"
)

func newTestServer(t *testing.T) (*httptest.Server, *Registry, *token.Manager) {
	t.Helper()
	tokens := token.NewManager("secret", "storefront", time.Hour)
	registry := NewRegistry()
	srv := httptest.NewServer(NewServer(registry, tokens, Options{WriteTimeout: time.Second}, nil))
	t.Cleanup(srv.Close)
	return srv, registry, tokens
}

func dial(t *testing.T, srv *httptest.Server, tok string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	if tok != "" {
		url += "?token=" + tok
	}
	return websocket.DefaultDialer.Dial(url, nil)
}

func readEnvelope(t *testing.T, c *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]interface{}
	require.NoError(t, c.ReadJSON(&msg))
	return msg
}

func TestWSRejectsMissingOrInvalidToken(t *testing.T) {
	srv, _, _ := newTestServer(t)

	_, resp, err := dial(t, srv, "")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = dial(t, srv, "garbage")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWSAuthenticateAndDeliver(t *testing.T) {
	srv, registry, tokens := newTestServer(t)
	tok, err := tokens.Generate("u1", "user")
	require.NoError(t, err)

	c, _, err := dial(t, srv, tok)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.WriteJSON(map[string]string{"event": EventAuthenticate, "data": "u2"}))
	assert.Equal(t, EventAuthError, readEnvelope(t, c)["event"])
	assert.False(t, registry.Connected("u1"))

	require.NoError(t, c.WriteJSON(map[string]string{"event": EventAuthenticate, "data": "u1"}))
	ack := readEnvelope(t, c)
	assert.Equal(t, EventAuthenticated, ack["event"])

	require.Eventually(t, func() bool { return registry.Connected("u1") }, time.Second, 10*time.Millisecond)
	conns := registry.Lookup("u1")
	require.Len(t, conns, 1)
	require.NoError(t, conns[0].Emit(context.Background(), EventNotification, map[string]string{"title": "Order Shipped"}))

	msg := readEnvelope(t, c)
	assert.Equal(t, EventNotification, msg["event"])
	assert.Equal(t, "Order Shipped", msg["data"].(map[string]interface{})["title"])

	require.NoError(t, c.Close())
	require.Eventually(t, func() bool { return !registry.Connected("u1") }, 2*time.Second, 10*time.Millisecond)
}

func TestWSMultipleDevices(t *testing.T) {
	srv, registry, tokens := newTestServer(t)
	tok, err := tokens.Generate("u1", "user")
	require.NoError(t, err)

	var clients []*websocket.Conn
	for i := 0; i < 2; i++ {
		c, _, err := dial(t, srv, tok)
		require.NoError(t, err)
		defer c.Close()
		require.NoError(t, c.WriteJSON(map[string]interface{}{"event": EventAuthenticate, "data": map[string]string{"userId": "u1"}}))
		assert.Equal(t, EventAuthenticated, readEnvelope(t, c)["event"])
		clients = append(clients, c)
	}
	assert.Len(t, registry.Lookup("u1"), 2)

	require.NoError(t, clients[0].Close())
	require.Eventually(t, func() bool { return len(registry.Lookup("u1")) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestClaimedUserID(t *testing.T) {
	assert.Equal(t, "u1", claimedUserID([]byte(`"u1"`)))
	assert.Equal(t, "u1", claimedUserID([]byte(`{"userId":"u1"}`)))
	assert.Equal(t, "", claimedUserID([]byte(`42`)))
}
