package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/d60-Lab/storefront/config"
)

func TestInitLevels(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	require.NoError(t, Init(config.LogConfig{Level: "warn", Format: "console"}))
	assert.False(t, L().Core().Enabled(zap.InfoLevel))
	assert.True(t, L().Core().Enabled(zap.WarnLevel))

	require.NoError(t, Init(config.LogConfig{Level: "not-a-level", Format: "json"}))
	assert.True(t, L().Core().Enabled(zap.InfoLevel))
}

func TestGinLoggerFields(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })
	core, logs := observer.New(zap.InfoLevel)
	zap.ReplaceGlobals(zap.New(core))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinLogger())
	r.GET("/ping", func(c *gin.Context) {
		c.Set("user_id", "u1")
		c.String(http.StatusTeapot, "pong")
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.EqualValues(t, http.StatusTeapot, ctx["status"])
	assert.Equal(t, "/ping", ctx["path"])
	assert.Equal(t, "u1", ctx["user_id"])
}
