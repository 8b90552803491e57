package logger

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/d60-Lab/storefront/config"
)

// Init 根据配置构建全局 zap logger
func Init(cfg config.LogConfig) error {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		level.SetLevel(zapcore.InfoLevel)
	}

	var zc zap.Config
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zc.Level = level
	if cfg.Output != "" && cfg.Output != "stdout" {
		zc.OutputPaths = []string{cfg.Output}
	}

	l, err := zc.Build()
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(l)
	return nil
}

// L 返回全局 logger
func L() *zap.Logger { return zap.L() }

func Debug(msg string, fields ...zap.Field) { zap.L().WithOptions(zap.AddCallerSkip(1)).Debug(msg, fields...) }

func Info(msg string, fields ...zap.Field) { zap.L().WithOptions(zap.AddCallerSkip(1)).Info(msg, fields...) }

func Warn(msg string, fields ...zap.Field) { zap.L().WithOptions(zap.AddCallerSkip(1)).Warn(msg, fields...) }

func Error(msg string, fields ...zap.Field) { zap.L().WithOptions(zap.AddCallerSkip(1)).Error(msg, fields...) }

func Fatal(msg string, fields ...zap.Field) { zap.L().WithOptions(zap.AddCallerSkip(1)).Fatal(msg, fields...) }

// Sync 刷新缓冲日志
func Sync() error { return zap.L().Sync() }

// GinLogger 请求日志中间件
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if uid, ok := c.Get("user_id"); ok {
			fields = append(fields, zap.Any("user_id", uid))
		}
		switch {
		case len(c.Errors) > 0:
			Error("request", append(fields, zap.String("errors", c.Errors.String()))...)
		case c.Writer.Status() >= 500:
			Error("request", fields...)
		default:
			Info("request", fields...)
		}
	}
}
