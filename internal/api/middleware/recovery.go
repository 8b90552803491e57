package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/storefront/pkg/logger"
	"github.com/d60-Lab/storefront/pkg/response"
)

// Recovery panic 时记录日志并返回 500；reportToSentry 为 true 时先经 sentrygin 上报
func Recovery(reportToSentry bool) gin.HandlersChain {
	chain := gin.HandlersChain{recoverJSON()}
	if reportToSentry {
		chain = append(chain, sentrygin.New(sentrygin.Options{
			Repanic:         true,
			WaitForDelivery: false,
			Timeout:         2 * time.Second,
		}))
	}
	return chain
}

func recoverJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if r == http.ErrAbortHandler {
				panic(r)
			}
			logger.Error("panic recovered",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			if hub := sentrygin.GetHubFromContext(c); hub == nil {
				sentry.CurrentHub().Recover(r)
			}
			response.InternalError(c, fmt.Errorf("panic: %v", r))
		}()
		c.Next()
	}
}
