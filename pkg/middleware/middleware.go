// Package middleware 提供 Gin 通用中间件（request_id、访问日志、panic recover、限流）
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wyfcoding/fxorderbook/pkg/logger"
)

// RequestIDHeader 请求头名称，客户端传入时沿用
const RequestIDHeader = "X-Request-ID"

// RequestIDKey gin context key for request ID
const RequestIDKey = "request_id"

// GinRequestIDMiddleware 为每个请求分配 request_id 并写入 context 与响应头
func GinRequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// GinLoggingMiddleware Gin 访问日志中间件
func GinLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		ctx := c.Request.Context()
		status := c.Writer.Status()
		args := []any{
			"method", method,
			"path", path,
			"status_code", status,
			"client_ip", c.ClientIP(),
			"response_size", c.Writer.Size(),
			"duration", time.Since(start),
		}
		if status >= http.StatusInternalServerError {
			logger.Error(ctx, "HTTP request failed", args...)
			return
		}
		logger.Info(ctx, "HTTP request completed", args...)
	}
}

// GinRecoveryMiddleware Gin panic 恢复中间件
func GinRecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(c.Request.Context(), "HTTP request panicked",
					"path", c.Request.URL.Path,
					"panic", err,
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":      "Internal server error",
					"request_id": c.GetString(RequestIDKey),
				})
			}
		}()
		c.Next()
	}
}
