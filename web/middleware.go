package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Ctx = *gin.Context
type Handler = gin.HandlerFunc
type Router = gin.IRouter

const requestIDKey = "request_id"

// RequestID sets/propagates a request ID.
func RequestID() Handler {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Set(requestIDKey, id)
		c.Next()
	}
}

// AccessLog writes a structured access log after the request completes.
func AccessLog(l *slog.Logger) Handler {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Info("http_access",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
			"req_id", c.GetString(requestIDKey),
		)
	}
}

// RecoveryProblem converts panics to RFC7807 "problem+json".
func RecoveryProblem(l *slog.Logger) Handler {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				l.Error("panic", "error", rec, "req_id", c.GetString(requestIDKey))
				Problem(c, http.StatusInternalServerError, "unexpected server error")
			}
		}()
		c.Next()
	}
}

// Problem aborts the request with an RFC7807 body.
func Problem(c *gin.Context, status int, detail string, ext ...any) {
	body := gin.H{
		"type":   "about:blank",
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	}
	for i := 0; i+1 < len(ext); i += 2 {
		if k, ok := ext[i].(string); ok {
			body[k] = ext[i+1]
		}
	}
	c.Header("Content-Type", "application/problem+json")
	c.AbortWithStatusJSON(status, body)
}
