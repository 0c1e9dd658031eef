// Package httpkit holds the gin plumbing shared by every module: request
// tagging, auth, rate limits and the JSON error envelope.
package httpkit

import (
	"context"
	"time"

	"leadqualify_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID carries the request correlation ID in both directions.
const HeaderRequestID = "X-Request-ID"

// RequestLogger tags each request with an ID, stores it on the request
// context for downstream pipeline logs and writes one access line.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID))

		c.Next()

		reqLog := log.WithRequestID(requestID)
		method, path, status := c.Request.Method, c.Request.URL.Path, c.Writer.Status()
		if last := c.Errors.Last(); last != nil {
			reqLog.HTTPError(method, path, status, last, c.ClientIP())
			return
		}
		reqLog.HTTPRequest(method, path, status, float64(time.Since(start).Milliseconds()), c.ClientIP())
	}
}

// SecurityHeaders sets headers for a JSON-only API. Nothing here is meant
// to be framed or rendered as a document.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Cache-Control", "no-store")
		if c.Request.TLS != nil {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
