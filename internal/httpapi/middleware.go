package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"stockflow/logger"
)

const requestIDKey = "request_id"

func requestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// requestID assigns a fresh v4 UUID to every request and echoes it in the
// X-Request-ID response header.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// requestLogger logs one line per handled request and feeds the metrics
// reporter.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		s.metrics.RecordRequest(status, elapsed)

		s.log.WithComponent("httpapi").WithRequestID(requestIDFrom(c)).WithFields(logger.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": elapsed.Milliseconds(),
			"client_ip":   c.ClientIP(),
		}).Info("handled request")
	}
}

// cors allows all origins, matching the deployment behind a trusted gateway.
func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// rateLimit bounds the process-wide request rate when enabled in config.
func (s *Server) rateLimit() gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(s.cfg.RateLimit.RequestsPerSecond), s.cfg.RateLimit.BurstSize)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorBody{
				Type:        "rate_limited",
				Description: "Too many requests.",
			})
			return
		}
		c.Next()
	}
}
