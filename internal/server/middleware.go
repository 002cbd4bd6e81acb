package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/lokapasar/internal/usercontext"
)

const userIDHeader = "X-User-Id"

// UserContext lifts the gateway-asserted user identity into the request
// context. The header is trusted; authentication happens upstream.
func (s *Server) UserContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(userIDHeader))
		if raw != "" {
			if userID, err := snowflake.ParseString(raw); err == nil && userID != 0 {
				ctx := usercontext.WithUserID(c.Request.Context(), userID)
				c.Request = c.Request.WithContext(ctx)
			}
		}
		c.Next()
	}
}

// UserRequired rejects requests that arrive without a user identity.
func (s *Server) UserRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := usercontext.UserIDFromContext(c.Request.Context()); !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// CheckoutRateLimit throttles checkout per user, falling back to the client
// IP for anonymous traffic.
func (s *Server) CheckoutRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.checkoutLimiter == nil || !s.checkoutLimiter.Enabled() {
			c.Next()
			return
		}

		subject := "ip:" + c.ClientIP()
		if userID, ok := usercontext.UserIDFromContext(c.Request.Context()); ok {
			subject = "user:" + userID.String()
		}

		if !s.checkoutLimiter.Allow(c.Request.Context(), subject) {
			if s.metrics != nil {
				s.metrics.RecordRateLimitDenied(c.Request.Context(), "checkout", "token_bucket")
			}
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
