package handlers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/bakeflow/pos-checkout/internal/permissions"
	"github.com/bakeflow/pos-checkout/internal/session"
)

const sessionContextKey = "pos_session"

// RequireSession resolves the X-Session-Id header into a session snapshot
// and aborts with 401 when it is missing, unknown or expired.
func RequireSession(reg *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Session-Id")
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_session"})
			return
		}
		s, err := reg.Get(id)
		if err != nil {
			code := "unknown_session"
			if errors.Is(err, session.ErrExpired) {
				code = "session_expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": code})
			return
		}
		c.Set(sessionContextKey, s)
		c.Next()
	}
}

// sessionFrom returns the snapshot stored by RequireSession.
func sessionFrom(c *gin.Context) session.Session {
	return c.MustGet(sessionContextKey).(session.Session)
}

// RequirePermission gates a route group on a capability bit.
func RequirePermission(bit permissions.Set) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessionFrom(c)
		if !s.Permissions.Has(bit) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission_denied"})
			return
		}
		c.Next()
	}
}

// RateLimiter is a per-client token bucket keyed by client IP.
func RateLimiter(limit rate.Limit, burst int) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = map[string]*rate.Limiter{}
	)

	return func(c *gin.Context) {
		mu.Lock()
		lim, ok := limiters[c.ClientIP()]
		if !ok {
			lim = rate.NewLimiter(limit, burst)
			limiters[c.ClientIP()] = lim
		}
		mu.Unlock()

		if !lim.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
