package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greenmission/backend/internal/domain/shared"
	"github.com/greenmission/backend/internal/interfaces/http/dto"
)

// RateLimiter is a fixed-window in-memory rate limiter keyed by client.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*rateWindow
	limit   int
	window  time.Duration
	clock   shared.Clock
}

type rateWindow struct {
	remaining int
	start     time.Time
}

// NewRateLimiter creates a rate limiter allowing limit requests per window.
func NewRateLimiter(limit int, window time.Duration, clock shared.Clock) *RateLimiter {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &RateLimiter{
		clients: make(map[string]*rateWindow),
		limit:   limit,
		window:  window,
		clock:   clock,
	}
}

// Allow reports whether a request from key fits in the current window.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()

	// Opportunistically drop stale windows so abandoned clients do not
	// accumulate.
	if len(rl.clients) > 10_000 {
		for k, w := range rl.clients {
			if now.Sub(w.start) > rl.window {
				delete(rl.clients, k)
			}
		}
	}

	w, exists := rl.clients[key]
	if !exists || now.Sub(w.start) >= rl.window {
		rl.clients[key] = &rateWindow{remaining: rl.limit - 1, start: now}
		return true
	}
	if w.remaining > 0 {
		w.remaining--
		return true
	}
	return false
}

// Remaining returns the requests left in key's current window.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, exists := rl.clients[key]
	if !exists || rl.clock.Now().Sub(w.start) >= rl.window {
		return rl.limit
	}
	return w.remaining
}

// RateLimit returns a rate limiting middleware keyed by client IP.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()

		if !limiter.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponse(dto.ErrCodeRateLimited, "Too many requests. Please try again later."))
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}
