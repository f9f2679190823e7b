package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/greenmission/backend/internal/interfaces/http/dto"
)

// CachePinger reports whether the cache backend is reachable
type CachePinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler handles health and system information endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	version   string
	cache     CachePinger
}

// NewSystemHandler creates a new SystemHandler. cache may be nil when the
// in-memory cache backend is in use.
func NewSystemHandler(version string, cache CachePinger) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		version:   version,
		cache:     cache,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
	Cache     string `json:"cache"`
}

// Health reports service liveness and cache reachability.
// GET /api/v1/health
func (h *SystemHandler) Health(c *gin.Context) {
	cacheStatus := "memory"
	if h.cache != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.cache.Ping(ctx); err != nil {
			cacheStatus = "unreachable"
		} else {
			cacheStatus = "ok"
		}
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(HealthResponse{
		Status:    "ok",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Cache:     cacheStatus,
	}))
}
