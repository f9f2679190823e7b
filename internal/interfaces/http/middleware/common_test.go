package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(cfg CORSConfig) *gin.Engine {
		r := gin.New()
		r.Use(CORSWithConfig(cfg))
		r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}

	t.Run("allows configured origin", func(t *testing.T) {
		r := newRouter(CORSConfig{AllowOrigins: []string{"https://greenmission.club"}})

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://greenmission.club")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "https://greenmission.club", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("omits header for unknown origin", func(t *testing.T) {
		r := newRouter(CORSConfig{AllowOrigins: []string{"https://greenmission.club"}})

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard allows any origin", func(t *testing.T) {
		r := newRouter(CORSConfig{AllowOrigins: []string{"*"}})

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://anything.example")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight returns 204", func(t *testing.T) {
		r := newRouter(CORSConfig{AllowOrigins: []string{"*"}})

		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "https://greenmission.club")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("generates an ID when none is supplied", func(t *testing.T) {
		r := gin.New()
		r.Use(RequestID())
		var seen string
		r.GET("/ping", func(c *gin.Context) {
			seen = c.GetString("request_id")
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
	})

	t.Run("keeps a caller-supplied ID", func(t *testing.T) {
		r := gin.New()
		r.Use(RequestID())
		r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "req-provided-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "req-provided-1", w.Header().Get("X-Request-ID"))
	})
}

func TestSecure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Secure())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(BodyLimit(16))
	r.POST("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("accepts a small body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("tiny"))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects an oversized body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64)))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}
