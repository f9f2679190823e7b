package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRegistrar struct {
	path       string
	registered bool
}

func (s *stubRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	s.registered = true
	path := s.path
	if path == "" {
		path = "/ping"
	}
	rg.GET(path, func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
}

func TestRouter_Setup(t *testing.T) {
	t.Run("registers routes under the default version prefix", func(t *testing.T) {
		engine := gin.New()
		reg := &stubRegistrar{}

		NewRouter(engine).Register(reg).Setup()
		require.True(t, reg.registered)

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("honors a custom version prefix", func(t *testing.T) {
		engine := gin.New()

		NewRouter(engine, WithAPIVersion("v2")).Register(&stubRegistrar{}).Setup()

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("registers multiple registrars", func(t *testing.T) {
		engine := gin.New()
		a, b := &stubRegistrar{path: "/a"}, &stubRegistrar{path: "/b"}

		r := NewRouter(engine)
		r.Register(a)
		r.Register(b)
		r.Setup()

		assert.True(t, a.registered)
		assert.True(t, b.registered)
	})
}
