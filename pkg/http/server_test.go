package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/ping", func(c echo.Context) error { return SuccessResponse(c, "pong") })
}

func TestNewServer_Routes(t *testing.T) {
	s := NewServer([]Handler{pingHandler{}, nil}, WithMetrics(false), WithAddr("", 0))
	assert.Equal(t, 8080, s.config.Port)

	tests := []struct {
		name   string
		method string
		path   string
		origin string
		want   int
	}{
		{name: "registered route", method: http.MethodGet, path: "/api/ping", want: http.StatusOK},
		{name: "metrics disabled", method: http.MethodGet, path: "/metrics", want: http.StatusNotFound},
		{name: "preflight", method: http.MethodOptions, path: "/api/ping", origin: "https://dash.example", want: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.origin != "" {
				req.Header.Set(echo.HeaderOrigin, tt.origin)
				req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
			}
			rec := httptest.NewRecorder()
			s.Echo().ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
		})
	}
}
