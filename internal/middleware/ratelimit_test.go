package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"FinScope/internal/service/ratelimit"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientRateLimit(t *testing.T) {
	e := echo.New()
	rl := NewClientRateLimit(ratelimit.New(2, 0.5), nil, nil)
	e.POST("/api/agents/report", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, rl.Middleware())

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/agents/report", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)

	rec := send("10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "ERR_TOO_MANY_REQUESTS")

	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code, "buckets are per client")
}

func TestClientRateLimit_NilPassesThrough(t *testing.T) {
	var rl *ClientRateLimit
	e := echo.New()
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, rl.Middleware())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
