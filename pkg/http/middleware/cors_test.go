package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	e := echo.New()
	e.Use(CORS(CORSConfig{
		AllowOrigins:  []string{"https://app.finscope.us"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost},
		AllowHeaders:  []string{echo.HeaderContentType},
		ExposeHeaders: []string{"X-Report-Key"},
		MaxAge:        600,
	}))
	e.POST("/api/agents/report", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	tests := []struct {
		name        string
		method      string
		origin      string
		wantCode    int
		wantOrigin  string
		wantMethods string
	}{
		{name: "preflight", method: http.MethodOptions, origin: "https://app.finscope.us", wantCode: http.StatusNoContent, wantOrigin: "https://app.finscope.us", wantMethods: "GET, POST"},
		{name: "simple", method: http.MethodPost, origin: "https://app.finscope.us", wantCode: http.StatusOK, wantOrigin: "https://app.finscope.us"},
		{name: "foreign origin", method: http.MethodPost, origin: "https://evil.example", wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/agents/report", nil)
			req.Header.Set(echo.HeaderOrigin, tt.origin)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
			assert.Equal(t, tt.wantMethods, rec.Header().Get(echo.HeaderAccessControlAllowMethods))
			if tt.wantOrigin != "" {
				assert.Equal(t, "X-Report-Key", rec.Header().Get(echo.HeaderAccessControlExposeHeaders))
			}
		})
	}
}
