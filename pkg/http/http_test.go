package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quoteQuery struct {
	Symbol string `query:"symbol" validate:"required,ticker"`
	Period string `query:"period" default:"6mo" validate:"oneof=1mo 6mo"`
}

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestReadAndValidateRequest(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantCode  string
		wantField string
	}{
		{name: "equity", target: "/?symbol=AAPL"},
		{name: "index", target: "/?symbol=%5EVIX"},
		{name: "fx", target: "/?symbol=EURUSD%3DX"},
		{name: "crypto", target: "/?symbol=BTC-USD"},
		{name: "missing", target: "/", wantCode: "ERR_REQUIRED", wantField: "symbol"},
		{name: "bad ticker", target: "/?symbol=DROP%20TABLE", wantCode: "ERR_TICKER", wantField: "symbol"},
		{name: "bad period", target: "/?symbol=SPY&period=10y", wantCode: "ERR_ONEOF", wantField: "period"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext(http.MethodGet, tt.target, "")
			q := &quoteQuery{}
			got := ReadAndValidateRequest(c, q)
			if tt.wantCode == "" {
				require.Nil(t, got)
				assert.Equal(t, "6mo", q.Period)
				return
			}
			errs, ok := got.([]ValidationError)
			require.True(t, ok)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantCode, errs[0].Code)
			assert.Equal(t, tt.wantField, errs[0].Field)
		})
	}
}

func TestReadAndValidateRequest_MalformedBody(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/", `{"symbol":`)
	errs, ok := ReadAndValidateRequest(c, &struct {
		Symbol string `json:"symbol"`
	}{}).([]ValidationError)
	require.True(t, ok)
	assert.Equal(t, "ERR_MALFORMED", errs[0].Code)
}

func TestErrorResponse(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/", "")
	require.NoError(t, ErrorResponse(c, http.StatusInternalServerError, "Failed to create share", errors.New("redis down")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to create share","detail":"redis down"}`, rec.Body.String())

	c, rec = newContext(http.MethodGet, "/", "")
	require.NoError(t, ErrorResponse(c, http.StatusNotFound, "Share not found or expired", nil))
	assert.JSONEq(t, `{"error":"Share not found or expired"}`, rec.Body.String())
}

func TestAppErrorResponse(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/", "")
	require.NoError(t, AppErrorResponse(c, UpstreamError("Failed to load summary").WithError(errors.New("fred"))))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status int        `json:"status"`
		Data   []AppError `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadGateway, body.Status)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "ERR_UPSTREAM", body.Data[0].Code)

	c, rec = newContext(http.MethodGet, "/", "")
	require.NoError(t, AppErrorResponse(c, errors.New("plain")))
	assert.Contains(t, rec.Body.String(), `"status":500`)
}

func TestQueryHelpers(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/?symbols=AAPL,%20msft,,&fast=yes&beginner=nope", "")
	assert.Equal(t, []string{"AAPL", "msft"}, QueryList(c, "symbols"))
	assert.True(t, QueryBool(c, "fast", false))
	assert.False(t, QueryBool(c, "beginner", false))
	assert.True(t, QueryBool(c, "missing", true))
}
