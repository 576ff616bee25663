package api

import (
	"FinScope/internal/domain/models"
	"FinScope/internal/domain/service"
	xhttp "FinScope/pkg/http"
	xlogger "FinScope/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalyticsHandler exposes the forecast and anomaly collaborators directly.
type AnalyticsHandler struct {
	logger     *xlogger.Logger
	analyzer   service.Analyzer
	forecaster service.Forecaster
}

func NewAnalyticsHandler(logger *xlogger.Logger, analyzer service.Analyzer, forecaster service.Forecaster) *AnalyticsHandler {
	return &AnalyticsHandler{logger: logger, analyzer: analyzer, forecaster: forecaster}
}

func (h *AnalyticsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/forecast", h.Forecast)
	g.POST("/analyze", h.Analyze)
}

func (h *AnalyticsHandler) Forecast(c echo.Context) error {
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := models.NormalizeSymbol(req.Symbol)
	fc, err := h.forecaster.Forecast(c.Request().Context(), symbol, req.Horizon)
	if err != nil {
		h.logger.Warn("forecast failed", xlogger.String("symbol", symbol), xlogger.Int("horizon", req.Horizon), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.UpstreamError("Forecast unavailable for "+symbol).WithError(err))
	}
	return xhttp.SuccessResponse(c, fc)
}

func (h *AnalyticsHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ts := req.Series()
	if err := ts.Validate(); err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}
	if !req.HasValues() {
		return xhttp.BadRequestResponse(c, "series has no values")
	}
	res, err := h.analyzer.Analyze(c.Request().Context(), ts)
	if err != nil {
		h.logger.Warn("analyze failed", xlogger.Int("points", ts.Len()), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.UpstreamError("Analysis unavailable").WithError(err))
	}
	return xhttp.SuccessResponse(c, res)
}
