package api

import (
	"context"

	"FinScope/internal/domain/models"
	xhttp "FinScope/pkg/http"
	xlogger "FinScope/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MarketData serves the dashboard data endpoints.
type MarketData interface {
	Summary(ctx context.Context) (*models.DataSummary, error)
	Market(ctx context.Context, req models.MarketDataRequest) (*models.MarketData, error)
}

type DataHandler struct {
	logger *xlogger.Logger
	data   MarketData
}

func NewDataHandler(logger *xlogger.Logger, data MarketData) *DataHandler {
	return &DataHandler{logger: logger, data: data}
}

func (h *DataHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/data")
	g.GET("/summary", h.Summary)
	g.GET("/market", h.Market)
}

func (h *DataHandler) Summary(c echo.Context) error {
	res, err := h.data.Summary(c.Request().Context())
	if err != nil {
		h.logger.Error("data summary failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.UpstreamError("Failed to load summary").WithError(err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

func (h *DataHandler) Market(c echo.Context) error {
	req := &models.MarketDataRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.data.Market(c.Request().Context(), *req)
	if err != nil {
		h.logger.Warn("market data failed", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("No market data for %s", req.Symbol).WithError(err))
	}
	return xhttp.SuccessResponse(c, res)
}
