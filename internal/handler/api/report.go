package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"FinScope/internal/domain/models"
	domrepo "FinScope/internal/domain/repository"
	"FinScope/internal/usecase"
	xhttp "FinScope/pkg/http"
	xlogger "FinScope/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ReportGenerator is the report use case seen by the HTTP layer.
type ReportGenerator interface {
	Generate(ctx context.Context, in models.ReportInput) (*usecase.Result, error)
	Stream(ctx context.Context, in models.ReportInput, observe usecase.StepObserver) (*usecase.Result, error)
	Cached(ctx context.Context, key string) (*models.Report, error)
	Latest() (*models.Report, time.Time, bool)
}

// RunLister reads the archived run log.
type RunLister interface {
	Recent(ctx context.Context, limit int) ([]domrepo.RunSummary, error)
}

// ReportHandler serves report generation and retrieval. Report bodies keep
// the flat shape the dashboard expects instead of the data envelope.
type ReportHandler struct {
	logger  *xlogger.Logger
	reports ReportGenerator
	runs    RunLister
	limit   echo.MiddlewareFunc
}

func NewReportHandler(logger *xlogger.Logger, reports ReportGenerator, runs RunLister, limit echo.MiddlewareFunc) *ReportHandler {
	return &ReportHandler{logger: logger, reports: reports, runs: runs, limit: limit}
}

func (h *ReportHandler) RegisterRoutes(e *echo.Echo) {
	var mw []echo.MiddlewareFunc
	if h.limit != nil {
		mw = append(mw, h.limit)
	}

	g := e.Group("/api")
	g.POST("/agents/report", h.Report, mw...)
	g.GET("/agents/report/stream", h.Stream, mw...)
	g.GET("/agents/last-report", h.LastReport)
	g.GET("/reports/:key", h.CachedReport)
	g.GET("/reports", h.RecentRuns)
}

// Report runs the pipeline. 400 when no symbol produced data, 500 with the
// partial run log on a pipeline fault.
func (h *ReportHandler) Report(c echo.Context) error {
	req := &models.ReportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.reports.Generate(c.Request().Context(), req.Input())
	if err != nil {
		return h.reportError(c, err)
	}
	c.Response().Header().Set("X-Report-Key", res.Key)
	return xhttp.JSONResponse(c, http.StatusOK, echo.Map{"report": res.Report, "steps": res.Steps})
}

func (h *ReportHandler) reportError(c echo.Context, err error) error {
	var (
		noData *usecase.NoMarketDataError
		pipe   *usecase.PipelineError
	)
	switch {
	case errors.As(err, &noData):
		failures := noData.Failures
		if failures == nil {
			failures = []models.SymbolFailure{}
		}
		return xhttp.JSONResponse(c, http.StatusBadRequest, echo.Map{
			"error":    "No market data available for requested symbols",
			"failures": failures,
		})
	case errors.As(err, &pipe):
		h.logger.Error("report pipeline failed", xlogger.Error(err))
		return xhttp.JSONResponse(c, http.StatusInternalServerError, echo.Map{
			"error":  "Agent pipeline failed",
			"detail": pipe.Err.Error(),
			"steps":  pipe.Steps,
		})
	default:
		h.logger.Error("report request failed", xlogger.Error(err))
		return xhttp.JSONResponse(c, http.StatusInternalServerError, echo.Map{
			"error":  "Agent pipeline failed",
			"detail": err.Error(),
			"steps":  []models.RunStep{},
		})
	}
}

func (h *ReportHandler) LastReport(c echo.Context) error {
	report, at, ok := h.reports.Latest()
	if !ok {
		return xhttp.ErrorResponse(c, http.StatusNotFound, usecase.ErrNoReport.Error(), nil)
	}
	return xhttp.JSONResponse(c, http.StatusOK, echo.Map{"report": report, "updated_at": at})
}

func (h *ReportHandler) CachedReport(c echo.Context) error {
	report, err := h.reports.Cached(c.Request().Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, usecase.ErrNoReport) {
			return xhttp.NotFoundResponse(c, "Report expired or unknown")
		}
		h.logger.Error("cached report lookup failed", xlogger.String("key", c.Param("key")), xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, report)
}

func (h *ReportHandler) RecentRuns(c echo.Context) error {
	if h.runs == nil {
		return xhttp.NotFoundResponse(c, "Report archive is disabled")
	}
	req := &models.RecentRunsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rows, err := h.runs.Recent(c.Request().Context(), req.Limit)
	if err != nil {
		h.logger.Error("recent runs query failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("Failed to load archived runs").WithError(err))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}
