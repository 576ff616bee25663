package api

import (
	"context"
	"errors"
	"net/http"

	"FinScope/internal/domain/models"
	"FinScope/internal/domain/service"
	"FinScope/internal/usecase"
	xhttp "FinScope/pkg/http"
	xlogger "FinScope/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Sharer creates and resolves share links.
type Sharer interface {
	Create(ctx context.Context, report *models.Report, ttlSeconds int) (*usecase.Share, error)
	Get(ctx context.Context, token string) (*models.Report, error)
}

// Chatter answers questions about the latest report.
type Chatter interface {
	Ask(ctx context.Context, messages []models.ChatMessage) service.Explanation
}

// ShareHandler serves share links and the report chat.
type ShareHandler struct {
	logger *xlogger.Logger
	shares Sharer
	chat   Chatter
	limit  echo.MiddlewareFunc
}

func NewShareHandler(logger *xlogger.Logger, shares Sharer, chat Chatter, limit echo.MiddlewareFunc) *ShareHandler {
	return &ShareHandler{logger: logger, shares: shares, chat: chat, limit: limit}
}

func (h *ShareHandler) RegisterRoutes(e *echo.Echo) {
	var mw []echo.MiddlewareFunc
	if h.limit != nil {
		mw = append(mw, h.limit)
	}

	g := e.Group("/api")
	g.POST("/share", h.CreateShare)
	g.GET("/share/:token", h.GetShare)
	g.POST("/agents/chat", h.Chat, mw...)
}

func (h *ShareHandler) CreateShare(c echo.Context) error {
	req := &models.ShareRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	share, err := h.shares.Create(c.Request().Context(), req.Report, req.TTLSeconds)
	if err != nil {
		if errors.Is(err, usecase.ErrNoReport) {
			return xhttp.ErrorResponse(c, http.StatusBadRequest, "No report available to share", nil)
		}
		h.logger.Error("share create failed", xlogger.Error(err))
		return xhttp.ErrorResponse(c, http.StatusInternalServerError, "Failed to create share", err)
	}
	return xhttp.JSONResponse(c, http.StatusOK, share)
}

func (h *ShareHandler) GetShare(c echo.Context) error {
	report, err := h.shares.Get(c.Request().Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, usecase.ErrShareNotFound) {
			return xhttp.ErrorResponse(c, http.StatusNotFound, "Share not found or expired", nil)
		}
		h.logger.Error("share load failed", xlogger.Error(err))
		return xhttp.ErrorResponse(c, http.StatusInternalServerError, "Failed to load share", err)
	}
	return xhttp.JSONResponse(c, http.StatusOK, echo.Map{"report": report})
}

func (h *ShareHandler) Chat(c echo.Context) error {
	req := &models.ChatRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	answer := h.chat.Ask(c.Request().Context(), req.Messages)
	if answer.Failed {
		h.logger.Warn("chat explainer degraded")
	}
	return xhttp.JSONResponse(c, http.StatusOK, echo.Map{"reply": answer.Text, "degraded": answer.Failed})
}
