package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"FinScope/internal/domain/models"
	"FinScope/internal/usecase"
	xhttp "FinScope/pkg/http"
	xlogger "FinScope/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPingPeriod = 20 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// StreamFrame is one websocket message of a streamed run.
type StreamFrame struct {
	Type     string                 `json:"type"`
	Step     *models.RunStep        `json:"step,omitempty"`
	Key      string                 `json:"key,omitempty"`
	Report   *models.Report         `json:"report,omitempty"`
	Steps    []models.RunStep       `json:"steps,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Detail   string                 `json:"detail,omitempty"`
	Failures []models.SymbolFailure `json:"failures,omitempty"`
}

type frameWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *frameWriter) write(f StreamFrame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return w.conn.WriteJSON(f)
}

func (w *frameWriter) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait))
}

// streamInput reads ?symbols=AAPL,MSFT&fast=1&beginner=1.
func streamInput(c echo.Context) models.ReportInput {
	return models.ReportRequest{
		Symbols:  xhttp.QueryList(c, "symbols"),
		Fast:     xhttp.QueryBool(c, "fast", false),
		Beginner: xhttp.QueryBool(c, "beginner", false),
	}.Input()
}

// Stream runs the pipeline over a websocket, sending a step frame per
// recorded step and a final report or error frame. Closing the socket
// cancels the run.
func (h *ReportHandler) Stream(c echo.Context) error {
	in := streamInput(c)

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("report stream upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	w := &frameWriter{conn: conn}

	// Drain client frames so close and pong control messages are processed.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(streamPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := w.ping(); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	res, err := h.reports.Stream(ctx, in, func(step models.RunStep) {
		_ = w.write(StreamFrame{Type: "step", Step: &step})
	})

	final := StreamFrame{Type: "report"}
	if err != nil {
		final = errorFrame(err)
		h.logger.Warn("report stream ended with error", xlogger.Error(err))
	} else {
		final.Key, final.Report, final.Steps = res.Key, res.Report, res.Steps
	}
	if werr := w.write(final); werr != nil {
		return nil
	}

	w.mu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(streamWriteWait))
	w.mu.Unlock()
	return nil
}

func errorFrame(err error) StreamFrame {
	var (
		noData *usecase.NoMarketDataError
		pipe   *usecase.PipelineError
	)
	switch {
	case errors.As(err, &noData):
		return StreamFrame{Type: "error", Error: "No market data available for requested symbols", Failures: noData.Failures}
	case errors.As(err, &pipe):
		return StreamFrame{Type: "error", Error: "Agent pipeline failed", Detail: pipe.Err.Error(), Steps: pipe.Steps}
	default:
		return StreamFrame{Type: "error", Error: "Agent pipeline failed", Detail: err.Error()}
	}
}
