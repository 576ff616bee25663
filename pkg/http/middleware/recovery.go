package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	applogger "FinScope/pkg/logger"

	"github.com/labstack/echo/v4"
)

// maxStack bounds the stack written to the log line.
const maxStack = 4 << 10

// Recover turns a handler panic into a 500 with the flat error body used by
// the API. Nothing is written when the response was already committed, as
// with an upgraded report stream.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}
				stack := debug.Stack()
				if len(stack) > maxStack {
					stack = stack[:maxStack]
				}
				l.Error("handler panic",
					applogger.String("route", c.Path()),
					applogger.String("panic", fmt.Sprint(r)),
					applogger.String("stack", string(stack)),
				)
				if c.Response().Committed {
					return
				}
				err = c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
			}()
			return next(c)
		}
	}
}
