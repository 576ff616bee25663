package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// DataResponse writes the envelope with statusCode inside a 200 response.
func DataResponse(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(http.StatusOK, APIResponse{
		Status:  statusCode,
		Message: http.StatusText(statusCode),
		Data:    data,
	})
}

// JSONResponse writes body as-is with the given HTTP status, for endpoints
// whose payload shape is fixed by clients and bypasses the envelope.
func JSONResponse(c echo.Context, statusCode int, body interface{}) error {
	return c.JSON(statusCode, body)
}

// ErrorResponse writes an ErrorBody with a real HTTP status. A nil cause
// omits the detail.
func ErrorResponse(c echo.Context, statusCode int, message string, cause error) error {
	body := ErrorBody{Error: message}
	if cause != nil {
		body.Detail = cause.Error()
	}
	return c.JSON(statusCode, body)
}

func ListResponse(c echo.Context, rows interface{}, total int64) error {
	return DataResponse(c, http.StatusOK, &ListDataResponse{
		Rows:  rows,
		Total: total,
	})
}

func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

func BadRequestResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusBadRequest, data)
}

func NotFoundResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusNotFound, data)
}

func InternalServerErrorResponse(c echo.Context) error {
	return DataResponse(c, http.StatusInternalServerError, "Something went wrong")
}

// AppErrorResponse writes err inside the envelope, or a generic 500 when it
// is not an *AppError.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return DataResponse(c, appErr.Status, []*AppError{appErr})
	}
	return InternalServerErrorResponse(c)
}
