package http

import (
	"fmt"
	"net/http"
)

// AppError is an error rendered inside the response envelope. Err is for
// logs and is never serialized.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

// errorCodes maps a status to the code clients switch on.
var errorCodes = map[int]string{
	http.StatusBadRequest:          "ERR_BAD_REQUEST",
	http.StatusNotFound:            "ERR_NOT_FOUND",
	http.StatusTooManyRequests:     "ERR_TOO_MANY_REQUESTS",
	http.StatusInternalServerError: "ERR_INTERNAL",
	http.StatusBadGateway:          "ERR_UPSTREAM",
}

// NewAppError builds an error for status; the code comes from errorCodes.
func NewAppError(status int, format string, a ...interface{}) *AppError {
	code, ok := errorCodes[status]
	if !ok {
		code = "ERR_UNKNOWN"
	}
	msg := format
	if len(a) > 0 {
		msg = fmt.Sprintf(format, a...)
	}
	return &AppError{Code: code, Message: msg, Status: status}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]interface{})
	}
	e.Params[key] = value
	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

func NotFoundErrorf(format string, a ...interface{}) *AppError {
	return NewAppError(http.StatusNotFound, format, a...)
}

func TooManyRequestsError(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, "%s", message)
}

// UpstreamError marks a failed market, macro or analytics provider call.
func UpstreamError(message string) *AppError {
	return NewAppError(http.StatusBadGateway, "%s", message)
}

func InternalError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, "%s", message)
}
