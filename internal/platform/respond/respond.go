// Package respond implements the uniform response envelope used by every
// endpoint. Outcomes are signalled through the envelope status field; the
// HTTP status code stays 200 for all application-level results.
package respond

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	StatusError   = 0
	StatusSuccess = 1
)

type Envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK writes a success envelope. Data may be nil, in which case the data
// field is omitted.
func OK(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	})
}

// Fail writes a failure envelope for expected business outcomes such as
// validation errors or conflicts.
func Fail(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, Envelope{
		Status:  StatusError,
		Message: message,
	})
}

// Err writes a failure envelope for unexpected internal errors, carrying the
// error string alongside a generic message.
func Err(c echo.Context, message string, err error) error {
	env := Envelope{
		Status:  StatusError,
		Message: message,
	}
	if err != nil {
		env.Error = err.Error()
	}
	return c.JSON(http.StatusOK, env)
}
