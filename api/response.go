package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIResponse is the envelope of every JSON reply.
type APIResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ValidationError describes one rejected request field.
type ValidationError struct {
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

func dataResponse(c echo.Context, status int, data any) error {
	return c.JSON(status, APIResponse{
		Status:  status,
		Message: http.StatusText(status),
		Data:    data,
	})
}

func ok(c echo.Context, data any) error {
	return dataResponse(c, http.StatusOK, data)
}

func badRequest(c echo.Context, errs []ValidationError) error {
	return dataResponse(c, http.StatusBadRequest, errs)
}

func notFound(c echo.Context, msg string) error {
	return dataResponse(c, http.StatusNotFound, msg)
}

func internalError(c echo.Context, err error) error {
	return dataResponse(c, http.StatusInternalServerError, err.Error())
}
