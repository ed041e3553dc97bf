package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/fakequant/pkg/fakequant"
)

func decodeJSON[T any](r io.Reader) (T, error) {
	var v T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&v); err != nil {
		return v, err
	}
	return v, nil
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

// writeOpError maps operator precondition failures to HTTP 400 responses with
// a stable error type string.
func writeOpError(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, fakequant.ErrTypeMismatch):
		return writeError(c, http.StatusBadRequest, "type_mismatch", err.Error())
	case errors.Is(err, fakequant.ErrEmptyInput):
		return writeError(c, http.StatusBadRequest, "empty_input", err.Error())
	case errors.Is(err, fakequant.ErrInvalidArgument):
		return writeError(c, http.StatusBadRequest, "invalid_argument", err.Error())
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
		},
	})
}
