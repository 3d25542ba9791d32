package presenter

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/totegamma/orderdemo"
	"github.com/totegamma/orderdemo/internal/domain"
)

const (
	CodeNotFound          = "NOT_FOUND"
	CodeRemoteUnavailable = "REMOTE_UNAVAILABLE"
	CodeInvalidArgument   = "INVALID_ARGUMENT"
	CodeDuplicateEmail    = "DUPLICATE_EMAIL"
	CodeInternal          = "INTERNAL_SERVER_ERROR"
)

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func Created(c echo.Context, payload any) error {
	return c.JSON(http.StatusCreated, payload)
}

func NoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

func BadRequest(c echo.Context, err error) error {
	slog.WarnContext(c.Request().Context(), "bad request", slog.String("error", err.Error()), slog.String("module", "rest"))
	return c.JSON(http.StatusBadRequest, orderdemo.ErrorResponse{Error: err.Error(), Code: CodeInvalidArgument})
}

func BadRequestMessage(c echo.Context, msg string) error {
	slog.WarnContext(c.Request().Context(), "bad request", slog.String("error", msg), slog.String("module", "rest"))
	return c.JSON(http.StatusBadRequest, orderdemo.ErrorResponse{Error: msg, Code: CodeInvalidArgument})
}

func NotFound(c echo.Context, msg string) error {
	slog.InfoContext(c.Request().Context(), "not found", slog.String("error", msg), slog.String("module", "rest"))
	return c.JSON(http.StatusNotFound, orderdemo.ErrorResponse{Error: msg, Code: CodeNotFound})
}

func Conflict(c echo.Context, err error, code string) error {
	slog.WarnContext(c.Request().Context(), "conflict", slog.String("error", err.Error()), slog.String("module", "rest"))
	return c.JSON(http.StatusConflict, orderdemo.ErrorResponse{Error: err.Error(), Code: code})
}

func Unavailable(c echo.Context, err error) error {
	slog.ErrorContext(c.Request().Context(), "remote unavailable", slog.String("error", err.Error()), slog.String("module", "rest"))
	return c.JSON(http.StatusServiceUnavailable, orderdemo.ErrorResponse{Error: err.Error(), Code: CodeRemoteUnavailable})
}

func InternalError(c echo.Context, err error) error {
	slog.ErrorContext(c.Request().Context(), "internal error", slog.String("error", err.Error()), slog.String("module", "rest"))
	return c.JSON(http.StatusInternalServerError, orderdemo.ErrorResponse{Error: err.Error(), Code: CodeInternal})
}

// Error picks the response for err by its domain kind.
func Error(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return NotFound(c, err.Error())
	case errors.Is(err, domain.ErrValidation):
		return BadRequest(c, err)
	case errors.Is(err, domain.ErrDuplicateEmail):
		return Conflict(c, err, CodeDuplicateEmail)
	case errors.Is(err, domain.ErrRemoteUnavailable):
		return Unavailable(c, err)
	default:
		return InternalError(c, err)
	}
}
