package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/rabucejojr/digial-logbook/internal/api/handler"
	"github.com/rabucejojr/digial-logbook/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to their HTTP status codes.
//   - Reports unmatched routes as "Route not found".
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the failure envelope: {"success":false,"error":{"message","details"}}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, detail := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, handler.ErrorBody{Success: false, Error: detail})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorDetail) {
	var de *domain.Error
	if errors.As(err, &de) {
		code := statusFor(de.Kind)
		if code == http.StatusInternalServerError {
			logInternal(log, c, err)
		}
		detail := handler.ErrorDetail{Message: de.Message}
		if len(de.Details) > 0 {
			detail.Details = de.Details
		}
		return code, detail
	}

	// Echo's own errors (router misses, body limit, rate limit, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			return http.StatusNotFound, handler.ErrorDetail{
				Message: "Route not found",
				Details: fmt.Sprintf("Cannot %s %s", c.Request().Method, c.Request().URL.Path),
			}
		}
		if he.Code >= http.StatusInternalServerError {
			logInternal(log, c, err)
		}
		return he.Code, handler.ErrorDetail{Message: fmt.Sprintf("%v", he.Message)}
	}

	logInternal(log, c, err)
	return http.StatusInternalServerError, handler.ErrorDetail{Message: "Internal server error"}
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindConflict, domain.KindBadRequest:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func logInternal(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}
