package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"productcatalog/domain"
	"productcatalog/util"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var (
		httpErr       *echo.HTTPError
		validationErr validator.ValidationErrors
	)
	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsInvariantViolation(err), util.IsInvalidID(err), errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &httpErr):
		return httpErr.Code
	default:
		return http.StatusInternalServerError
	}
}

// errorHandler writes ErrorResponse bodies. Unexpected errors are logged and
// reported without detail.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := statusFor(err)
	body := ErrorResponse{Error: http.StatusText(code)}
	switch {
	case code == http.StatusInternalServerError:
		slog.Error("request failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
	default:
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			if msg, ok := httpErr.Message.(string); ok {
				body.Detail = msg
			} else if httpErr.Internal != nil {
				body.Detail = httpErr.Internal.Error()
			}
		} else {
			body.Detail = err.Error()
		}
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, body)
	}
	if werr != nil {
		slog.Error("failed to write error response", "error", werr)
	}
}
