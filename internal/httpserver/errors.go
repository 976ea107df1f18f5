package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/avorontsov/identity-service/internal/logging"
	"github.com/avorontsov/identity-service/internal/service"
)

type apiError struct {
	Ref    string `json:"ref"`
	Type   string `json:"type"`
	Msg    string `json:"msg"`
	Path   string `json:"path"`
	Method string `json:"method"`
}

type errorResponse struct {
	Errors []apiError `json:"errors"`
}

// NewHTTPErrorHandler maps the service error taxonomy onto status codes and
// a uniform body. Internal detail is logged under a unique ref and never
// leaks to the caller.
func NewHTTPErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, kind, msg := classify(err)

		ref := uuid.NewString()
		l := logging.FromContext(c.Request().Context())
		l.Error("request_error",
			"ref", ref,
			"type", kind,
			"status", status,
			"path", c.Path(),
			"method", c.Request().Method,
			"error", err,
		)

		body := errorResponse{Errors: []apiError{{
			Ref:    ref,
			Type:   kind,
			Msg:    msg,
			Path:   c.Request().URL.Path,
			Method: c.Request().Method,
		}}}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func classify(err error) (status int, kind, msg string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, _ := he.Message.(string)
		if msg == "" {
			msg = http.StatusText(he.Code)
		}
		return he.Code, kindForStatus(he.Code), msg
	}

	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "ValidationError", err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest, "AuthenticationError", service.ErrInvalidCredentials.Error()
	case errors.Is(err, service.ErrConflict):
		return http.StatusBadRequest, "ConflictError", service.ErrConflict.Error()
	case errors.Is(err, service.ErrNotFound):
		return http.StatusBadRequest, "NotFoundError", err.Error()
	case errors.Is(err, service.ErrConfiguration):
		return http.StatusInternalServerError, "ConfigurationError", "internal server error"
	}
	return http.StatusInternalServerError, "InternalServerError", "internal server error"
}

func kindForStatus(code int) string {
	switch code {
	case http.StatusUnauthorized:
		return "AuthenticationError"
	case http.StatusForbidden:
		return "AuthorizationError"
	case http.StatusBadRequest:
		return "ValidationError"
	case http.StatusNotFound:
		return "NotFoundError"
	}
	return "InternalServerError"
}
