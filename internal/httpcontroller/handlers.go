// internal/httpcontroller/handlers.go
package httpcontroller

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"

	"github.com/verdantlabs/bloomcal/internal/conf"
	"github.com/verdantlabs/bloomcal/internal/errors"
)

// HandlerError is a custom error type that includes an HTTP status code and
// a user-friendly message.
type HandlerError struct {
	Err     error
	Message string
	Code    int
}

// Error implements the error interface for HandlerError.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// NewHandlerError creates a new HandlerError with the given parameters.
func (s *Server) NewHandlerError(err error, message string, code int) *HandlerError {
	handlerErr := &HandlerError{
		Err:     err,
		Message: message,
		Code:    code,
	}
	s.Debug("Handler error: %s (Code: %d, Underlying error: %v)", message, code, err)
	return handlerErr
}

// errorData carries the fields the error template renders.
type errorData struct {
	Code       int
	Title      string
	Message    string
	StackTrace string
	Settings   *conf.Settings
	Debug      bool
}

// HandleError renders the error page for any error escaping a page handler.
func (s *Server) HandleError(err error, c echo.Context) error {
	var he *HandlerError
	var echoHTTPError *echo.HTTPError
	var enhancedErr *errors.EnhancedError

	switch {
	case errors.As(err, &he):
		// It's already a HandlerError, use it as is
	case errors.As(err, &echoHTTPError):
		he = &HandlerError{
			Err:     echoHTTPError,
			Message: fmt.Sprintf("%v", echoHTTPError.Message),
			Code:    echoHTTPError.Code,
		}
	case errors.As(err, &enhancedErr):
		he = &HandlerError{
			Err:     enhancedErr,
			Message: enhancedErr.GetMessage(),
			Code:    mapCategoryToHTTPStatus(enhancedErr.GetCategory()),
		}
	default:
		he = &HandlerError{
			Err:     err,
			Message: "An unexpected error occurred",
			Code:    http.StatusInternalServerError,
		}
	}

	// Check if headers have already been sent
	if c.Response().Committed {
		return nil
	}

	s.LogError(c, he.Err, he.Message)

	data := errorData{
		Code:     he.Code,
		Title:    fmt.Sprintf("%d Error", he.Code),
		Message:  he.Message,
		Settings: s.Settings,
		Debug:    s.Settings.Debug,
	}
	// Stack traces stay out of production error pages
	if s.Settings.Debug {
		data.StackTrace = string(debug.Stack())
	}

	return c.Render(he.Code, "error", data)
}

// mapCategoryToHTTPStatus maps error categories to appropriate HTTP status codes
func mapCategoryToHTTPStatus(category string) int {
	switch errors.ErrorCategory(category) {
	case errors.CategoryValidation:
		return http.StatusBadRequest
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryNetwork, errors.CategoryImageFetch, errors.CategoryImageProvider:
		return http.StatusBadGateway
	case errors.CategoryTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// WithErrorHandling wraps an Echo handler function with error handling.
func (s *Server) WithErrorHandling(fn func(echo.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := fn(c)
		if err != nil {
			return s.HandleError(err, c)
		}
		return nil
	}
}
