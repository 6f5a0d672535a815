package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spigell/cv-responder/internal/cv"
	"go.uber.org/zap"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

func newValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

func newNoDocumentError() *APIError {
	return &APIError{
		Status:  http.StatusConflict,
		Code:    "NO_DOCUMENT",
		Message: "no CV has been uploaded yet",
	}
}

func newTooLargeError(size, limit int64) *APIError {
	return &APIError{
		Status:  http.StatusRequestEntityTooLarge,
		Code:    "TOO_LARGE",
		Message: fmt.Sprintf("document is %d bytes, limit is %d", size, limit),
	}
}

// documentError maps normalization failures onto HTTP statuses.
func documentError(err error) *APIError {
	switch {
	case errors.Is(err, cv.ErrUnsupportedFormat):
		return &APIError{
			Status:  http.StatusUnsupportedMediaType,
			Code:    "UNSUPPORTED_FORMAT",
			Message: "document format is not supported",
			Details: err.Error(),
		}
	case errors.Is(err, cv.ErrExtractionFailure):
		return &APIError{
			Status:  http.StatusUnprocessableEntity,
			Code:    "EXTRACTION_FAILED",
			Message: "no text could be extracted from the document",
			Details: err.Error(),
		}
	default:
		return &APIError{
			Status:  http.StatusInternalServerError,
			Code:    "INTERNAL_ERROR",
			Message: "failed to process document",
			Details: err.Error(),
		}
	}
}

// errorHandler renders APIError and echo errors as JSON.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &httpErr):
		apiErr = &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	default:
		apiErr = &APIError{
			Status:  http.StatusInternalServerError,
			Code:    "UNKNOWN_ERROR",
			Message: "an unexpected error occurred",
		}
	}

	level := zap.InfoLevel
	if apiErr.Status >= http.StatusInternalServerError {
		level = zap.ErrorLevel
	}
	s.logger.Log(level, "request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Int("status", apiErr.Status),
		zap.String("code", apiErr.Code),
		zap.Error(err),
	)

	if err := c.JSON(apiErr.Status, apiErr); err != nil {
		s.logger.Warn("failed to write error response", zap.Error(err))
	}
}
