package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fmuoria/resume-shortlister/internal/models"
	"github.com/fmuoria/resume-shortlister/internal/screening"
	"github.com/fmuoria/resume-shortlister/internal/store"
)

// APIError is the JSON body of every error response
type APIError struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

var (
	errBadRequest = func(detail string) *APIError { return newAPIError(http.StatusBadRequest, "Bad Request", detail) }
	errNotFound   = func(detail string) *APIError { return newAPIError(http.StatusNotFound, "Not Found", detail) }
	errTooLarge   = func(detail string) *APIError {
		return newAPIError(http.StatusRequestEntityTooLarge, "Request Entity Too Large", detail)
	}
	errInternalServer = func(detail string) *APIError {
		return newAPIError(http.StatusInternalServerError, "Internal Server Error", detail)
	}
	errServiceUnavailable = func(detail string) *APIError {
		return newAPIError(http.StatusServiceUnavailable, "Service Unavailable", detail)
	}
)

func newAPIError(code int, message, detail string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Detail:  detail,
	}
}

func (e *APIError) WithRequestID(requestID string) *APIError {
	e.RequestID = requestID
	return e
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// fromError maps service errors onto HTTP errors
func fromError(err error) *APIError {
	var (
		apiErr      *APIError
		criteriaErr *models.CriteriaError
		recordErr   *models.ValidationError
		tooLarge    *http.MaxBytesError
	)

	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &criteriaErr), errors.As(err, &recordErr):
		return errBadRequest(err.Error())
	case errors.Is(err, screening.ErrNoCriteria):
		return errBadRequest(err.Error())
	case errors.Is(err, screening.ErrNoReport), errors.Is(err, store.ErrNotFound):
		return errNotFound(err.Error())
	case errors.As(err, &tooLarge):
		return errTooLarge(err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errServiceUnavailable(err.Error())
	default:
		return errInternalServer(err.Error())
	}
}
