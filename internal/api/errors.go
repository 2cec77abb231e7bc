package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code   int    `json:"code"`
	Error  string `json:"error"`
	Detail string `json:"detail"`
	Field  string `json:"field,omitempty"`
}

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var mismatch *domain.TypeMismatchError
	var insufficient *domain.InsufficientDataError
	var unsupported *domain.UnsupportedChartTypeError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation),
		errors.As(err, &mismatch),
		errors.As(err, &insufficient),
		errors.As(err, &unsupported):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// errorBodyFromError builds the response body for err. Internal errors are
// reported without their message.
func errorBodyFromError(err error) errorBody {
	status := httpStatusFromDomainError(err)
	body := errorBody{Code: status, Error: "internal_error", Detail: "internal server error"}

	var validation *domain.ValidationError
	var mismatch *domain.TypeMismatchError
	var insufficient *domain.InsufficientDataError
	var unsupported *domain.UnsupportedChartTypeError

	switch {
	case errors.As(err, &validation):
		body.Error, body.Detail, body.Field = validation.Code, validation.Message, validation.Field
	case errors.As(err, &mismatch):
		body.Error, body.Detail, body.Field = "type_mismatch", mismatch.Error(), mismatch.Field
	case errors.As(err, &insufficient):
		body.Error, body.Detail = insufficient.Code, insufficient.Message
	case errors.As(err, &unsupported):
		body.Error, body.Detail = "unsupported_chart_type", unsupported.Error()
	case status == http.StatusNotFound:
		body.Error, body.Detail = "not_found", err.Error()
	case status == http.StatusRequestEntityTooLarge:
		body.Error, body.Detail = "request_too_large", "request body too large"
	case status == http.StatusGatewayTimeout:
		body.Error, body.Detail = "timeout", "chart computation timed out"
	}
	return body
}
