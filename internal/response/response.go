package response

import (
	"errors"
	"net/http"

	"hotel-ops-backend/internal/store"
)

// ErrValidation marks errors caused by invalid caller input.
var ErrValidation = errors.New("validation failed")

// Response is the envelope returned by every service operation.
type Response[T any] struct {
	Succeeded  bool   `json:"succeeded"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       *T     `json:"data"`
}

// OK wraps a successful payload.
func OK[T any](data T) Response[T] {
	return Response[T]{Succeeded: true, StatusCode: http.StatusOK, Data: &data}
}

// Fail builds a failed envelope with no payload.
func Fail[T any](code int, message string) Response[T] {
	return Response[T]{StatusCode: code, Message: message}
}

// FromError classifies err: not-found and validation faults are client errors,
// everything else is a server error carrying the error text.
func FromError[T any](err error) Response[T] {
	return Fail[T](StatusFor(err), err.Error())
}

// StatusFor maps an error to the envelope status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Paged is the envelope for listings.
type Paged[T any] struct {
	Response[[]T]
	PageNumber   int   `json:"pageNumber"`
	PageSize     int   `json:"pageSize"`
	TotalRecords int64 `json:"totalRecords"`
}

// PagedOK wraps a page of items. A nil slice is reported as an empty one.
func PagedOK[T any](items []T, pageNumber, pageSize int, total int64) Paged[T] {
	if items == nil {
		items = []T{}
	}
	return Paged[T]{
		Response:     OK(items),
		PageNumber:   pageNumber,
		PageSize:     pageSize,
		TotalRecords: total,
	}
}

// PagedFromError builds a failed listing envelope.
func PagedFromError[T any](err error) Paged[T] {
	return Paged[T]{Response: FromError[[]T](err)}
}
