package service

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"hotel-ops-backend/internal/response"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPageNumber keeps Offset from overflowing at any page size.
	MaxPageNumber = math.MaxInt / MaxPageSize
)

// Pagination selects a 1-based page of a listing.
type Pagination struct {
	PageNumber int `form:"pageNumber"`
	PageSize   int `form:"pageSize"`
}

// Normalized fills in defaults for values below 1 and caps the page number and size.
func (p Pagination) Normalized() Pagination {
	if p.PageNumber < 1 {
		p.PageNumber = 1
	}
	if p.PageNumber > MaxPageNumber {
		p.PageNumber = MaxPageNumber
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset is the zero-based row offset of the first item on the page.
func (p Pagination) Offset() int {
	return (p.PageNumber - 1) * p.PageSize
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", response.ErrValidation, fmt.Sprintf(format, args...))
}

// begin logs the start of an operation and returns the logger to finish it with.
func begin(log logrus.FieldLogger, method string, fields logrus.Fields) logrus.FieldLogger {
	l := log.WithField("method", method)
	if len(fields) > 0 {
		l = l.WithFields(fields)
	}
	l.Info("starting")
	return l
}

// fail logs err at a level matching its class and converts it into an envelope.
func fail[T any](log logrus.FieldLogger, err error) response.Response[T] {
	res := response.FromError[T](err)
	if res.StatusCode >= 500 {
		log.WithError(err).Error("failed")
	} else {
		log.WithError(err).Warn("rejected")
	}
	return res
}

func failPaged[T any](log logrus.FieldLogger, err error) response.Paged[T] {
	log.WithError(err).Error("failed")
	return response.PagedFromError[T](err)
}

// detached keeps cleanup work running after the request context is cancelled.
func detached(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
