package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"hotel-ops-backend/internal/model"
	"hotel-ops-backend/internal/response"
	"hotel-ops-backend/internal/service"
)

// RoomService is the room operations the handlers depend on.
type RoomService interface {
	List(ctx context.Context, filter service.RoomFilter) response.Paged[model.RoomView]
	GetByID(ctx context.Context, id uint) response.Response[model.RoomView]
	Create(ctx context.Context, in service.RoomInput) response.Response[string]
	Update(ctx context.Context, id uint, in service.RoomInput) response.Response[string]
	Delete(ctx context.Context, id uint) response.Response[bool]
}

// BookingService is the booking operations the handlers depend on.
type BookingService interface {
	List(ctx context.Context, filter service.BookingFilter) response.Paged[model.BookingView]
	GetByID(ctx context.Context, id uint) response.Response[model.BookingView]
	Create(ctx context.Context, in service.BookingInput) response.Response[string]
	Update(ctx context.Context, id uint, in service.BookingInput) response.Response[string]
	Delete(ctx context.Context, id uint) response.Response[bool]
}

// PaymentService is the payment operations the handlers depend on.
type PaymentService interface {
	List(ctx context.Context, filter service.PaymentFilter) response.Paged[model.PaymentView]
	GetByID(ctx context.Context, id uint) response.Response[model.PaymentView]
	Create(ctx context.Context, in service.PaymentInput) response.Response[string]
	Update(ctx context.Context, id uint, in service.PaymentInput) response.Response[string]
	Delete(ctx context.Context, id uint) response.Response[bool]
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	rooms        RoomService
	bookings     BookingService
	payments     PaymentService
	maxUploadLen int64
	log          logrus.FieldLogger
}

// NewHandler creates a new API handler. maxUploadLen bounds multipart request bodies.
func NewHandler(rooms RoomService, bookings BookingService, payments PaymentService, maxUploadLen int64, log logrus.FieldLogger) *Handler {
	return &Handler{
		rooms:        rooms,
		bookings:     bookings,
		payments:     payments,
		maxUploadLen: maxUploadLen,
		log:          log,
	}
}

// reply writes an envelope using its own status code.
func reply[T any](c *gin.Context, res response.Response[T]) {
	c.JSON(res.StatusCode, res)
}

func replyPaged[T any](c *gin.Context, res response.Paged[T]) {
	c.JSON(res.StatusCode, res)
}

// badRequest answers a request that failed binding or validation.
func badRequest(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		err = fmt.Errorf("field %s failed on the %q rule", fe.Field(), fe.Tag())
	}
	c.JSON(http.StatusBadRequest, response.Fail[any](http.StatusBadRequest, err.Error()))
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, fmt.Errorf("invalid id %q", c.Param("id")))
		return 0, false
	}
	return uint(id), true
}
