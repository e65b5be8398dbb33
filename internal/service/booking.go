package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"hotel-ops-backend/internal/model"
	"hotel-ops-backend/internal/response"
	"hotel-ops-backend/internal/store"
)

// BookingFilter narrows a booking listing. Nil fields are not applied.
type BookingFilter struct {
	Pagination
	Status *model.BookingStatus `form:"status" binding:"omitempty,enum"`
	UserID *uint                `form:"userId"`
	RoomID *uint                `form:"roomId"`
}

// BookingInput carries the mutable fields of a booking.
// Date ranges are stored as given; overlaps and ordering are not checked.
type BookingInput struct {
	UserID       uint                `json:"userId" binding:"required"`
	RoomID       uint                `json:"roomId" binding:"required"`
	CheckInDate  model.Date          `json:"checkInDate" binding:"required"`
	CheckOutDate model.Date          `json:"checkOutDate" binding:"required"`
	Status       model.BookingStatus `json:"status" binding:"required,enum"`
}

func (in BookingInput) validate() error {
	switch {
	case in.UserID == 0:
		return invalid("userId is required")
	case in.RoomID == 0:
		return invalid("roomId is required")
	case !in.Status.Valid():
		return invalid("unknown booking status %q", in.Status)
	}
	return nil
}

type BookingService struct {
	store store.Store
	log   logrus.FieldLogger
}

func NewBookingService(s store.Store, log logrus.FieldLogger) *BookingService {
	return &BookingService{store: s, log: log.WithField("service", "bookings")}
}

func (s *BookingService) List(ctx context.Context, filter BookingFilter) response.Paged[model.BookingView] {
	log := begin(s.log, "List", nil)

	page := filter.Pagination.Normalized()
	q := store.Query{Offset: page.Offset(), Limit: page.PageSize}
	if filter.Status != nil {
		q.Predicates = append(q.Predicates, store.Eq("status", *filter.Status))
	}
	if filter.UserID != nil {
		q.Predicates = append(q.Predicates, store.Eq("user_id", *filter.UserID))
	}
	if filter.RoomID != nil {
		q.Predicates = append(q.Predicates, store.Eq("room_id", *filter.RoomID))
	}

	rows, total, err := s.store.Bookings().Find(ctx, q)
	if err != nil {
		return failPaged[model.BookingView](log, err)
	}

	views := make([]model.BookingView, 0, len(rows))
	for _, b := range rows {
		views = append(views, b.View())
	}

	log.WithField("total", total).Info("finished")
	return response.PagedOK(views, page.PageNumber, page.PageSize, total)
}

func (s *BookingService) GetByID(ctx context.Context, id uint) response.Response[model.BookingView] {
	log := begin(s.log, "GetByID", logrus.Fields{"id": id})

	booking, err := s.store.Bookings().Get(ctx, id)
	if err != nil {
		return fail[model.BookingView](log, err)
	}

	log.Info("finished")
	return response.OK(booking.View())
}

func (s *BookingService) Create(ctx context.Context, in BookingInput) response.Response[string] {
	log := begin(s.log, "Create", logrus.Fields{"userId": in.UserID, "roomId": in.RoomID})

	if err := in.validate(); err != nil {
		return fail[string](log, err)
	}

	now := time.Now().UTC()
	booking := model.Booking{
		UserID:       in.UserID,
		RoomID:       in.RoomID,
		CheckInDate:  in.CheckInDate.Storage(),
		CheckOutDate: in.CheckOutDate.Storage(),
		Status:       in.Status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Bookings().Create(ctx, &booking); err != nil {
		return fail[string](log, err)
	}

	log.WithField("id", booking.ID).Info("finished")
	return response.OK(fmt.Sprintf("Successfully created Booking by id:%d", booking.ID))
}

func (s *BookingService) Update(ctx context.Context, id uint, in BookingInput) response.Response[string] {
	log := begin(s.log, "Update", logrus.Fields{"id": id})

	if err := in.validate(); err != nil {
		return fail[string](log, err)
	}

	err := s.store.Bookings().Update(ctx, id, store.Fields{
		"user_id":        in.UserID,
		"room_id":        in.RoomID,
		"check_in_date":  in.CheckInDate.Storage(),
		"check_out_date": in.CheckOutDate.Storage(),
		"status":         in.Status,
		"updated_at":     time.Now().UTC(),
	})
	if err != nil {
		return fail[string](log, err)
	}

	log.Info("finished")
	return response.OK(fmt.Sprintf("Successfully updated Booking by id:%d", id))
}

func (s *BookingService) Delete(ctx context.Context, id uint) response.Response[bool] {
	log := begin(s.log, "Delete", logrus.Fields{"id": id})

	if err := s.store.Bookings().Delete(ctx, id); err != nil {
		return fail[bool](log, err)
	}

	log.Info("finished")
	return response.OK(true)
}
