package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"hotel-ops-backend/internal/model"
	"hotel-ops-backend/internal/response"
	"hotel-ops-backend/internal/store"
)

// PaymentFilter narrows a payment listing. Nil fields are not applied, so a zero
// Amount filters for zero-amount payments.
type PaymentFilter struct {
	Pagination
	Status    *model.PaymentStatus `form:"status" binding:"omitempty,enum"`
	Amount    *decimal.Decimal     `form:"amount"`
	UserID    *uint                `form:"userId"`
	BookingID *uint                `form:"bookingId"`
}

// PaymentInput carries the mutable fields of a payment. Amounts are recorded as given.
type PaymentInput struct {
	UserID    uint                `json:"userId" binding:"required"`
	BookingID uint                `json:"bookingId" binding:"required"`
	Amount    decimal.Decimal     `json:"amount"`
	Date      time.Time           `json:"date"`
	Status    model.PaymentStatus `json:"status" binding:"required,enum"`
}

func (in PaymentInput) validate() error {
	switch {
	case in.UserID == 0:
		return invalid("userId is required")
	case in.BookingID == 0:
		return invalid("bookingId is required")
	case !in.Status.Valid():
		return invalid("unknown payment status %q", in.Status)
	}
	return nil
}

type PaymentService struct {
	store store.Store
	log   logrus.FieldLogger
}

func NewPaymentService(s store.Store, log logrus.FieldLogger) *PaymentService {
	return &PaymentService{store: s, log: log.WithField("service", "payments")}
}

func (s *PaymentService) List(ctx context.Context, filter PaymentFilter) response.Paged[model.PaymentView] {
	log := begin(s.log, "List", nil)

	page := filter.Pagination.Normalized()
	q := store.Query{Offset: page.Offset(), Limit: page.PageSize}
	if filter.Status != nil {
		q.Predicates = append(q.Predicates, store.Eq("status", *filter.Status))
	}
	if filter.Amount != nil {
		q.Predicates = append(q.Predicates, store.Eq("amount", *filter.Amount))
	}
	if filter.UserID != nil {
		q.Predicates = append(q.Predicates, store.Eq("user_id", *filter.UserID))
	}
	if filter.BookingID != nil {
		q.Predicates = append(q.Predicates, store.Eq("booking_id", *filter.BookingID))
	}

	rows, total, err := s.store.Payments().Find(ctx, q)
	if err != nil {
		return failPaged[model.PaymentView](log, err)
	}

	views := make([]model.PaymentView, 0, len(rows))
	for _, p := range rows {
		views = append(views, p.View())
	}

	log.WithField("total", total).Info("finished")
	return response.PagedOK(views, page.PageNumber, page.PageSize, total)
}

func (s *PaymentService) GetByID(ctx context.Context, id uint) response.Response[model.PaymentView] {
	log := begin(s.log, "GetByID", logrus.Fields{"id": id})

	payment, err := s.store.Payments().Get(ctx, id)
	if err != nil {
		return fail[model.PaymentView](log, err)
	}

	log.Info("finished")
	return response.OK(payment.View())
}

func (s *PaymentService) Create(ctx context.Context, in PaymentInput) response.Response[string] {
	log := begin(s.log, "Create", logrus.Fields{"userId": in.UserID, "bookingId": in.BookingID})

	if err := in.validate(); err != nil {
		return fail[string](log, err)
	}

	now := time.Now().UTC()
	date := in.Date.UTC()
	if in.Date.IsZero() {
		date = now
	}
	payment := model.Payment{
		UserID:    in.UserID,
		BookingID: in.BookingID,
		Amount:    in.Amount,
		Date:      date,
		Status:    in.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Payments().Create(ctx, &payment); err != nil {
		return fail[string](log, err)
	}

	log.WithField("id", payment.ID).Info("finished")
	return response.OK(fmt.Sprintf("Successfully created Payment by id:%d", payment.ID))
}

func (s *PaymentService) Update(ctx context.Context, id uint, in PaymentInput) response.Response[string] {
	log := begin(s.log, "Update", logrus.Fields{"id": id})

	if err := in.validate(); err != nil {
		return fail[string](log, err)
	}

	fields := store.Fields{
		"user_id":    in.UserID,
		"booking_id": in.BookingID,
		"amount":     in.Amount,
		"status":     in.Status,
		"updated_at": time.Now().UTC(),
	}
	if !in.Date.IsZero() {
		fields["date"] = in.Date.UTC()
	}
	if err := s.store.Payments().Update(ctx, id, fields); err != nil {
		return fail[string](log, err)
	}

	log.Info("finished")
	return response.OK(fmt.Sprintf("Successfully updated Payment by id:%d", id))
}

func (s *PaymentService) Delete(ctx context.Context, id uint) response.Response[bool] {
	log := begin(s.log, "Delete", logrus.Fields{"id": id})

	if err := s.store.Payments().Delete(ctx, id); err != nil {
		return fail[bool](log, err)
	}

	log.Info("finished")
	return response.OK(true)
}
