package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"hotel-ops-backend/internal/filestore"
	"hotel-ops-backend/internal/model"
	"hotel-ops-backend/internal/response"
	"hotel-ops-backend/internal/store"
)

// RoomFilter narrows a room listing. Nil fields are not applied.
type RoomFilter struct {
	Pagination
	RoomNumber    *string           `form:"roomNumber"`
	Type          *model.RoomType   `form:"type" binding:"omitempty,enum"`
	Status        *model.RoomStatus `form:"status" binding:"omitempty,enum"`
	PricePerNight *decimal.Decimal  `form:"pricePerNight"`
}

// RoomInput carries the fields of a room. Photo is optional. On update only
// Description, Status and Photo are applied; RoomNumber, Type and PricePerNight are
// accepted and ignored.
type RoomInput struct {
	RoomNumber    string
	Description   *string
	Type          model.RoomType
	Status        model.RoomStatus
	PricePerNight decimal.Decimal
	Photo         *filestore.Upload
}

// RoomService manages rooms and keeps each room's photo file in step with its row.
//
// Photo changes are ordered so a row never references a missing file: the new file is
// written before the row is committed, and the replaced or deleted file is removed only
// after the commit. A failure between those steps can leave an unreferenced file behind,
// which the sweeper removes.
type RoomService struct {
	store store.Store
	files filestore.Store
	log   logrus.FieldLogger
}

func NewRoomService(s store.Store, files filestore.Store, log logrus.FieldLogger) *RoomService {
	return &RoomService{store: s, files: files, log: log.WithField("service", "rooms")}
}

func (s *RoomService) List(ctx context.Context, filter RoomFilter) response.Paged[model.RoomView] {
	log := begin(s.log, "List", nil)

	page := filter.Pagination.Normalized()
	q := store.Query{Offset: page.Offset(), Limit: page.PageSize}
	if filter.RoomNumber != nil && *filter.RoomNumber != "" {
		q.Predicates = append(q.Predicates, store.ContainsFold("room_number", *filter.RoomNumber))
	}
	if filter.Type != nil {
		q.Predicates = append(q.Predicates, store.Eq("type", *filter.Type))
	}
	if filter.Status != nil {
		q.Predicates = append(q.Predicates, store.Eq("status", *filter.Status))
	}
	if filter.PricePerNight != nil {
		q.Predicates = append(q.Predicates, store.Eq("price_per_night", *filter.PricePerNight))
	}

	rows, total, err := s.store.Rooms().Find(ctx, q)
	if err != nil {
		return failPaged[model.RoomView](log, err)
	}

	views := make([]model.RoomView, 0, len(rows))
	for _, r := range rows {
		views = append(views, r.View())
	}

	log.WithField("total", total).Info("finished")
	return response.PagedOK(views, page.PageNumber, page.PageSize, total)
}

func (s *RoomService) GetByID(ctx context.Context, id uint) response.Response[model.RoomView] {
	log := begin(s.log, "GetByID", logrus.Fields{"id": id})

	room, err := s.store.Rooms().Get(ctx, id)
	if err != nil {
		return fail[model.RoomView](log, err)
	}

	log.Info("finished")
	return response.OK(room.View())
}

func (s *RoomService) Create(ctx context.Context, in RoomInput) response.Response[string] {
	log := begin(s.log, "Create", logrus.Fields{"roomNumber": in.RoomNumber})

	if err := validateRoom(in.RoomNumber, in.Type, in.Status, in.PricePerNight); err != nil {
		return fail[string](log, err)
	}

	now := time.Now().UTC()
	room := model.Room{
		RoomNumber:    strings.TrimSpace(in.RoomNumber),
		Description:   in.Description,
		Type:          in.Type,
		Status:        in.Status,
		PricePerNight: in.PricePerNight,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if in.Photo != nil {
		ref, err := s.files.Write(ctx, *in.Photo)
		if err != nil {
			return fail[string](log, fmt.Errorf("failed to store room photo: %w", err))
		}
		room.PhotoPath = &ref
	}

	if err := s.store.Rooms().Create(ctx, &room); err != nil {
		s.discard(ctx, log, room.PhotoPath)
		return fail[string](log, err)
	}

	log.WithField("id", room.ID).Info("finished")
	return response.OK(fmt.Sprintf("Successfully created Room by id:%d", room.ID))
}

func (s *RoomService) Update(ctx context.Context, id uint, in RoomInput) response.Response[string] {
	log := begin(s.log, "Update", logrus.Fields{"id": id})

	if !in.Status.Valid() {
		return fail[string](log, invalid("unknown room status %q", in.Status))
	}

	var newRef *string
	if in.Photo != nil {
		ref, err := s.files.Write(ctx, *in.Photo)
		if err != nil {
			return fail[string](log, fmt.Errorf("failed to store room photo: %w", err))
		}
		newRef = &ref
	}

	var oldRef *string
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		room, err := tx.Rooms().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		// Number, type and price are not mutable.
		room.Description = in.Description
		room.Status = in.Status
		room.UpdatedAt = time.Now().UTC()
		if newRef != nil {
			oldRef = room.PhotoPath
			room.PhotoPath = newRef
		}
		return tx.Rooms().Save(ctx, &room)
	})
	if err != nil {
		s.discard(ctx, log, newRef)
		return fail[string](log, err)
	}

	if newRef != nil {
		s.discard(ctx, log, oldRef)
	}

	log.Info("finished")
	return response.OK(fmt.Sprintf("Successfully updated Room by id:%d", id))
}

func (s *RoomService) Delete(ctx context.Context, id uint) response.Response[bool] {
	log := begin(s.log, "Delete", logrus.Fields{"id": id})

	var ref *string
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		room, err := tx.Rooms().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		ref = room.PhotoPath
		return tx.Rooms().Delete(ctx, id)
	})
	if err != nil {
		return fail[bool](log, err)
	}

	s.discard(ctx, log, ref)

	log.Info("finished")
	return response.OK(true)
}

// discard removes a file that no committed row references. Failures are logged only;
// the sweeper collects whatever is left.
func (s *RoomService) discard(ctx context.Context, log logrus.FieldLogger, ref *string) {
	if ref == nil {
		return
	}
	if err := s.files.Delete(detached(ctx), *ref); err != nil {
		log.WithError(err).WithField("photo", *ref).Warn("failed to delete unreferenced photo")
	}
}

func validateRoom(number string, typ model.RoomType, status model.RoomStatus, price decimal.Decimal) error {
	switch {
	case strings.TrimSpace(number) == "":
		return invalid("room number is required")
	case !typ.Valid():
		return invalid("unknown room type %q", typ)
	case !status.Valid():
		return invalid("unknown room status %q", status)
	case price.IsNegative():
		return invalid("price per night must not be negative")
	}
	return nil
}
