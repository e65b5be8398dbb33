package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-ops-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	Ping(ctx context.Context) error
	Rooms() Collection[model.Room]
	Bookings() Collection[model.Booking]
	Payments() Collection[model.Payment]
	// PhotoPaths returns every photo reference currently held by a room row.
	PhotoPaths(ctx context.Context) ([]string, error)
	// Transaction runs fn against a store bound to a single database transaction.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// Collection is the set of operations available on one table.
type Collection[T any] interface {
	Find(ctx context.Context, q Query) ([]T, int64, error)
	Get(ctx context.Context, id uint) (T, error)
	// GetForUpdate loads the row and locks it until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uint) (T, error)
	Create(ctx context.Context, row *T) error
	// Update sets only the given columns on the row with the given id.
	Update(ctx context.Context, id uint, fields Fields) error
	// Save writes every column of a row loaded with Get or GetForUpdate.
	Save(ctx context.Context, row *T) error
	Delete(ctx context.Context, id uint) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *gormStore) Rooms() Collection[model.Room] {
	return &gormCollection[model.Room]{db: s.db, name: "room"}
}

func (s *gormStore) Bookings() Collection[model.Booking] {
	return &gormCollection[model.Booking]{db: s.db, name: "booking"}
}

func (s *gormStore) Payments() Collection[model.Payment] {
	return &gormCollection[model.Payment]{db: s.db, name: "payment"}
}

func (s *gormStore) PhotoPaths(ctx context.Context) ([]string, error) {
	var paths []string
	if err := s.db.WithContext(ctx).
		Model(&model.Room{}).
		Where("photo_path IS NOT NULL").
		Pluck("photo_path", &paths).Error; err != nil {
		return nil, fmt.Errorf("failed to load room photo paths: %w", err)
	}
	return paths, nil
}

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// gormCollection implements Collection for a single model type.
type gormCollection[T any] struct {
	db   *gorm.DB
	name string
}

// likeEscape escapes LIKE wildcards using '!' as the escape character,
// which every supported dialect accepts without further quoting.
var likeEscape = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func (c *gormCollection[T]) filtered(ctx context.Context, predicates []Predicate) *gorm.DB {
	tx := c.db.WithContext(ctx).Model(new(T))
	for _, p := range predicates {
		switch p.Op {
		case OpEq:
			tx = tx.Where(clause.Eq{Column: clause.Column{Name: p.Column}, Value: p.Value})
		case OpContainsFold:
			pattern := "%" + likeEscape.Replace(strings.ToLower(fmt.Sprint(p.Value))) + "%"
			tx = tx.Where("LOWER(?) LIKE ? ESCAPE '!'", clause.Column{Name: p.Column}, pattern)
		}
	}
	return tx
}

func (c *gormCollection[T]) Find(ctx context.Context, q Query) ([]T, int64, error) {
	base := c.filtered(ctx, q.Predicates).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count %ss: %w", c.name, err)
	}

	rows := make([]T, 0)
	page := base.Order("id")
	if q.Offset > 0 {
		page = page.Offset(q.Offset)
	}
	if q.Limit > 0 {
		page = page.Limit(q.Limit)
	}
	if err := page.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list %ss: %w", c.name, err)
	}
	return rows, total, nil
}

func (c *gormCollection[T]) Get(ctx context.Context, id uint) (T, error) {
	return c.first(c.db.WithContext(ctx), id)
}

func (c *gormCollection[T]) GetForUpdate(ctx context.Context, id uint) (T, error) {
	return c.first(c.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (c *gormCollection[T]) first(tx *gorm.DB, id uint) (T, error) {
	var row T
	if err := tx.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return row, fmt.Errorf("%s %d: %w", c.name, id, ErrNotFound)
		}
		return row, fmt.Errorf("failed to load %s %d: %w", c.name, id, err)
	}
	return row, nil
}

func (c *gormCollection[T]) Create(ctx context.Context, row *T) error {
	if err := c.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", c.name, err)
	}
	return nil
}

func (c *gormCollection[T]) Update(ctx context.Context, id uint, fields Fields) error {
	result := c.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(map[string]any(fields))
	if result.Error != nil {
		return fmt.Errorf("failed to update %s %d: %w", c.name, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s %d: %w", c.name, id, ErrNotFound)
	}
	return nil
}

func (c *gormCollection[T]) Save(ctx context.Context, row *T) error {
	if err := c.db.WithContext(ctx).Save(row).Error; err != nil {
		return fmt.Errorf("failed to save %s: %w", c.name, err)
	}
	return nil
}

func (c *gormCollection[T]) Delete(ctx context.Context, id uint) error {
	result := c.db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete %s %d: %w", c.name, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s %d: %w", c.name, id, ErrNotFound)
	}
	return nil
}
