package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel-ops-backend/internal/db"
	"hotel-ops-backend/internal/filestore"
	"hotel-ops-backend/internal/model"
	"hotel-ops-backend/internal/store"
)

func openTestDB(t *testing.T, dsn string) *gorm.DB {
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	// One connection keeps the in-memory database alive and private to this test.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

func newTestStore(t *testing.T) store.Store {
	return store.NewGormStore(openTestDB(t, "file::memory:"))
}

// newForeignKeyStore enforces foreign keys and seeds user 1.
func newForeignKeyStore(t *testing.T) store.Store {
	gormDB := openTestDB(t, "file::memory:?_foreign_keys=on")
	require.NoError(t, gormDB.Create(&model.User{
		ID:       1,
		Username: "guest",
		Email:    "guest@example.com",
		Password: "x",
		Status:   model.UserStatusActive,
	}).Error)
	return store.NewGormStore(gormDB)
}

func newTestFiles(t *testing.T) *filestore.Local {
	files, err := filestore.NewLocal(t.TempDir(), "rooms")
	require.NoError(t, err)
	return files
}

func photo(name, body string) *filestore.Upload {
	return &filestore.Upload{Filename: name, Body: strings.NewReader(body)}
}

func ptr[T any](v T) *T { return &v }

// flakyFiles wraps a file store and fails the selected operations.
type flakyFiles struct {
	filestore.Store
	failWrite  bool
	failDelete bool
}

func (f *flakyFiles) Write(ctx context.Context, u filestore.Upload) (string, error) {
	if f.failWrite {
		return "", errors.New("disk full")
	}
	return f.Store.Write(ctx, u)
}

func (f *flakyFiles) Delete(ctx context.Context, ref string) error {
	if f.failDelete {
		return errors.New("permission denied")
	}
	return f.Store.Delete(ctx, ref)
}

// brokenRooms wraps a store whose room inserts always fail.
type brokenRooms struct {
	store.Store
}

func (s brokenRooms) Rooms() store.Collection[model.Room] {
	return failingInserts{s.Store.Rooms()}
}

type failingInserts struct {
	store.Collection[model.Room]
}

func (failingInserts) Create(context.Context, *model.Room) error {
	return errors.New("database is locked")
}

var nullLogger, _ = logtest.NewNullLogger()
