package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-match-backend/internal/domain"
)

// newTestDB returns a migrated, isolated in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", uuid.NewString())
	cfg := gormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	return db
}

type userOpt func(*domain.User)

func withBirth(y int, m time.Month, d int) userOpt {
	return func(u *domain.User) {
		b := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		u.BirthDate = &b
	}
}

func withCoords(lat, lng float64) userOpt {
	return func(u *domain.User) { u.Latitude, u.Longitude = &lat, &lng }
}

func banned() userOpt { return func(u *domain.User) { u.IsBanned = true } }

func createdAt(ts time.Time) userOpt { return func(u *domain.User) { u.CreatedAt = ts } }

// seedUser inserts an adult user with one visible photo unless options say otherwise.
func seedUser(t *testing.T, db *gorm.DB, id string, opts ...userOpt) *domain.User {
	t.Helper()
	b := time.Date(1995, time.May, 10, 0, 0, 0, 0, time.UTC)
	u := &domain.User{
		ID:           id,
		Email:        id + "@example.test",
		Username:     id,
		PasswordHash: "x",
		BirthDate:    &b,
		CreatedAt:    time.Now().UTC(),
	}
	for _, o := range opts {
		o(u)
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	return u
}

func seedPhoto(t *testing.T, db *gorm.DB, userID string, pos int, visible bool) {
	t.Helper()
	p := &domain.Photo{ID: uuid.NewString(), UserID: userID, URL: "https://img.test/" + userID, Position: pos, Visible: visible}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed photo: %v", err)
	}
}

func seedMatch(t *testing.T, db *gorm.DB, a, b string) *domain.Match {
	t.Helper()
	m, _, err := InsertOrGetMatch(context.Background(), db, a, b)
	if err != nil {
		t.Fatalf("seed match: %v", err)
	}
	return m
}
