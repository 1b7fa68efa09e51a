package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-match-backend/internal/domain"
	"github.com/tbourn/go-match-backend/internal/notify"
	"github.com/tbourn/go-match-backend/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		// Shared-cache SQLite reports table locks instead of waiting.
		sqlDB.SetMaxOpenConns(1)
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	return db
}

type profile struct {
	id        string
	birth     time.Time
	lat, lng  *float64
	species   []string
	noPhoto   bool
	banned    bool
	createdAt time.Time
}

func seed(t *testing.T, db *gorm.DB, p profile) {
	t.Helper()
	if p.birth.IsZero() {
		p.birth = time.Date(1995, 5, 10, 0, 0, 0, 0, time.UTC)
	}
	if p.createdAt.IsZero() {
		p.createdAt = time.Now().UTC()
	}
	b := p.birth
	u := &domain.User{
		ID: p.id, Email: p.id + "@example.test", Username: p.id, PasswordHash: "x",
		BirthDate: &b, Latitude: p.lat, Longitude: p.lng, IsBanned: p.banned, CreatedAt: p.createdAt,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", p.id, err)
	}
	if !p.noPhoto {
		ph := &domain.Photo{ID: uuid.NewString(), UserID: p.id, URL: "https://img.test/" + p.id, Visible: true}
		if err := db.Create(ph).Error; err != nil {
			t.Fatalf("seed photo: %v", err)
		}
	}
	for _, sp := range p.species {
		if _, err := repo.AddTheriotype(context.Background(), db, p.id, sp); err != nil {
			t.Fatalf("seed theriotype: %v", err)
		}
	}
}

func seedIDs(t *testing.T, db *gorm.DB, ids ...string) {
	t.Helper()
	for _, id := range ids {
		seed(t, db, profile{id: id})
	}
}

func coord(v float64) *float64 { return &v }
func intp(v int) *int           { return &v }

// recorder is a Notifier that keeps published events.
type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Publish(ev notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) kinds() []notify.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Kind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}
