package notify

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-match-backend/internal/domain"
	"github.com/tbourn/go-match-backend/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:notify_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, repo.AutoMigrate(db))
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id, display string) {
	t.Helper()
	require.NoError(t, db.Create(&domain.User{
		ID: id, Email: id + "@example.test", Username: id, DisplayName: display, PasswordHash: "x",
	}).Error)
}

type staticProfiles map[string]Profile

func (s staticProfiles) Profiles(_ context.Context, ids ...string) (map[string]Profile, error) {
	out := map[string]Profile{}
	for _, id := range ids {
		if p, ok := s[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// captureSender records every intent it is handed and returns err.
type captureSender struct {
	name string
	err  error

	mu  sync.Mutex
	got []Intent
}

func (c *captureSender) Name() string { return c.name }

func (c *captureSender) Send(_ context.Context, in Intent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, in)
	return c.err
}

func (c *captureSender) intents() []Intent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Intent(nil), c.got...)
}

var testProfiles = staticProfiles{
	"alice": {ID: "alice", Name: "Alice", Email: "alice@example.test"},
	"bob":   {ID: "bob", Name: "Bob", Email: "bob@example.test"},
}
