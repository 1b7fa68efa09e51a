package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-match-backend/internal/domain"
)

func TestMatchesStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	for _, id := range []string{"me", "x", "y"} {
		seedUser(t, db, id)
	}

	if n, latest, err := MatchesStats(ctx, db, "me"); err != nil || n != 0 || latest != nil {
		t.Fatalf("empty stats: n=%d latest=%v err=%v", n, latest, err)
	}

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m1 := &domain.Match{ID: "m1", UserAID: "me", UserBID: "x", CreatedAt: t0}
	m2 := &domain.Match{ID: "m2", UserAID: "me", UserBID: "y", CreatedAt: t0.Add(time.Hour)}
	if err := db.Create(m1).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := db.Create(m2).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	n, latest, err := MatchesStats(ctx, db, "me")
	if err != nil || n != 2 || latest == nil || !latest.Equal(t0.Add(time.Hour)) {
		t.Fatalf("match-only stats: n=%d latest=%v err=%v", n, latest, err)
	}

	msgAt := t0.Add(3 * time.Hour)
	if err := db.Create(&domain.Message{ID: "x1", MatchID: "m1", SenderID: "x", Content: "hi", CreatedAt: msgAt}).Error; err != nil {
		t.Fatalf("seed message: %v", err)
	}
	_, latest, err = MatchesStats(ctx, db, "me")
	if err != nil || latest == nil || !latest.Equal(msgAt) {
		t.Fatalf("message should advance latest activity: latest=%v err=%v", latest, err)
	}
}
