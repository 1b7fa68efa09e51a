package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/domain"
	"github.com/tbourn/go-match-backend/internal/notify"
	"github.com/tbourn/go-match-backend/internal/repo"
)

func newSwipes(t *testing.T, limit int) (*SwipeService, *recorder) {
	t.Helper()
	db := newTestDB(t)
	rec := &recorder{}
	return NewSwipeService(db, repo.SwipeStore{}, rec, limit, time.UTC, time.Second), rec
}

func TestRecord_ValidationOrder(t *testing.T) {
	svc, rec := newSwipes(t, 1)
	ctx := context.Background()
	seedIDs(t, svc.DB, "a", "b", "c")

	// Type is checked before anything else, even for a self-swipe.
	if _, err := svc.Record(ctx, "a", "a", "meh"); !errors.Is(err, ErrInvalidSwipeType) {
		t.Fatalf("expected ErrInvalidSwipeType, got %v", err)
	}
	if _, err := svc.Record(ctx, "a", "a", "like"); !errors.Is(err, ErrSelfSwipe) {
		t.Fatalf("expected ErrSelfSwipe, got %v", err)
	}
	if _, err := svc.Record(ctx, "a", "ghost", "like"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if _, err := svc.Record(ctx, "a", "b", "pass"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	// Quota exhausted: reported before the unknown target.
	if _, err := svc.Record(ctx, "a", "ghost", "like"); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if _, err := svc.Record(ctx, "a", "c", "like"); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}

	var n int64
	svc.DB.Model(&domain.Swipe{}).Count(&n)
	if n != 1 {
		t.Fatalf("rejected swipes must not write, rows=%d", n)
	}
	if len(rec.kinds()) != 0 {
		t.Fatalf("no events expected, got %v", rec.kinds())
	}
}

func TestRecord_BlockedPairLooksLikeMissingUser(t *testing.T) {
	svc, _ := newSwipes(t, 0)
	ctx := context.Background()
	seedIDs(t, svc.DB, "a", "b")
	if _, err := repo.CreateBlock(ctx, svc.DB, "b", "a"); err != nil {
		t.Fatalf("block: %v", err)
	}
	if _, err := svc.Record(ctx, "a", "b", "like"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRecord_ReciprocalLikeCreatesOneMatch(t *testing.T) {
	svc, rec := newSwipes(t, 0)
	ctx := context.Background()
	seedIDs(t, svc.DB, "amy", "zed")
	before := testutil.ToFloat64(matchesCreatedTotal)

	res, err := svc.Record(ctx, "zed", "amy", "like")
	if err != nil || res.Matched {
		t.Fatalf("first like: res=%+v err=%v", res, err)
	}
	res, err = svc.Record(ctx, "amy", "zed", "super_howl")
	if err != nil || !res.Matched || res.MatchID == "" {
		t.Fatalf("reciprocal like: res=%+v err=%v", res, err)
	}

	sw, err := repo.GetSwipe(ctx, svc.DB, "amy", "zed")
	if err != nil || sw.Type != domain.SwipeSuperLike {
		t.Fatalf("legacy type must be stored as super_like: %+v %v", sw, err)
	}

	// Swiping again reports the existing match without creating another.
	again, err := svc.Record(ctx, "zed", "amy", "like")
	if err != nil || !again.Matched || again.MatchID != res.MatchID {
		t.Fatalf("repeat like: res=%+v err=%v", again, err)
	}

	var n int64
	svc.DB.Model(&domain.Match{}).Count(&n)
	if n != 1 {
		t.Fatalf("expected 1 match row, got %d", n)
	}
	if got := testutil.ToFloat64(matchesCreatedTotal) - before; got != 1 {
		t.Fatalf("matches_created_total delta = %v", got)
	}

	kinds := rec.kinds()
	if fmt.Sprint(kinds) != fmt.Sprint([]notify.Kind{notify.KindSuperLike, notify.KindMatchCreated}) {
		t.Fatalf("unexpected events: %v", kinds)
	}
	ev := rec.events[1]
	if ev.MatchID != res.MatchID || ev.Actor != "amy" || ev.Recipient != "zed" {
		t.Fatalf("match event must carry the canonical pair: %+v", ev)
	}
}

func TestRecord_PassAfterLikeDoesNotMatch(t *testing.T) {
	svc, _ := newSwipes(t, 0)
	ctx := context.Background()
	seedIDs(t, svc.DB, "a", "b")

	if _, err := svc.Record(ctx, "a", "b", "like"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := svc.Record(ctx, "a", "b", "pass"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	res, err := svc.Record(ctx, "b", "a", "like")
	if err != nil || res.Matched {
		t.Fatalf("overwritten like must not match: %+v %v", res, err)
	}
}

func TestRecord_ConcurrentReciprocalSwipes(t *testing.T) {
	for i := 0; i < 5; i++ {
		svc, rec := newSwipes(t, 0)
		ctx := context.Background()
		seedIDs(t, svc.DB, "p", "q")

		var wg sync.WaitGroup
		results := make([]SwipeResult, 2)
		for j, pair := range [][2]string{{"p", "q"}, {"q", "p"}} {
			wg.Add(1)
			go func(j int, from, to string) {
				defer wg.Done()
				r, err := svc.Record(ctx, from, to, "like")
				if err != nil {
					t.Errorf("Record: %v", err)
				}
				results[j] = r
			}(j, pair[0], pair[1])
		}
		wg.Wait()

		var n int64
		svc.DB.Model(&domain.Match{}).Count(&n)
		if n != 1 {
			t.Fatalf("expected exactly one match, got %d", n)
		}
		if !results[0].Matched && !results[1].Matched {
			t.Fatalf("one of the swipes must observe the match: %+v", results)
		}
		created := 0
		for _, k := range rec.kinds() {
			if k == notify.KindMatchCreated {
				created++
			}
		}
		if created != 1 {
			t.Fatalf("expected one match event, got %d", created)
		}
	}
}

func TestRecord_RepeatSuperLikeNotifiesOnce(t *testing.T) {
	svc, rec := newSwipes(t, 0)
	ctx := context.Background()
	seedIDs(t, svc.DB, "a", "b")

	for _, typ := range []string{"super_like", "super_howl", "super_like", "like", "super_like"} {
		if _, err := svc.Record(ctx, "a", "b", typ); err != nil {
			t.Fatalf("Record(%s): %v", typ, err)
		}
	}
	supers := 0
	for _, k := range rec.kinds() {
		if k == notify.KindSuperLike {
			supers++
		}
	}
	// Once for the first super-like, once after it was downgraded to like.
	if supers != 2 {
		t.Fatalf("expected 2 super-like events, got %d (%v)", supers, rec.kinds())
	}
}

var errDetect = errors.New("detect failed")

// failingDetectStore fails the reciprocal lookup. Before failing it reads the
// caller's swipe through the root handle, which only succeeds once the swipe
// has committed.
type failingDetectStore struct {
	repo.SwipeStore
	root      *gorm.DB
	committed bool
}

func (f *failingDetectStore) HasPositiveSwipe(ctx context.Context, _ *gorm.DB, swiperID, targetID string) (bool, error) {
	_, err := repo.GetSwipe(ctx, f.root, targetID, swiperID)
	f.committed = err == nil
	return false, errDetect
}

func TestRecord_SwipeCommittedBeforeMatchCheck(t *testing.T) {
	db := newTestDB(t)
	store := &failingDetectStore{root: db}
	rec := &recorder{}
	svc := NewSwipeService(db, store, rec, 0, time.UTC, time.Second)
	ctx := context.Background()
	seedIDs(t, db, "a", "b")
	if _, _, err := repo.UpsertSwipe(ctx, db, "b", "a", domain.SwipeLike, time.Now().UTC()); err != nil {
		t.Fatalf("seed swipe: %v", err)
	}

	if _, err := svc.Record(ctx, "a", "b", "like"); !errors.Is(err, errDetect) {
		t.Fatalf("expected detection error, got %v", err)
	}
	if !store.committed {
		t.Fatalf("swipe must be committed before the match check runs")
	}
	if sw, err := repo.GetSwipe(ctx, db, "a", "b"); err != nil || sw.Type != domain.SwipeLike {
		t.Fatalf("failed match check must keep the swipe: %+v %v", sw, err)
	}

	// Repeating the swipe with a working store completes the match.
	svc.Repo = repo.SwipeStore{}
	svc.Detector = MatchDetector{Repo: svc.Repo}
	res, err := svc.Record(ctx, "a", "b", "like")
	if err != nil || !res.Matched {
		t.Fatalf("retry: res=%+v err=%v", res, err)
	}
	var swipes, matches int64
	db.Model(&domain.Swipe{}).Count(&swipes)
	db.Model(&domain.Match{}).Count(&matches)
	if swipes != 2 || matches != 1 {
		t.Fatalf("swipes=%d matches=%d", swipes, matches)
	}
	if fmt.Sprint(rec.kinds()) != fmt.Sprint([]notify.Kind{notify.KindMatchCreated}) {
		t.Fatalf("unexpected events: %v", rec.kinds())
	}
}

func TestQuota(t *testing.T) {
	svc, _ := newSwipes(t, 3)
	ctx := context.Background()
	seedIDs(t, svc.DB, "me", "x", "y")

	q, err := svc.Quota(ctx, "me")
	if err != nil || q != (Quota{Used: 0, Remaining: 3, Limit: 3}) {
		t.Fatalf("fresh quota: %+v %v", q, err)
	}
	// A swipe from yesterday does not count.
	yesterday := time.Now().UTC().Add(-48 * time.Hour)
	if _, _, err := repo.UpsertSwipe(ctx, svc.DB, "me", "old", domain.SwipeLike, yesterday); err != nil {
		t.Fatalf("seed: %v", err)
	}
	for _, target := range []string{"x", "y"} {
		if _, err := svc.Record(ctx, "me", target, "pass"); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	q, err = svc.Quota(ctx, "me")
	if err != nil || q != (Quota{Used: 2, Remaining: 1, Limit: 3}) {
		t.Fatalf("quota after swipes: %+v %v", q, err)
	}

	svc.DailyLimit = 1
	q, _ = svc.Quota(ctx, "me")
	if q.Remaining != 0 {
		t.Fatalf("remaining must not go negative: %+v", q)
	}
}

func TestDayStart_UsesConfiguredZone(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	svc := &SwipeService{Location: loc, Now: func() time.Time {
		return time.Date(2024, 6, 15, 20, 0, 0, 0, time.UTC) // 06:00 next day in UTC+10
	}}
	got := svc.dayStart()
	want := time.Date(2024, 6, 16, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("dayStart = %v; want %v", got, want)
	}
}
