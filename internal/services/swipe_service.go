// Package services – SwipeService
//
// This file implements the swipe recorder. Validation runs in a fixed order
// (type, self, daily quota, target) and stops at the first failure, before
// any write. The swipe upsert commits on its own before the match check
// runs, so a concurrent reciprocal swipe is visible to at least one of the
// two checks; the unique index on the pair keeps the match single.
// Notifications are published only after the writes succeed.
package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/domain"
	"github.com/tbourn/go-match-backend/internal/notify"
)

// DefaultDailySwipeLimit applies when SwipeService.DailyLimit is unset.
const DefaultDailySwipeLimit = 100

// Notifier receives events once the write that produced them has committed.
// Publish must not block.
type Notifier interface {
	Publish(ev notify.Event)
}

// SwipeResult is returned to the swiper.
type SwipeResult struct {
	Matched bool   `json:"matched"`
	MatchID string `json:"matchId,omitempty"`
}

// Quota describes today's swipe allowance.
type Quota struct {
	Used      int64 `json:"used"`
	Remaining int64 `json:"remaining"`
	Limit     int64 `json:"limit"`
}

// SwipeRepo defines the storage contract required by SwipeService and
// MatchDetector.
type SwipeRepo interface {
	// CountSwipesSince counts swipes first recorded at or after since.
	CountSwipesSince(ctx context.Context, db *gorm.DB, swiperID string, since time.Time) (int64, error)
	UserExists(ctx context.Context, db *gorm.DB, id string) (bool, error)
	IsBlockedEither(ctx context.Context, db *gorm.DB, a, b string) (bool, error)

	// UpsertSwipe stores the latest decision and returns the type it replaced.
	UpsertSwipe(ctx context.Context, db *gorm.DB, swiperID, targetID string, typ domain.SwipeType, now time.Time) (*domain.Swipe, domain.SwipeType, error)
	HasPositiveSwipe(ctx context.Context, db *gorm.DB, swiperID, targetID string) (bool, error)

	// InsertOrGetMatch reports created=true only for the inserting call.
	InsertOrGetMatch(ctx context.Context, db *gorm.DB, a, b string) (*domain.Match, bool, error)
}

// SwipeService records swipes and detects matches.
type SwipeService struct {
	DB       *gorm.DB
	Repo     SwipeRepo
	Detector MatchDetector
	Notifier Notifier

	// DailyLimit caps swipes per local calendar day.
	DailyLimit int
	// Location defines the calendar day used by the quota.
	Location *time.Location
	// Timeout bounds each storage call.
	Timeout time.Duration
	// Now is overridable in tests.
	Now func() time.Time
}

// NewSwipeService constructs a SwipeService.
func NewSwipeService(db *gorm.DB, r SwipeRepo, n Notifier, dailyLimit int, loc *time.Location, timeout time.Duration) *SwipeService {
	return &SwipeService{
		DB:         db,
		Repo:       r,
		Detector:   MatchDetector{Repo: r},
		Notifier:   n,
		DailyLimit: dailyLimit,
		Location:   loc,
		Timeout:    timeout,
		Now:        time.Now,
	}
}

func (s *SwipeService) limit() int64 {
	if s.DailyLimit <= 0 {
		return DefaultDailySwipeLimit
	}
	return int64(s.DailyLimit)
}

// dayStart returns the most recent local midnight.
func (s *SwipeService) dayStart() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	t := now().In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func (s *SwipeService) used(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := bounded(ctx, s.Timeout, func(ctx context.Context) error {
		var err error
		n, err = s.Repo.CountSwipesSince(ctx, s.DB, userID, s.dayStart())
		return err
	})
	return n, err
}

// Quota reports how many swipes userID has left today.
func (s *SwipeService) Quota(ctx context.Context, userID string) (Quota, error) {
	tr := otel.Tracer("services/SwipeService")
	ctx, span := tr.Start(ctx, "Quota", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	used, err := s.used(ctx, userID)
	if err != nil {
		return Quota{}, err
	}
	limit := s.limit()
	return Quota{Used: used, Remaining: max(0, limit-used), Limit: limit}, nil
}

// Record stores swiperID's decision about targetID and reports whether it
// completed a match. rawType accepts the legacy "super_howl" spelling.
func (s *SwipeService) Record(ctx context.Context, swiperID, targetID, rawType string) (SwipeResult, error) {
	tr := otel.Tracer("services/SwipeService")
	ctx, span := tr.Start(ctx, "Record",
		trace.WithAttributes(
			attribute.String("user.id", swiperID),
			attribute.String("target.id", targetID),
			attribute.String("swipe.type", rawType),
		),
	)
	defer span.End()

	typ, ok := domain.ParseSwipeType(rawType)
	if !ok {
		swipeRejectionsTotal.WithLabelValues("invalid_type").Inc()
		return SwipeResult{}, ErrInvalidSwipeType
	}
	if swiperID == targetID {
		swipeRejectionsTotal.WithLabelValues("self").Inc()
		return SwipeResult{}, ErrSelfSwipe
	}

	used, err := s.used(ctx, swiperID)
	if err != nil {
		return SwipeResult{}, err
	}
	if used >= s.limit() {
		swipeRejectionsTotal.WithLabelValues("quota").Inc()
		return SwipeResult{}, ErrQuotaExceeded
	}

	if err := s.checkTarget(ctx, swiperID, targetID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			swipeRejectionsTotal.WithLabelValues("target").Inc()
		}
		return SwipeResult{}, err
	}

	var prev domain.SwipeType
	err = bounded(ctx, s.Timeout, func(ctx context.Context) error {
		var err error
		_, prev, err = s.Repo.UpsertSwipe(ctx, s.DB, swiperID, targetID, typ, time.Now().UTC())
		return err
	})
	if err != nil {
		return SwipeResult{}, err
	}
	swipesTotal.WithLabelValues(string(typ)).Inc()

	// A repeat super-like of the same target notifies only once.
	if typ == domain.SwipeSuperLike && prev != domain.SwipeSuperLike {
		s.publish(notify.SuperLike(swiperID, targetID))
	}
	if !typ.Positive() {
		return SwipeResult{}, nil
	}

	// The swipe stays stored if detection fails; repeating the swipe retries
	// detection without a second swipe row or match.
	var outcome MatchOutcome
	err = bounded(ctx, s.Timeout, func(ctx context.Context) error {
		var err error
		outcome, err = s.Detector.TryMatch(ctx, s.DB, swiperID, targetID)
		return err
	})
	if err != nil {
		return SwipeResult{}, err
	}

	if outcome.Created {
		matchesCreatedTotal.Inc()
		loggerFrom(ctx).Info().
			Str("match_id", outcome.Match.ID).
			Str("pair", domain.NewPair(swiperID, targetID).Key()).
			Msg("match created")
		s.publish(notify.MatchCreated(outcome.Match.ID, outcome.Match.UserAID, outcome.Match.UserBID))
	}

	res := SwipeResult{Matched: outcome.Matched}
	if outcome.Match != nil {
		res.MatchID = outcome.Match.ID
	}
	return res, nil
}

// checkTarget rejects unknown targets and pairs blocked in either direction,
// both as ErrUserNotFound.
func (s *SwipeService) checkTarget(ctx context.Context, swiperID, targetID string) error {
	return bounded(ctx, s.Timeout, func(ctx context.Context) error {
		exists, err := s.Repo.UserExists(ctx, s.DB, targetID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}
		blocked, err := s.Repo.IsBlockedEither(ctx, s.DB, swiperID, targetID)
		if err != nil {
			return err
		}
		if blocked {
			return ErrUserNotFound
		}
		return nil
	})
}

func (s *SwipeService) publish(ev notify.Event) {
	if s.Notifier != nil {
		s.Notifier.Publish(ev)
	}
}
