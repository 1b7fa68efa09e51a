// Package services – DiscoveryService
//
// This file implements candidate discovery: it assembles the exclusion set
// (self, already swiped, blocked in either direction), turns the optional age
// range into birth-date bounds, folds the theriotype term, and pages through
// the repository until enough candidates survive the distance filter.
package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/domain"
	"github.com/tbourn/go-match-backend/internal/repo"
	"github.com/tbourn/go-match-backend/internal/textnorm"
)

const (
	DefaultCandidateLimit = 20
	MaxCandidateLimit     = 50

	// distanceBatch is the page size used while the distance filter discards rows.
	distanceBatch = 100
)

// CandidateFilter holds the optional discovery filters. Nil pointers and an
// empty Theriotype mean "no filter".
type CandidateFilter struct {
	Theriotype    string
	MinAge        *int
	MaxAge        *int
	MaxDistanceKm *float64
	Limit         int
}

// DiscoveryService lists profiles a user has not yet decided on.
type DiscoveryService struct {
	DB *gorm.DB

	// Timeout bounds each storage call.
	Timeout time.Duration
	// Location is the zone whose calendar date drives the age rules.
	Location *time.Location
	// Now is overridable in tests.
	Now func() time.Time
}

// NewDiscoveryService constructs a DiscoveryService using the local zone.
func NewDiscoveryService(db *gorm.DB, timeout time.Duration, loc *time.Location) *DiscoveryService {
	if loc == nil {
		loc = time.Local
	}
	return &DiscoveryService{DB: db, Timeout: timeout, Location: loc, Now: time.Now}
}

func (s *DiscoveryService) today() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

// Candidates returns up to f.Limit eligible profiles for userID, newest first.
func (s *DiscoveryService) Candidates(ctx context.Context, userID string, f CandidateFilter) ([]domain.User, error) {
	tr := otel.Tracer("services/DiscoveryService")
	ctx, span := tr.Start(ctx, "Candidates",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("filter.theriotype", f.Theriotype),
			attribute.Int("filter.limit", f.Limit),
		),
	)
	defer span.End()

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultCandidateLimit
	}
	if limit > MaxCandidateLimit {
		limit = MaxCandidateLimit
	}

	var me *domain.User
	if err := bounded(ctx, s.Timeout, func(ctx context.Context) error {
		var err error
		me, err = repo.GetUser(ctx, s.DB, userID)
		return err
	}); err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	exclude, err := s.exclusions(ctx, userID)
	if err != nil {
		return nil, err
	}

	latest, earliest := birthBounds(s.today(), f.MinAge, f.MaxAge)
	q := repo.CandidateQuery{
		Exclude:       exclude,
		LatestBirth:   latest,
		EarliestBirth: earliest,
		SpeciesTerm:   textnorm.Fold(f.Theriotype),
	}

	origin, useDistance := distanceOrigin(me, f.MaxDistanceKm)
	if !useDistance {
		q.Limit = limit
		var out []domain.User
		err := bounded(ctx, s.Timeout, func(ctx context.Context) error {
			var err error
			out, err = repo.ListCandidates(ctx, s.DB, q)
			return err
		})
		return out, err
	}

	out := make([]domain.User, 0, limit)
	q.Limit = distanceBatch
	for {
		var page []domain.User
		if err := bounded(ctx, s.Timeout, func(ctx context.Context) error {
			var err error
			page, err = repo.ListCandidates(ctx, s.DB, q)
			return err
		}); err != nil {
			return nil, err
		}
		for _, u := range page {
			if withinDistance(origin, u, *f.MaxDistanceKm) {
				out = append(out, u)
				if len(out) == limit {
					return out, nil
				}
			}
		}
		if len(page) < q.Limit {
			return out, nil
		}
		q.Offset += len(page)
	}
}

// exclusions loads the ids userID must never see, self included.
func (s *DiscoveryService) exclusions(ctx context.Context, userID string) ([]string, error) {
	var swiped, blocked, blockers []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bounded(gctx, s.Timeout, func(ctx context.Context) error {
			var err error
			swiped, err = repo.SwipedTargetIDs(ctx, s.DB, userID)
			return err
		})
	})
	g.Go(func() error {
		return bounded(gctx, s.Timeout, func(ctx context.Context) error {
			var err error
			blocked, err = repo.BlockedIDs(ctx, s.DB, userID)
			return err
		})
	})
	g.Go(func() error {
		return bounded(gctx, s.Timeout, func(ctx context.Context) error {
			var err error
			blockers, err = repo.BlockerIDs(ctx, s.DB, userID)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	n := 1 + len(swiped) + len(blocked) + len(blockers)
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for _, group := range [][]string{{userID}, swiped, blocked, blockers} {
		for _, id := range group {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out, nil
}

type point struct{ lat, lng float64 }

// distanceOrigin reports the requester's coordinates when a distance filter
// applies. Without a usable limit or coordinates the filter is off.
func distanceOrigin(me *domain.User, maxKm *float64) (point, bool) {
	if maxKm == nil || *maxKm <= 0 || me.Latitude == nil || me.Longitude == nil {
		return point{}, false
	}
	return point{*me.Latitude, *me.Longitude}, true
}

// withinDistance keeps candidates without coordinates.
func withinDistance(origin point, u domain.User, maxKm float64) bool {
	if u.Latitude == nil || u.Longitude == nil {
		return true
	}
	return haversineKm(origin.lat, origin.lng, *u.Latitude, *u.Longitude) <= maxKm
}
