package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/domain"
)

// MatchOutcome is the result of a TryMatch call. Created is true only for
// the call whose insert produced the match row.
type MatchOutcome struct {
	Matched bool
	Created bool
	Match   *domain.Match
}

// MatchDetector turns reciprocal positive swipes into a match. It holds no
// state; exactly-once creation comes from the unique index on the pair.
type MatchDetector struct {
	Repo SwipeRepo
}

// TryMatch runs after userID's positive swipe on targetID has committed. Each
// step is its own statement so it sees swipes committed by concurrent callers;
// of two reciprocal swipes, at least the later commit observes the other.
func (d MatchDetector) TryMatch(ctx context.Context, db *gorm.DB, userID, targetID string) (MatchOutcome, error) {
	tr := otel.Tracer("services/MatchDetector")
	ctx, span := tr.Start(ctx, "TryMatch",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("target.id", targetID),
		),
	)
	defer span.End()

	reciprocal, err := d.Repo.HasPositiveSwipe(ctx, db, targetID, userID)
	if err != nil || !reciprocal {
		return MatchOutcome{}, err
	}

	blocked, err := d.Repo.IsBlockedEither(ctx, db, userID, targetID)
	if err != nil || blocked {
		return MatchOutcome{}, err
	}

	m, created, err := d.Repo.InsertOrGetMatch(ctx, db, userID, targetID)
	if err != nil {
		return MatchOutcome{}, err
	}
	span.SetAttributes(attribute.String("match.id", m.ID), attribute.Bool("match.created", created))
	return MatchOutcome{Matched: true, Created: created, Match: m}, nil
}
