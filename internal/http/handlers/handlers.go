// Package handlers exposes the discovery and matching API over Gin.
//
// Handlers are transport-thin: they bind and validate input, call the
// application services through the interfaces below, and translate results
// and sentinel errors into HTTP responses.
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-match-backend/internal/domain"
	"github.com/tbourn/go-match-backend/internal/http/middleware"
	"github.com/tbourn/go-match-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// DiscoveryService lists candidate profiles.
type DiscoveryService interface {
	Candidates(ctx context.Context, userID string, f services.CandidateFilter) ([]domain.User, error)
}

// SwipeService records swipes and reports the daily allowance.
type SwipeService interface {
	Record(ctx context.Context, swiperID, targetID, swipeType string) (services.SwipeResult, error)
	Quota(ctx context.Context, userID string) (services.Quota, error)
}

// MatchService serves matches and their conversations.
type MatchService interface {
	List(ctx context.Context, userID string) ([]services.MatchSummary, error)
	Stats(ctx context.Context, userID string) (int64, *time.Time, error)
	Messages(ctx context.Context, userID, matchID, cursor string, limit int) ([]domain.Message, error)
	Send(ctx context.Context, userID, matchID, content string) (*domain.Message, error)
	MarkRead(ctx context.Context, userID, matchID string) (int64, error)
	Unmatch(ctx context.Context, userID, matchID string) error
}

// BlockService manages the caller's block list.
type BlockService interface {
	Block(ctx context.Context, blockerID, blockedID string) error
	Unblock(ctx context.Context, blockerID, blockedID string) error
	List(ctx context.Context, blockerID string) ([]services.BlockEntry, error)
}

// ReportService files reports about other users.
type ReportService interface {
	File(ctx context.Context, reporterID, targetID, reason, details string) (*domain.Report, error)
}

// PushTokenService maintains device registrations.
type PushTokenService interface {
	Register(ctx context.Context, userID, token, platform string) error
	Remove(ctx context.Context, userID, token string) error
}

//
// Handler wiring
//

// Services bundles the dependencies of Handlers.
type Services struct {
	Discovery  DiscoveryService
	Swipes     SwipeService
	Matches    MatchService
	Blocks     BlockService
	Reports    ReportService
	PushTokens PushTokenService
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	discovery DiscoveryService
	swipes    SwipeService
	matches   MatchService
	blocks    BlockService
	reports   ReportService
	push      PushTokenService
}

// New constructs Handlers bound to the given services.
func New(s Services) *Handlers {
	return &Handlers{
		discovery: s.Discovery,
		swipes:    s.Swipes,
		matches:   s.Matches,
		blocks:    s.Blocks,
		reports:   s.Reports,
		push:      s.PushTokens,
	}
}

// userID is the caller set by middleware.Authenticate.
func userID(c *gin.Context) string {
	return middleware.UserID(c)
}

// SuccessResponse is the body of endpoints that only acknowledge.
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}
