// Package services – MatchService
//
// This file implements the match list and in-match messaging: listing a
// user's matches by last activity with unread counts, cursor-paged message
// history, sending, read receipts and unmatching. A missing match and a match
// the caller does not belong to are reported as different errors.
package services

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/domain"
	"github.com/tbourn/go-match-backend/internal/notify"
	"github.com/tbourn/go-match-backend/internal/repo"
)

const (
	DefaultMessageLimit = 50
	MaxMessageLimit     = 100
	MaxMessageRunes     = 2000

	// previewRunes caps the message excerpt carried by push notifications.
	previewRunes = 100
)

// MatchSummary is one row of the match list.
type MatchSummary struct {
	ID          string          `json:"id"`
	CreatedAt   time.Time       `json:"createdAt"`
	OtherUser   domain.User     `json:"otherUser"`
	LastMessage *domain.Message `json:"lastMessage"`
	UnreadCount int64           `json:"unreadCount"`
}

// LastActivity is the newest of the match creation and its last message.
func (m MatchSummary) LastActivity() time.Time {
	if m.LastMessage != nil && m.LastMessage.CreatedAt.After(m.CreatedAt) {
		return m.LastMessage.CreatedAt
	}
	return m.CreatedAt
}

// MatchService serves the match list and conversations.
type MatchService struct {
	DB       *gorm.DB
	Notifier Notifier
	Timeout  time.Duration
}

// NewMatchService constructs a MatchService.
func NewMatchService(db *gorm.DB, n Notifier, timeout time.Duration) *MatchService {
	return &MatchService{DB: db, Notifier: n, Timeout: timeout}
}

// List returns userID's matches ordered by last activity, newest first.
func (s *MatchService) List(ctx context.Context, userID string) ([]MatchSummary, error) {
	tr := otel.Tracer("services/MatchService")
	ctx, span := tr.Start(ctx, "List", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	var (
		matches []domain.Match
		last    map[string]domain.Message
		unread  map[string]int64
	)
	err := bounded(ctx, s.Timeout, func(ctx context.Context) error {
		var err error
		if matches, err = repo.ListMatchesForUser(ctx, s.DB, userID); err != nil {
			return err
		}
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		if last, err = repo.LastMessages(ctx, s.DB, ids); err != nil {
			return err
		}
		unread, err = repo.UnreadCounts(ctx, s.DB, userID, ids)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]MatchSummary, 0, len(matches))
	for _, m := range matches {
		other := m.UserA
		if m.UserAID == userID {
			other = m.UserB
		}
		sum := MatchSummary{
			ID:          m.ID,
			CreatedAt:   m.CreatedAt,
			OtherUser:   other,
			UnreadCount: unread[m.ID],
		}
		if msg, ok := last[m.ID]; ok {
			sum.LastMessage = &msg
		}
		out = append(out, sum)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastActivity().After(out[j].LastActivity())
	})
	return out, nil
}

// Stats exposes match-list metadata for conditional GETs.
func (s *MatchService) Stats(ctx context.Context, userID string) (int64, *time.Time, error) {
	var (
		n      int64
		latest *time.Time
	)
	err := bounded(ctx, s.Timeout, func(ctx context.Context) error {
		var err error
		n, latest, err = repo.MatchesStats(ctx, s.DB, userID)
		return err
	})
	return n, latest, err
}

// participantMatch loads matchID and checks userID belongs to it.
func (s *MatchService) participantMatch(ctx context.Context, userID, matchID string) (*domain.Match, error) {
	var m *domain.Match
	err := bounded(ctx, s.Timeout, func(ctx context.Context) error {
		var err error
		m, err = repo.GetMatch(ctx, s.DB, matchID)
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if !m.Involves(userID) {
		return nil, ErrNotParticipant
	}
	return m, nil
}

// Messages returns up to limit messages older than the cursor message
// (the newest ones when cursor is empty), oldest first.
func (s *MatchService) Messages(ctx context.Context, userID, matchID, cursor string, limit int) ([]domain.Message, error) {
	tr := otel.Tracer("services/MatchService")
	ctx, span := tr.Start(ctx, "Messages",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("match.id", matchID),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	if limit > MaxMessageLimit {
		limit = MaxMessageLimit
	}
	if _, err := s.participantMatch(ctx, userID, matchID); err != nil {
		return nil, err
	}

	var out []domain.Message
	err := bounded(ctx, s.Timeout, func(ctx context.Context) error {
		var before *domain.Message
		if cursor != "" {
			c, err := repo.GetMessage(ctx, s.DB, matchID, cursor)
			if err != nil {
				if isNotFound(err) {
					return ErrInvalidCursor
				}
				return err
			}
			before = c
		}
		var err error
		out, err = repo.ListMessagesBefore(ctx, s.DB, matchID, before, limit)
		return err
	})
	return out, err
}

// Send stores a message from userID in matchID and notifies the other party.
func (s *MatchService) Send(ctx context.Context, userID, matchID, content string) (*domain.Message, error) {
	tr := otel.Tracer("services/MatchService")
	ctx, span := tr.Start(ctx, "Send",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("match.id", matchID),
		),
	)
	defer span.End()

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > MaxMessageRunes {
		return nil, ErrMessageTooLong
	}

	m, err := s.participantMatch(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}

	var msg *domain.Message
	err = bounded(ctx, s.Timeout, func(ctx context.Context) error {
		var err error
		msg, err = repo.CreateMessage(ctx, s.DB, matchID, userID, content)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		s.Notifier.Publish(notify.MessageSent(matchID, userID, m.Other(userID), preview(content)))
	}
	return msg, nil
}

// MarkRead marks the other party's messages in matchID as read by userID.
func (s *MatchService) MarkRead(ctx context.Context, userID, matchID string) (int64, error) {
	if _, err := s.participantMatch(ctx, userID, matchID); err != nil {
		return 0, err
	}
	var n int64
	err := bounded(ctx, s.Timeout, func(ctx context.Context) error {
		var err error
		n, err = repo.MarkRead(ctx, s.DB, matchID, userID, time.Now())
		return err
	})
	return n, err
}

// Unmatch deletes the match and its conversation.
func (s *MatchService) Unmatch(ctx context.Context, userID, matchID string) error {
	tr := otel.Tracer("services/MatchService")
	ctx, span := tr.Start(ctx, "Unmatch",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("match.id", matchID),
		),
	)
	defer span.End()

	if _, err := s.participantMatch(ctx, userID, matchID); err != nil {
		return err
	}
	err := bounded(ctx, s.Timeout, func(ctx context.Context) error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return repo.DeleteMatch(ctx, tx, matchID)
		})
	})
	if isNotFound(err) {
		// Lost a race with the other party's unmatch or a block.
		return ErrMatchNotFound
	}
	return err
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewRunes {
		return s
	}
	r := []rune(s)
	return string(r[:previewRunes]) + "…"
}
