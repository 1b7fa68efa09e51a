// Package services – BlockService
//
// This file implements blocking. A block is directional, but its side effect
// is not: creating one always retracts the pair's match and conversation in
// the same transaction, even when the block already existed. Unblocking does
// not bring a retracted match back.
package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/repo"
)

// BlockEntry is one row of a user's block list.
type BlockEntry struct {
	UserID      string    `json:"userId"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	BlockedAt   time.Time `json:"blockedAt"`
}

// BlockService manages blocks and their effect on matches.
type BlockService struct {
	DB      *gorm.DB
	Timeout time.Duration
}

// NewBlockService constructs a BlockService.
func NewBlockService(db *gorm.DB, timeout time.Duration) *BlockService {
	return &BlockService{DB: db, Timeout: timeout}
}

// Block makes blockerID block blockedID and retracts any match between them.
// ErrAlreadyBlocked is returned for a repeat block, after the retraction.
func (s *BlockService) Block(ctx context.Context, blockerID, blockedID string) error {
	tr := otel.Tracer("services/BlockService")
	ctx, span := tr.Start(ctx, "Block",
		trace.WithAttributes(
			attribute.String("user.id", blockerID),
			attribute.String("target.id", blockedID),
		),
	)
	defer span.End()

	if blockerID == blockedID {
		return ErrSelfBlock
	}

	duplicate := false
	err := bounded(ctx, s.Timeout, func(ctx context.Context) error {
		exists, err := repo.UserExists(ctx, s.DB, blockedID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if _, err := repo.CreateBlock(ctx, tx, blockerID, blockedID); err != nil {
				if !errors.Is(err, repo.ErrDuplicate) {
					return err
				}
				duplicate = true
			}
			removed, err := repo.DeleteMatchByPair(ctx, tx, blockerID, blockedID)
			if err != nil {
				return err
			}
			span.SetAttributes(attribute.Int64("matches.removed", removed))
			return nil
		})
	})
	if err != nil {
		return err
	}
	if duplicate {
		return ErrAlreadyBlocked
	}
	blocksTotal.Inc()
	return nil
}

// Unblock removes blockerID's block on blockedID.
func (s *BlockService) Unblock(ctx context.Context, blockerID, blockedID string) error {
	tr := otel.Tracer("services/BlockService")
	ctx, span := tr.Start(ctx, "Unblock",
		trace.WithAttributes(
			attribute.String("user.id", blockerID),
			attribute.String("target.id", blockedID),
		),
	)
	defer span.End()

	err := bounded(ctx, s.Timeout, func(ctx context.Context) error {
		return repo.DeleteBlock(ctx, s.DB, blockerID, blockedID)
	})
	if isNotFound(err) {
		return ErrBlockNotFound
	}
	return err
}

// List returns blockerID's blocks, newest first.
func (s *BlockService) List(ctx context.Context, blockerID string) ([]BlockEntry, error) {
	var out []BlockEntry
	err := bounded(ctx, s.Timeout, func(ctx context.Context) error {
		rows, err := repo.ListBlocks(ctx, s.DB, blockerID)
		if err != nil {
			return err
		}
		out = make([]BlockEntry, 0, len(rows))
		for _, b := range rows {
			out = append(out, BlockEntry{
				UserID:      b.BlockedID,
				Username:    b.Blocked.Username,
				DisplayName: b.Blocked.DisplayName,
				BlockedAt:   b.CreatedAt,
			})
		}
		return nil
	})
	return out, err
}
