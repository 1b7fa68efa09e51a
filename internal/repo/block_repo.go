// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for blocks.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/domain"
)

// CreateBlock inserts a directional block. It returns ErrDuplicate when
// blockerID already blocks blockedID.
func CreateBlock(ctx context.Context, db *gorm.DB, blockerID, blockedID string) (*domain.Block, error) {
	b := &domain.Block{
		ID:        uuid.NewString(),
		BlockerID: blockerID,
		BlockedID: blockedID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(b).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return b, nil
}

// DeleteBlock removes blockerID's block on blockedID, or returns ErrNotFound.
func DeleteBlock(ctx context.Context, db *gorm.DB, blockerID, blockedID string) error {
	res := db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&domain.Block{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// BlockedIDs lists users that blockerID has blocked.
func BlockedIDs(ctx context.Context, db *gorm.DB, blockerID string) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.Block{}).
		Where("blocker_id = ?", blockerID).
		Pluck("blocked_id", &ids).Error
	return ids, err
}

// BlockerIDs lists users that have blocked blockedID.
func BlockerIDs(ctx context.Context, db *gorm.DB, blockedID string) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.Block{}).
		Where("blocked_id = ?", blockedID).
		Pluck("blocker_id", &ids).Error
	return ids, err
}

// IsBlockedEither reports whether a or b blocks the other.
func IsBlockedEither(ctx context.Context, db *gorm.DB, a, b string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&n).Error
	return n > 0, err
}

// ListBlocks returns blockerID's blocks, newest first, with the blocked
// profile preloaded.
func ListBlocks(ctx context.Context, db *gorm.DB, blockerID string) ([]domain.Block, error) {
	var out []domain.Block
	err := db.WithContext(ctx).
		Where("blocker_id = ?", blockerID).
		Preload("Blocked").
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}
