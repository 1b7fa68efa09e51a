// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the push-token registry.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-match-backend/internal/domain"
)

// UpsertPushToken registers token for userID, refreshing platform and
// updated_at when the pair is already known.
func UpsertPushToken(ctx context.Context, db *gorm.DB, userID, token, platform string) error {
	now := time.Now().UTC()
	row := &domain.PushToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		Platform:  platform,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"platform", "updated_at"}),
	}).Create(row).Error
}

// DeletePushToken removes one of userID's tokens and reports how many rows went.
func DeletePushToken(ctx context.Context, db *gorm.DB, userID, token string) (int64, error) {
	res := db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, token).
		Delete(&domain.PushToken{})
	return res.RowsAffected, res.Error
}

// ListPushTokens returns userID's registered devices.
func ListPushTokens(ctx context.Context, db *gorm.DB, userID string) ([]domain.PushToken, error) {
	var out []domain.PushToken
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// DeletePushTokens drops the given tokens for every user that registered them.
func DeletePushTokens(ctx context.Context, db *gorm.DB, tokens []string) (int64, error) {
	if len(tokens) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).Where("token IN ?", tokens).Delete(&domain.PushToken{})
	return res.RowsAffected, res.Error
}
