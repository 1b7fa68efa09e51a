// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/domain"
)

// MatchesStats returns aggregate metadata for a user's match list: the number
// of matches and the latest activity among them, which is the newest match
// creation or message.
//
// When the user has no matches, the returned count is 0 and latest is nil.
func MatchesStats(ctx context.Context, db *gorm.DB, userID string) (count int64, latest *time.Time, err error) {
	mine := func() *gorm.DB {
		return db.WithContext(ctx).Model(&domain.Match{}).Where("user_a_id = ? OR user_b_id = ?", userID, userID)
	}

	if err = mine().Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Avoid MAX() -> TEXT in SQLite
	var m struct{ CreatedAt time.Time }
	if err = mine().Select("created_at").Order("created_at DESC").Limit(1).Scan(&m).Error; err != nil {
		return 0, nil, err
	}
	newest := m.CreatedAt

	ids := mine().Select("id")
	var msg struct{ CreatedAt time.Time }
	res := db.WithContext(ctx).Model(&domain.Message{}).
		Select("created_at").
		Where("match_id IN (?)", ids).
		Order("created_at DESC").
		Limit(1).
		Scan(&msg)
	if res.Error != nil {
		return 0, nil, res.Error
	}
	if res.RowsAffected > 0 && msg.CreatedAt.After(newest) {
		newest = msg.CreatedAt
	}
	return count, &newest, nil
}
