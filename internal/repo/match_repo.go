// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for matches.
//
// A match is stored once per canonical pair (user_a_id < user_b_id). The
// unique index on the pair is what makes concurrent reciprocal swipes safe:
// InsertOrGetMatch relies on it instead of any application lock.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-match-backend/internal/domain"
)

// InsertOrGetMatch inserts the match for the unordered pair {a, b} unless it
// already exists. created is true only for the call that inserted the row.
func InsertOrGetMatch(ctx context.Context, db *gorm.DB, a, b string) (m *domain.Match, created bool, err error) {
	low, high := domain.Canonicalize(a, b)
	row := &domain.Match{
		ID:        uuid.NewString(),
		UserAID:   low,
		UserBID:   high,
		CreatedAt: time.Now().UTC(),
	}
	res := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}},
		DoNothing: true,
	}).Create(row)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return row, true, nil
	}
	existing, err := GetMatchByPair(ctx, db, low, high)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// GetMatch fetches a match by id, or ErrNotFound.
func GetMatch(ctx context.Context, db *gorm.DB, id string) (*domain.Match, error) {
	var m domain.Match
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMatchByPair fetches the match for the unordered pair {a, b}, or ErrNotFound.
func GetMatchByPair(ctx context.Context, db *gorm.DB, a, b string) (*domain.Match, error) {
	low, high := domain.Canonicalize(a, b)
	var m domain.Match
	err := db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", low, high).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMatch removes a match and its messages. It returns ErrNotFound when
// no match with id exists.
func DeleteMatch(ctx context.Context, db *gorm.DB, id string) error {
	tx := db.WithContext(ctx)
	if err := tx.Where("match_id = ?", id).Delete(&domain.Message{}).Error; err != nil {
		return err
	}
	res := tx.Where("id = ?", id).Delete(&domain.Match{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMatchByPair removes the match for the unordered pair {a, b}, if any,
// together with its messages. It reports how many match rows were removed.
func DeleteMatchByPair(ctx context.Context, db *gorm.DB, a, b string) (int64, error) {
	low, high := domain.Canonicalize(a, b)
	tx := db.WithContext(ctx)
	sub := tx.Model(&domain.Match{}).Select("id").Where("user_a_id = ? AND user_b_id = ?", low, high)
	if err := tx.Where("match_id IN (?)", sub).Delete(&domain.Message{}).Error; err != nil {
		return 0, err
	}
	res := tx.Where("user_a_id = ? AND user_b_id = ?", low, high).Delete(&domain.Match{})
	return res.RowsAffected, res.Error
}

// ListMatchesForUser returns every match userID takes part in, with both
// profiles and their visible photos preloaded.
func ListMatchesForUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.Match, error) {
	visiblePhotos := func(db *gorm.DB) *gorm.DB {
		return db.Where("visible = ?", true).Order("position ASC, id ASC")
	}
	var out []domain.Match
	err := db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Preload("UserA").
		Preload("UserA.Photos", visiblePhotos).
		Preload("UserB").
		Preload("UserB.Photos", visiblePhotos).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// LastMessages returns the newest message of each given match, keyed by
// match id. Matches without messages are absent.
func LastMessages(ctx context.Context, db *gorm.DB, matchIDs []string) (map[string]domain.Message, error) {
	out := make(map[string]domain.Message, len(matchIDs))
	if len(matchIDs) == 0 {
		return out, nil
	}
	var rows []domain.Message
	err := db.WithContext(ctx).
		Where("match_id IN ?", matchIDs).
		Where(`id = (SELECT m2.id FROM messages m2 WHERE m2.match_id = messages.match_id
			ORDER BY m2.created_at DESC, m2.id DESC LIMIT 1)`).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, m := range rows {
		out[m.MatchID] = m
	}
	return out, nil
}

// UnreadCounts counts, per match, messages sent to readerID that are not yet
// read. Matches with nothing unread are absent.
func UnreadCounts(ctx context.Context, db *gorm.DB, readerID string, matchIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(matchIDs))
	if len(matchIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		MatchID string
		N       int64
	}
	err := db.WithContext(ctx).
		Model(&domain.Message{}).
		Select("match_id, COUNT(*) AS n").
		Where("match_id IN ? AND sender_id <> ? AND read_at IS NULL", matchIDs, readerID).
		Group("match_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.MatchID] = r.N
	}
	return out, nil
}
