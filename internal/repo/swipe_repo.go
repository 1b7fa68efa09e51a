// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for swipes.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-match-backend/internal/domain"
)

// UpsertSwipe records swiperID's decision about targetID. An existing row for
// the pair keeps its id and created_at; only type and updated_at change.
// prev is the type stored before the call, or "" for a first swipe.
func UpsertSwipe(ctx context.Context, db *gorm.DB, swiperID, targetID string, typ domain.SwipeType, now time.Time) (stored *domain.Swipe, prev domain.SwipeType, err error) {
	old, err := GetSwipe(ctx, db, swiperID, targetID)
	switch {
	case err == nil:
		prev = old.Type
	case !errors.Is(err, ErrNotFound):
		return nil, "", err
	}

	s := &domain.Swipe{
		ID:        uuid.NewString(),
		SwiperID:  swiperID,
		TargetID:  targetID,
		Type:      typ,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "swiper_id"}, {Name: "target_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"type", "updated_at"}),
	}).Create(s).Error
	if err != nil {
		return nil, "", err
	}
	// On conflict the generated id was discarded; read back the stored row.
	stored, err = GetSwipe(ctx, db, swiperID, targetID)
	return stored, prev, err
}

// GetSwipe fetches the swipe for the directed pair, or ErrNotFound.
func GetSwipe(ctx context.Context, db *gorm.DB, swiperID, targetID string) (*domain.Swipe, error) {
	var s domain.Swipe
	err := db.WithContext(ctx).
		Where("swiper_id = ? AND target_id = ?", swiperID, targetID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CountSwipesSince counts swiperID's swipes first recorded at or after since.
func CountSwipesSince(ctx context.Context, db *gorm.DB, swiperID string, since time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Swipe{}).
		Where("swiper_id = ? AND created_at >= ?", swiperID, since.UTC()).
		Count(&n).Error
	return n, err
}

// HasPositiveSwipe reports whether swiperID liked or super-liked targetID.
func HasPositiveSwipe(ctx context.Context, db *gorm.DB, swiperID, targetID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Swipe{}).
		Where("swiper_id = ? AND target_id = ? AND type IN ?", swiperID, targetID, domain.PositiveSwipeTypes).
		Count(&n).Error
	return n > 0, err
}

// SwipedTargetIDs lists every user swiperID has swiped on, whatever the type.
func SwipedTargetIDs(ctx context.Context, db *gorm.DB, swiperID string) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.Swipe{}).
		Where("swiper_id = ?", swiperID).
		Pluck("target_id", &ids).Error
	return ids, err
}

// SwipeStore exposes the swipe and match functions as a value, for services
// that take their storage as an interface.
type SwipeStore struct{}

// CountSwipesSince proxies CountSwipesSince.
func (SwipeStore) CountSwipesSince(ctx context.Context, db *gorm.DB, swiperID string, since time.Time) (int64, error) {
	return CountSwipesSince(ctx, db, swiperID, since)
}

// UserExists proxies UserExists.
func (SwipeStore) UserExists(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	return UserExists(ctx, db, id)
}

// IsBlockedEither proxies IsBlockedEither.
func (SwipeStore) IsBlockedEither(ctx context.Context, db *gorm.DB, a, b string) (bool, error) {
	return IsBlockedEither(ctx, db, a, b)
}

// UpsertSwipe proxies UpsertSwipe.
func (SwipeStore) UpsertSwipe(ctx context.Context, db *gorm.DB, swiperID, targetID string, typ domain.SwipeType, now time.Time) (*domain.Swipe, domain.SwipeType, error) {
	return UpsertSwipe(ctx, db, swiperID, targetID, typ, now)
}

// HasPositiveSwipe proxies HasPositiveSwipe.
func (SwipeStore) HasPositiveSwipe(ctx context.Context, db *gorm.DB, swiperID, targetID string) (bool, error) {
	return HasPositiveSwipe(ctx, db, swiperID, targetID)
}

// InsertOrGetMatch proxies InsertOrGetMatch.
func (SwipeStore) InsertOrGetMatch(ctx context.Context, db *gorm.DB, a, b string) (*domain.Match, bool, error) {
	return InsertOrGetMatch(ctx, db, a, b)
}
