// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for users and the
// candidate query used by discovery.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only persistence and query composition.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/domain"
	"github.com/tbourn/go-match-backend/internal/textnorm"
)

// CandidateQuery narrows the users table to discovery candidates.
//
// Fields:
//   - Exclude: ids never returned (self, swiped, blocked either way).
//   - LatestBirth: inclusive upper bound on birth_date.
//   - EarliestBirth: exclusive lower bound on birth_date, when set.
//   - SpeciesTerm: folded substring matched against any theriotype.
//   - Offset / Limit: window over the (created_at DESC, id DESC) order.
type CandidateQuery struct {
	Exclude       []string
	LatestBirth   time.Time
	EarliestBirth *time.Time
	SpeciesTerm   string
	Offset        int
	Limit         int
}

// GetUser fetches a user by ID, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUsers returns the users with the given ids keyed by id. Missing ids are
// simply absent from the map.
func GetUsers(ctx context.Context, db *gorm.DB, ids ...string) (map[string]domain.User, error) {
	out := make(map[string]domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.User
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, u := range rows {
		out[u.ID] = u
	}
	return out, nil
}

// UserExists reports whether a user row with id exists.
func UserExists(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Limit(1).Count(&n).Error
	return n > 0, err
}

// ListCandidates returns one window of eligible users, newest first, with
// their theriotypes and visible photos preloaded.
func ListCandidates(ctx context.Context, db *gorm.DB, q CandidateQuery) ([]domain.User, error) {
	tx := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("users.is_banned = ?", false).
		Where("users.birth_date IS NOT NULL AND users.birth_date <= ?", q.LatestBirth).
		Where("EXISTS (SELECT 1 FROM photos p WHERE p.user_id = users.id AND p.visible = ?)", true)

	if q.EarliestBirth != nil {
		tx = tx.Where("users.birth_date > ?", *q.EarliestBirth)
	}
	if len(q.Exclude) > 0 {
		tx = tx.Where("users.id NOT IN ?", q.Exclude)
	}
	if q.SpeciesTerm != "" {
		pattern := "%" + textnorm.EscapeLike(q.SpeciesTerm) + "%"
		tx = tx.Where(
			"EXISTS (SELECT 1 FROM theriotypes t WHERE t.user_id = users.id AND t.species_folded LIKE ? ESCAPE '"+textnorm.LikeEscape+"')",
			pattern,
		)
	}

	var out []domain.User
	err := tx.
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Where("visible = ?", true).Order("position ASC, id ASC")
		}).
		Preload("Theriotypes", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Order("users.created_at DESC, users.id DESC").
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&out).Error
	return out, err
}

// AddTheriotype stores a species for userID together with its folded form.
func AddTheriotype(ctx context.Context, db *gorm.DB, userID, species string) (*domain.Theriotype, error) {
	t := &domain.Theriotype{
		ID:            uuid.NewString(),
		UserID:        userID,
		Species:       species,
		SpeciesFolded: textnorm.Fold(species),
		CreatedAt:     time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}
