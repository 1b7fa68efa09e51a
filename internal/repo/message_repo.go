// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Message model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/domain"
)

// CreateMessage inserts a new message row.
func CreateMessage(ctx context.Context, db *gorm.DB, matchID, senderID, content string) (*domain.Message, error) {
	m := &domain.Message{
		ID:        uuid.NewString(),
		MatchID:   matchID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// GetMessage fetches a message by ID within a match, or ErrNotFound.
func GetMessage(ctx context.Context, db *gorm.DB, matchID, id string) (*domain.Message, error) {
	var m domain.Message
	if err := db.WithContext(ctx).Where("id = ? AND match_id = ?", id, matchID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMessagesBefore returns up to limit messages of matchID that precede
// cursor (all messages when cursor is nil), ordered oldest to newest.
func ListMessagesBefore(ctx context.Context, db *gorm.DB, matchID string, cursor *domain.Message, limit int) ([]domain.Message, error) {
	q := db.WithContext(ctx).Where("match_id = ?", matchID)
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var out []domain.Message
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// MarkRead stamps every unread message in matchID that readerID did not send.
// It returns the number of messages marked.
func MarkRead(ctx context.Context, db *gorm.DB, matchID, readerID string, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("match_id = ? AND sender_id <> ? AND read_at IS NULL", matchID, readerID).
		Update("read_at", now.UTC())
	return res.RowsAffected, res.Error
}
