package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/domain"
)

// CreateReport stores a report filed by reporterID against targetID.
func CreateReport(ctx context.Context, db *gorm.DB, reporterID, targetID, reason string, details *string) (*domain.Report, error) {
	r := &domain.Report{
		ID:         uuid.NewString(),
		ReporterID: reporterID,
		TargetID:   targetID,
		Reason:     reason,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}
