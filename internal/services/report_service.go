package services

import (
	"context"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/domain"
	"github.com/tbourn/go-match-backend/internal/repo"
)

// MaxReportDetailsRunes caps the free-text part of a report.
const MaxReportDetailsRunes = 1000

// ReportService files user reports.
type ReportService struct {
	DB      *gorm.DB
	Timeout time.Duration
}

// File stores a report by reporterID about targetID. Blank details are
// stored as NULL.
func (s *ReportService) File(ctx context.Context, reporterID, targetID, reason, details string) (*domain.Report, error) {
	tr := otel.Tracer("services/ReportService")
	ctx, span := tr.Start(ctx, "File",
		trace.WithAttributes(
			attribute.String("user.id", reporterID),
			attribute.String("target.id", targetID),
			attribute.String("report.reason", reason),
		),
	)
	defer span.End()

	if reporterID == targetID {
		return nil, ErrSelfReport
	}
	if !slices.Contains(domain.ReportReasons, reason) {
		return nil, ErrInvalidReason
	}
	details = strings.TrimSpace(details)
	if utf8.RuneCountInString(details) > MaxReportDetailsRunes {
		return nil, ErrDetailsTooLong
	}
	var dp *string
	if details != "" {
		dp = &details
	}

	var r *domain.Report
	err := bounded(ctx, s.Timeout, func(ctx context.Context) error {
		exists, err := repo.UserExists(ctx, s.DB, targetID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}
		r, err = repo.CreateReport(ctx, s.DB, reporterID, targetID, reason, dp)
		return err
	})
	return r, err
}
