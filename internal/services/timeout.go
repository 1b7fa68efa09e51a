package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/repo"
)

// DefaultStorageTimeout bounds a storage call when no timeout is configured.
const DefaultStorageTimeout = 5 * time.Second

// bounded runs fn under a deadline of d (DefaultStorageTimeout when d <= 0).
// A deadline hit is reported as ErrStorageTimeout.
func bounded(ctx context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	if d <= 0 {
		d = DefaultStorageTimeout
	}
	tctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	err := fn(tctx)
	if err != nil && errors.Is(tctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w: %v", ErrStorageTimeout, err)
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, repo.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// loggerFrom returns the request-scoped logger when one is attached to ctx,
// otherwise the global logger.
func loggerFrom(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}
