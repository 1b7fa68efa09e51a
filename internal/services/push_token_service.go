package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/repo"
)

// PushPlatforms lists the accepted device platforms.
var PushPlatforms = []string{"android", "ios", "web"}

// PushTokenService maintains the device registry used by push delivery.
type PushTokenService struct {
	DB      *gorm.DB
	Timeout time.Duration
}

// Register adds or refreshes a device token for userID.
func (s *PushTokenService) Register(ctx context.Context, userID, token, platform string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	platform = strings.ToLower(strings.TrimSpace(platform))
	valid := false
	for _, p := range PushPlatforms {
		if p == platform {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidPlatform
	}
	return bounded(ctx, s.Timeout, func(ctx context.Context) error {
		return repo.UpsertPushToken(ctx, s.DB, userID, token, platform)
	})
}

// Remove forgets a device token. Unknown tokens are not an error.
func (s *PushTokenService) Remove(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	return bounded(ctx, s.Timeout, func(ctx context.Context) error {
		_, err := repo.DeletePushToken(ctx, s.DB, userID, token)
		return err
	})
}
