package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/config"
	"github.com/tbourn/go-match-backend/internal/repo"
)

const oneSignalEndpoint = "https://onesignal.com/api/v1/notifications"

// PushSender delivers push notifications through OneSignal to every device
// the recipient registered. Device ids OneSignal reports as invalid are
// removed.
type PushSender struct {
	DB       *gorm.DB
	AppID    string
	APIKey   string
	Endpoint string
	HTTP     *http.Client
}

// NewPushSender builds a sender from config.
func NewPushSender(db *gorm.DB, cfg config.NotifyConfig) *PushSender {
	return &PushSender{
		DB:       db,
		AppID:    cfg.OneSignalAppID,
		APIKey:   cfg.OneSignalAPIKey,
		Endpoint: oneSignalEndpoint,
		HTTP:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether both OneSignal credentials are set.
func (s *PushSender) Configured() bool { return s.AppID != "" && s.APIKey != "" }

func (s *PushSender) Name() string { return "push" }

type pushMessage struct {
	Heading string
	Content string
	Data    map[string]string
}

func pushFor(in Intent) (pushMessage, bool) {
	switch in.Kind {
	case KindMatchCreated:
		return pushMessage{
			Heading: "✨ It's a Match!",
			Content: fmt.Sprintf("You and %s liked each other!", in.Other.Name),
			Data:    map[string]string{"type": "match", "screen": "matches", "matchId": in.MatchID},
		}, true
	case KindSuperLike:
		return pushMessage{
			Heading: "🌟 Super Howl!",
			Content: fmt.Sprintf("%s sent you a Super Howl!", in.Other.Name),
			Data:    map[string]string{"type": "super_like", "screen": "discover"},
		}, true
	case KindMessageSent:
		return pushMessage{
			Heading: "💬 " + in.Other.Name,
			Content: in.Preview,
			Data:    map[string]string{"type": "message", "screen": "matches", "matchId": in.MatchID},
		}, true
	}
	return pushMessage{}, false
}

type oneSignalResponse struct {
	Errors json.RawMessage `json:"errors"`
}

// invalidPlayerIDs extracts errors.invalid_player_ids. OneSignal also sends
// errors as a plain string array, which carries no ids.
func (r oneSignalResponse) invalidPlayerIDs() []string {
	var obj struct {
		InvalidPlayerIDs []string `json:"invalid_player_ids"`
	}
	if len(r.Errors) == 0 || json.Unmarshal(r.Errors, &obj) != nil {
		return nil
	}
	return obj.InvalidPlayerIDs
}

func (s *PushSender) Send(ctx context.Context, in Intent) error {
	if !s.Configured() {
		return ErrSkipped
	}
	msg, ok := pushFor(in)
	if !ok {
		return ErrSkipped
	}

	tokens, err := repo.ListPushTokens(ctx, s.DB, in.Recipient.ID)
	if err != nil {
		return fmt.Errorf("list push tokens: %w", err)
	}
	if len(tokens) == 0 {
		return ErrSkipped
	}
	ids := make([]string, 0, len(tokens))
	for _, t := range tokens {
		ids = append(ids, t.Token)
	}

	payload, err := json.Marshal(map[string]any{
		"app_id":               s.AppID,
		"include_player_ids":   ids,
		"headings":             map[string]string{"en": msg.Heading},
		"contents":             map[string]string{"en": msg.Content},
		"data":                 msg.Data,
		"android_channel_id":   "therianr_default",
		"small_icon":           "ic_notification",
		"large_icon":           "ic_notification_large",
		"android_accent_color": "FF4ADE80",
		"priority":             10,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+s.APIKey)

	client := s.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var parsed oneSignalResponse
	_ = json.Unmarshal(body, &parsed)
	if invalid := parsed.invalidPlayerIDs(); len(invalid) > 0 {
		n, derr := repo.DeletePushTokens(ctx, s.DB, invalid)
		if derr != nil {
			log.Error().Err(derr).Msg("remove invalid push tokens")
		} else {
			log.Info().Int64("removed", n).Str("user_id", in.Recipient.ID).Msg("removed invalid push tokens")
		}
	}

	if resp.StatusCode/100 != 2 {
		return &StatusError{Provider: "onesignal", Status: resp.StatusCode, Body: string(body)}
	}
	return nil
}
