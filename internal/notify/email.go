package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/tbourn/go-match-backend/internal/config"
)

const resendEndpoint = "https://api.resend.com/emails"

// StatusError is a non-2xx response from a provider.
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Body)
}

var matchEmail = template.Must(template.New("match").Parse(`<div style="font-family: 'Inter', Arial, sans-serif; max-width: 520px; margin: 0 auto; background: #0F0F1A; color: #E8E4D9; padding: 40px 32px; border-radius: 16px;">
  <h1 style="color: #FBBF24; font-size: 24px; text-align: center;">Pack Match!</h1>
  <p style="font-size: 16px; line-height: 1.6;">Hey <strong style="color: #FBBF24;">@{{.Recipient}}</strong>,</p>
  <p style="font-size: 15px; line-height: 1.6; color: #9CA3AF;">You and <strong style="color: #4ADE80;">{{.Other}}</strong> liked each other. Your paths have crossed in the wild.</p>
  <p style="text-align: center; margin: 32px 0;"><a href="{{.Link}}" style="display: inline-block; background: #4ADE80; color: #0F0F1A; font-weight: 700; padding: 14px 32px; border-radius: 12px; text-decoration: none;">Send a Message</a></p>
</div>`))

// EmailSender sends match emails through the Resend HTTP API. Other intent
// kinds are skipped.
type EmailSender struct {
	APIKey     string
	From       string
	AppURL     string
	Endpoint   string
	MaxRetries int
	HTTP       *http.Client

	// Limiter spaces consecutive requests across all workers.
	Limiter *rate.Limiter
	// Backoff returns the wait before retry n (1-based) after a 429.
	Backoff func(n int) time.Duration
}

// NewEmailSender builds a sender from config.
func NewEmailSender(cfg config.NotifyConfig) *EmailSender {
	lim := rate.NewLimiter(rate.Inf, 1)
	if cfg.EmailMinInterval > 0 {
		lim = rate.NewLimiter(rate.Every(cfg.EmailMinInterval), 1)
	}
	return &EmailSender{
		APIKey:     cfg.ResendAPIKey,
		From:       cfg.EmailFrom,
		AppURL:     cfg.AppURL,
		Endpoint:   resendEndpoint,
		MaxRetries: cfg.EmailMaxRetries,
		HTTP:       &http.Client{Timeout: 10 * time.Second},
		Limiter:    lim,
		Backoff:    jitterBackoff,
	}
}

// jitterBackoff waits 5 to 8 seconds.
func jitterBackoff(int) time.Duration {
	return 5*time.Second + time.Duration(rand.Int64N(int64(3*time.Second)))
}

func (s *EmailSender) Name() string { return "email" }

func (s *EmailSender) Send(ctx context.Context, in Intent) error {
	if in.Kind != KindMatchCreated || s.APIKey == "" || in.Recipient.Email == "" {
		return ErrSkipped
	}

	var html bytes.Buffer
	err := matchEmail.Execute(&html, map[string]string{
		"Recipient": in.Recipient.Name,
		"Other":     in.Other.Name,
		"Link":      s.AppURL + "/#/matches",
	})
	if err != nil {
		return fmt.Errorf("render match email: %w", err)
	}
	payload, err := json.Marshal(map[string]any{
		"from":    s.From,
		"to":      []string{in.Recipient.Email},
		"subject": fmt.Sprintf("You matched with %s!", in.Other.Name),
		"html":    html.String(),
	})
	if err != nil {
		return err
	}

	if s.Limiter != nil {
		if err := s.Limiter.Wait(ctx); err != nil {
			return err
		}
	}

	for attempt := 0; ; attempt++ {
		err = s.post(ctx, payload)
		var se *StatusError
		if err == nil || attempt >= s.MaxRetries || !errors.As(err, &se) || se.Status != http.StatusTooManyRequests {
			return err
		}
		wait := time.Duration(0)
		if s.Backoff != nil {
			wait = s.Backoff(attempt + 1)
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *EmailSender) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	client := s.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<12))
		return &StatusError{Provider: "resend", Status: resp.StatusCode, Body: string(b)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
