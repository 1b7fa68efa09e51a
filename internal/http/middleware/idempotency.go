// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements idempotency support for unsafe HTTP methods (e.g., POST).
// It validates an Idempotency-Key request header and, when a store is wired,
// records the first successful response per (user, scope, key). A retry with
// the same key receives the recorded status and body with
// `Idempotency-Replayed: true`, without reaching the handler or the rate
// limiter.
//
// Scope is the matched route plus its :id parameter when present, so the same
// key may be reused safely across different matches.
package middleware

import (
	"bytes"
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the canonical request header that clients use to
// convey an idempotency key for unsafe operations (e.g., POST).
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotencyReplayed marks a response served from the store.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay" // bool: true when a stored replay was served
	ctxKeyRateBypass = "rate.bypass" // bool: true to skip rate limiting
)

// GetIdempotencyKey returns the validated idempotency key stored in the Gin
// context by IdempotencyValidator. The second return value indicates presence.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether the response was served from the idempotency store.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// StoredResponse is a previously produced response.
type StoredResponse struct {
	Status int
	Body   []byte
}

// IdempotencyStore persists responses per (userID, scope, key). Lookup returns
// (nil, nil) when nothing usable is stored.
type IdempotencyStore interface {
	Lookup(ctx context.Context, userID, scope, key string, now time.Time) (*StoredResponse, error)
	Save(ctx context.Context, userID, scope, key string, status int, body []byte) error
}

// IdempotencyOptions configures header validation behavior for
// IdempotencyValidator.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. If nil, a conservative RFC7230-like
	// token pattern is used: ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
}

// bodyRecorder tees the response body so it can be stored after the handler.
type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// IdempotencyValidator validates the Idempotency-Key header (if present),
// replays a stored response when one exists, and otherwise stores the 2xx
// response the handler produces.
//
// Behavior:
//   - If header is absent or the method is safe: the middleware is a no-op.
//   - If header fails validation: responds 400.
//   - Lookup and save failures never block normal processing.
//
// Place it after Authenticate so the user id is known.
func IdempotencyValidator(opts IdempotencyOptions, store IdempotencyStore) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || !unsafeMethod(c.Request.Method) {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			abortJSON(c, http.StatusBadRequest, "bad_request", "invalid Idempotency-Key")
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if store == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		uid := userIDFromCtx(c)
		scope := idempotencyScope(c)

		if prev, err := store.Lookup(ctx, uid, scope, key, time.Now().UTC()); err != nil {
			LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup failed")
		} else if prev != nil {
			c.Set(ctxKeyIdemReplay, true)
			c.Set(ctxKeyRateBypass, true)
			httpIdemReplays.WithLabelValues(routeLabel(c)).Inc()
			c.Header(HeaderIdempotencyReplayed, "true")
			c.Data(prev.Status, "application/json; charset=utf-8", prev.Body)
			c.Abort()
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		status := rec.Status()
		if status < 200 || status >= 300 || c.IsAborted() {
			return
		}
		if err := store.Save(ctx, uid, scope, key, status, rec.buf.Bytes()); err != nil {
			LoggerFrom(c).Warn().Err(err).Msg("idempotency save failed")
		}
	}
}

func unsafeMethod(m string) bool {
	switch m {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// idempotencyScope is the route template, qualified by :id when present.
func idempotencyScope(c *gin.Context) string {
	scope := c.FullPath()
	if scope == "" {
		scope = c.Request.URL.Path
	}
	if id := c.Param("id"); id != "" {
		scope += "#" + id
	}
	return scope
}

// userIDFromCtx extracts the user identifier set by Authenticate.
func userIDFromCtx(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyUserID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
