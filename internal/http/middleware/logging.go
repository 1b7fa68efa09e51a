// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the correlation id, the plain access log, panic recovery
// and the request-scoped logger plumbing shared by every handler:
//
//   - RequestID() reuses a well-formed X-Request-ID or mints a UUID.
//   - Logger() writes one access line per request. Besides the transport
//     fields it records the caller (user_id), the match or target named in the
//     route, and whether the response was an idempotent replay.
//   - Recovery() turns a panic into the standard JSON 500 envelope.
//   - LoggerFrom() returns the request-scoped logger. The same logger is put on
//     the request context so services can use zerolog.Ctx(ctx).
//
// Suggested order: RequestID, Logger (or RedactingLogger), Recovery.
package middleware

import (
	"net/http"
	"regexp"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
	ctxKeyLogger    = "logger"

	// maxQueryLogLength caps the raw query bytes written to the access log.
	maxQueryLogLength = 2048
)

// requestIDPattern bounds client-supplied correlation ids so they cannot
// inject control characters or huge values into log lines.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:\-]{1,128}$`)

// RequestID propagates the caller's X-Request-ID when it is well formed and
// otherwise generates a UUIDv4. The id is echoed on the response and stored in
// the Gin context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if !requestIDPattern.MatchString(rid) {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// Logger emits the plain (unredacted) access log. Use RedactingLogger where
// identifiers must not reach the log sink.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rid, _ := c.Get(requestIDKey)

		l := log.With().
			Str("request_id", asString(rid)).
			Str("method", c.Request.Method).
			Str("path", requestPath(c)).
			Str("remote_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Str("query", truncate(c.Request.URL.RawQuery, maxQueryLogLength)).
			Int64("bytes_in", c.Request.ContentLength).
			Logger()
		attachLogger(c, l)

		c.Next()

		status := c.Writer.Status()
		ev := outcomeEvent(&l, c, status).
			Str("user_id", userIDFromCtx(c)).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int("bytes_out", c.Writer.Size())
		if id := c.Param("id"); id != "" {
			ev = ev.Str("match_id", id)
		}
		if id := c.Param("targetId"); id != "" {
			ev = ev.Str("target_id", id)
		}
		if IsReplay(c) {
			ev = ev.Bool("replayed", true)
		}
		ev.Msg("request")
	}
}

// outcomeEvent picks the level for an access line: error when handlers
// recorded gin errors or the status is 5xx, warn for 4xx, info otherwise.
func outcomeEvent(l *zerolog.Logger, c *gin.Context, status int) *zerolog.Event {
	switch {
	case len(c.Errors) > 0:
		return l.Error().Str("errors", c.Errors.String())
	case status >= 500:
		return l.Error()
	case status >= 400:
		return l.Warn()
	default:
		return l.Info()
	}
}

// requestPath is the matched route template, or the raw path on a miss.
func requestPath(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}

// Recovery logs a panic with its stack and answers with the JSON 500
// envelope, unless the handler had already started writing.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("request_id", requestIDOf(c)).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			abortJSON(c, http.StatusInternalServerError, "internal_error", "internal server error")
		}()
		c.Next()
	}
}

// abortJSON stops the chain with the error envelope used across the API:
// {"request_id", "code", "message"}.
func abortJSON(c *gin.Context, status int, code, msg string) {
	rid := requestIDOf(c)
	if rid != "" {
		c.Header(requestIDHeader, rid)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": rid,
		"code":       code,
		"message":    msg,
	})
}

// requestIDOf prefers the id RequestID stored, then the response header.
func requestIDOf(c *gin.Context) string {
	if v, ok := c.Get(requestIDKey); ok {
		if s := asString(v); s != "" {
			return s
		}
	}
	return c.Writer.Header().Get(requestIDHeader)
}

// LoggerFrom returns the request-scoped logger, or a copy of the global
// logger when none was attached.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(ctxKeyLogger); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// attachLogger stores l in the Gin context and in the request context.
func attachLogger(c *gin.Context, l zerolog.Logger) {
	c.Set(ctxKeyLogger, &l)
	c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// truncate cuts s to max bytes plus an ellipsis; max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
