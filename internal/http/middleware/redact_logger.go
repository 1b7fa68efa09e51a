package middleware

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RedactOptions configures RedactingLogger.
type RedactOptions struct {
	// MaskHeaders are replaced with "[REDACTED]" in addition to
	// Authorization, Cookie and Set-Cookie. Matching is case-insensitive.
	MaskHeaders []string
}

// Profile and match ids are UUIDs, contact data comes as emails and phone
// numbers. UUIDs are replaced first so the loose phone pattern never sees
// their digit groups.
var (
	redactUUID  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	redactEmail = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	redactPhone = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

func scrub(s string) string {
	if s == "" {
		return s
	}
	s = redactUUID.ReplaceAllString(s, "[REDACTED:id]")
	s = redactEmail.ReplaceAllString(s, "[REDACTED:email]")
	return redactPhone.ReplaceAllString(s, "[REDACTED:phone]")
}

// headerMask is the lowercased set of fully masked header names.
type headerMask map[string]struct{}

func newHeaderMask(extra []string) headerMask {
	m := headerMask{"authorization": {}, "cookie": {}, "set-cookie": {}}
	for _, h := range extra {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			m[h] = struct{}{}
		}
	}
	return m
}

func (m headerMask) apply(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, masked := m[strings.ToLower(k)]; masked {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = scrub(strings.Join(vv, ", "))
	}
	return out
}

// RedactingLogger is the access log used in production. Bodies are never
// logged. The query string and header values are scrubbed of UUIDs, emails
// and phone numbers, and masked headers are dropped entirely, so neither the
// caller's id nor the match or target in the URL reaches the sink. The route
// template (for example /matches/:id) is logged instead of the raw path.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	mask := newHeaderMask(opts.MaskHeaders)

	return func(c *gin.Context) {
		start := time.Now()
		query := scrub(c.Request.URL.RawQuery)
		headers := mask.apply(c.Request.Header)

		rid, _ := c.Get(requestIDKey)
		attachLogger(c, log.With().Str("request_id", asString(rid)).Logger())

		c.Next()

		reqID := c.Writer.Header().Get(requestIDHeader)
		if reqID == "" {
			reqID = c.GetHeader(requestIDHeader)
		}
		path := c.FullPath()
		if path == "" {
			// Unmatched paths may embed ids.
			path = scrub(c.Request.URL.Path)
		}

		status := c.Writer.Status()
		ev := outcomeEvent(&log.Logger, c, status).
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", headers)
		if IsReplay(c) {
			ev = ev.Bool("replayed", true)
		}
		ev.Msg("http_request")
	}
}
