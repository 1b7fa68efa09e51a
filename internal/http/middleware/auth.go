package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderUserID carries the caller identity asserted by the upstream gateway.
const HeaderUserID = "X-User-ID"

const ctxKeyUserID = "userID"

// UserExists reports whether id names a known account.
type UserExists func(ctx context.Context, id string) (bool, error)

// Authenticate trusts the gateway-asserted X-User-ID header, rejects requests
// without it or naming an unknown user with 401, and stores the id under
// "userID" for handlers, the rate limiter and the idempotency store. The
// request-scoped logger gains a user_id field.
func Authenticate(exists UserExists) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if uid == "" {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "missing "+HeaderUserID)
			return
		}
		ok, err := exists(c.Request.Context(), uid)
		if err != nil {
			LoggerFrom(c).Error().Err(err).Msg("identity lookup failed")
			abortJSON(c, http.StatusInternalServerError, "internal_error", "identity lookup failed")
			return
		}
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "unknown user")
			return
		}

		c.Set(ctxKeyUserID, uid)
		lg := LoggerFrom(c).With().Str("user_id", uid).Logger()
		c.Set(ctxKeyLogger, &lg)
		c.Request = c.Request.WithContext(lg.WithContext(c.Request.Context()))
		c.Next()
	}
}

// UserID returns the authenticated user id, or "" outside Authenticate.
func UserID(c *gin.Context) string { return userIDFromCtx(c) }
