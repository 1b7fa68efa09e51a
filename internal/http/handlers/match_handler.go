// Match HTTP handlers.
//
// This file exposes REST endpoints for matches and their conversations:
//   - GET    /matches                     (matches by last activity, weak ETag)
//   - DELETE /matches/{id}                (unmatch)
//   - GET    /matches/{id}/messages       (cursor page, oldest first)
//   - POST   /matches/{id}/messages       (send; Idempotency-Key aware)
//   - PUT    /matches/{id}/messages/read  (mark the counterpart's messages read)
//
// A missing match is 404; an existing match the caller is not part of is 403.
package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-match-backend/internal/domain"
	"github.com/tbourn/go-match-backend/internal/services"
	"github.com/tbourn/go-match-backend/internal/utils"
)

//
// DTOs
//

// SendMessageRequest is the JSON payload for sending a message.
type SendMessageRequest struct {
	// Content is trimmed; it must be 1..2000 characters.
	Content string `json:"content" binding:"required" example:"Hey! I saw you're a wolf too."`
}

// MarkReadResponse reports how many messages were marked read.
type MarkReadResponse struct {
	Success bool  `json:"success" example:"true"`
	Count   int64 `json:"count" example:"3"`
}

//
// Helpers
//

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizeContent converts CRLF/CR to LF and collapses long blank runs.
// Trimming and length checks are left to the service.
func sanitizeContent(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return nlCollapseRE.ReplaceAllString(s, "\n\n")
}

// matchesETag is a weak validator over the caller's match count and latest
// activity.
func matchesETag(userID string, count int64, latestUnix int64) string {
	return fmt.Sprintf(`W/"matches:%s:%d:%d"`, userID, count, latestUnix)
}

//
// Handlers
//

// ListMatches godoc
// @ID          listMatches
// @Summary     List matches
// @Description Returns the caller's matches with the other profile, the last message and the unread count,
// @Description most recent activity first. Supports If-None-Match with a weak ETag.
// @Tags        Matches
// @Produce     json
// @Param       X-User-ID      header string true  "Authenticated user id"
// @Param       If-None-Match  header string false "ETag from a previous response"
// @Success     200  {array}   services.MatchSummary
// @Success     304  "Not modified"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthenticated"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /matches [get]
func (h *Handlers) ListMatches(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)

	// ETag pre-check (best effort).
	if count, latest, err := h.matches.Stats(ctx, uid); err == nil {
		var ts int64
		if latest != nil {
			ts = latest.UnixNano()
		}
		etag := matchesETag(uid, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, err := h.matches.List(ctx, uid)
	if err != nil {
		failErr(c, err)
		return
	}
	if items == nil {
		items = []services.MatchSummary{}
	}
	ok(c, http.StatusOK, items)
}

// Unmatch godoc
// @ID          unmatch
// @Summary     Unmatch
// @Description Deletes the match and its conversation.
// @Tags        Matches
// @Param       X-User-ID header string true "Authenticated user id"
// @Param       id        path   string true "Match ID" format(uuid)
// @Success     204  "Deleted"
// @Failure     403  {object}  handlers.ErrorResponse "Not a participant"
// @Failure     404  {object}  handlers.ErrorResponse "Match not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /matches/{id} [delete]
func (h *Handlers) Unmatch(c *gin.Context) {
	if err := h.matches.Unmatch(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// ListMessages godoc
// @ID          listMessages
// @Summary     List messages in a match
// @Description Returns up to limit messages older than cursor, in chronological order.
// @Tags        Messages
// @Produce     json
// @Param       X-User-ID header string true  "Authenticated user id"
// @Param       id        path   string true  "Match ID" format(uuid)
// @Param       cursor    query  string false "Message ID to page before"
// @Param       limit     query  int    false "Page size" minimum(1) maximum(100) default(50)
// @Success     200  {array}   domain.Message
// @Failure     400  {object}  handlers.ErrorResponse "Invalid cursor"
// @Failure     403  {object}  handlers.ErrorResponse "Not a participant"
// @Failure     404  {object}  handlers.ErrorResponse "Match not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /matches/{id}/messages [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	limit := utils.PageLimit(c.Query("limit"), services.DefaultMessageLimit, services.MaxMessageLimit)
	msgs, err := h.matches.Messages(c.Request.Context(), userID(c), c.Param("id"), strings.TrimSpace(c.Query("cursor")), limit)
	if err != nil {
		failErr(c, err)
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	ok(c, http.StatusOK, msgs)
}

// SendMessage godoc
// @ID          sendMessage
// @Summary     Send a message
// @Description Appends a message to the match and notifies the other participant.
// @Description Supports idempotency via the Idempotency-Key header (same key, same result).
// @Tags        Messages
// @Accept      json
// @Produce     json
// @Param       X-User-ID        header string true  "Authenticated user id"
// @Param       Idempotency-Key  header string false "Idempotency key for safe retries"
// @Param       id               path   string true  "Match ID" format(uuid)
// @Param       body             body   handlers.SendMessageRequest true "Message"
// @Success     201  {object}  domain.Message
// @Failure     400  {object}  handlers.ErrorResponse "Empty or too long"
// @Failure     403  {object}  handlers.ErrorResponse "Not a participant"
// @Failure     404  {object}  handlers.ErrorResponse "Match not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /matches/{id}/messages [post]
func (h *Handlers) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content is required")
		return
	}
	m, err := h.matches.Send(c.Request.Context(), userID(c), c.Param("id"), sanitizeContent(req.Content))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, m)
}

// MarkRead godoc
// @ID          markRead
// @Summary     Mark messages read
// @Description Marks the other participant's unread messages in the match as read.
// @Tags        Messages
// @Produce     json
// @Param       X-User-ID header string true "Authenticated user id"
// @Param       id        path   string true "Match ID" format(uuid)
// @Success     200  {object}  handlers.MarkReadResponse
// @Failure     403  {object}  handlers.ErrorResponse "Not a participant"
// @Failure     404  {object}  handlers.ErrorResponse "Match not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /matches/{id}/messages/read [put]
func (h *Handlers) MarkRead(c *gin.Context) {
	n, err := h.matches.MarkRead(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, MarkReadResponse{Success: true, Count: n})
}
