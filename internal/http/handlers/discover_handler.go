// Discovery HTTP handlers.
//
// This file exposes the candidate feed and the swipe endpoints:
//   - GET  /discover              (list eligible candidates)
//   - GET  /discover/swipe-count  (today's swipe allowance)
//   - POST /discover/swipe        (record a decision, report a new match)
//
// Query filters are lenient: malformed values are ignored rather than
// rejected, so stale clients keep getting a feed.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-match-backend/internal/domain"
	"github.com/tbourn/go-match-backend/internal/services"
	"github.com/tbourn/go-match-backend/internal/utils"
)

const maxAgeBound = 150

//
// DTOs
//

// SwipeRequest is the JSON payload for recording a swipe.
type SwipeRequest struct {
	// TargetID is the user being swiped on.
	TargetID string `json:"targetId" binding:"required" example:"0b8f6c1e-3a4d-4f7e-9c2b-5d6e7f8a9b0c"`
	// Type is like, pass or super_like.
	Type string `json:"type" binding:"required,swipetype" example:"like"`
}

// ParseCandidateFilter reads discovery filters from the query string.
//
//   - theriotype: trimmed substring, empty means no filter
//   - minAge/maxAge: non-negative integers clamped to [0, 150]
//   - maxDistance: positive kilometres
//   - limit: default 20, capped at 50
func ParseCandidateFilter(c *gin.Context) services.CandidateFilter {
	return services.CandidateFilter{
		Theriotype:    strings.TrimSpace(c.Query("theriotype")),
		MinAge:        utils.ClampPtr(utils.OptionalInt(c.Query("minAge")), 0, maxAgeBound),
		MaxAge:        utils.ClampPtr(utils.OptionalInt(c.Query("maxAge")), 0, maxAgeBound),
		MaxDistanceKm: utils.OptionalPositiveFloat(c.Query("maxDistance")),
		Limit:         utils.PageLimit(c.Query("limit"), services.DefaultCandidateLimit, services.MaxCandidateLimit),
	}
}

//
// Handlers
//

// ListCandidates godoc
// @ID          listCandidates
// @Summary     List discovery candidates
// @Description Returns profiles the caller has not swiped on, excluding blocked, banned and underage users.
// @Description Newest profiles first.
// @Tags        Discovery
// @Produce     json
//
// @Param       X-User-ID    header string  true  "Authenticated user id"
// @Param       theriotype   query  string  false "Theriotype substring (case and accent insensitive)"
// @Param       minAge       query  int     false "Minimum age"  minimum(0) maximum(150)
// @Param       maxAge       query  int     false "Maximum age"  minimum(0) maximum(150)
// @Param       maxDistance  query  number  false "Maximum distance in km"
// @Param       limit        query  int     false "Page size"    minimum(1) maximum(50) default(20)
//
// @Success     200  {array}   domain.User
// @Failure     401  {object}  handlers.ErrorResponse "Unauthenticated"
// @Failure     503  {object}  handlers.ErrorResponse "Storage timeout"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /discover [get]
func (h *Handlers) ListCandidates(c *gin.Context) {
	users, err := h.discovery.Candidates(c.Request.Context(), userID(c), ParseCandidateFilter(c))
	if err != nil {
		failErr(c, err)
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	ok(c, http.StatusOK, users)
}

// SwipeQuota godoc
// @ID          swipeQuota
// @Summary     Today's swipe allowance
// @Description Swipes are counted since local midnight of the server's quota timezone.
// @Tags        Discovery
// @Produce     json
// @Param       X-User-ID header string true "Authenticated user id"
// @Success     200  {object}  services.Quota
// @Failure     401  {object}  handlers.ErrorResponse "Unauthenticated"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /discover/swipe-count [get]
func (h *Handlers) SwipeQuota(c *gin.Context) {
	q, err := h.swipes.Quota(c.Request.Context(), userID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, q)
}

// Swipe godoc
// @ID          swipe
// @Summary     Record a swipe
// @Description Upserts the caller's decision on the target. A positive swipe that completes a mutual pair
// @Description returns the match id. Supports Idempotency-Key for safe retries.
// @Tags        Discovery
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header string  true  "Authenticated user id"
// @Param       Idempotency-Key  header string  false "Idempotency key for safe retries"
// @Param       body             body   handlers.SwipeRequest true "Swipe"
//
// @Success     200  {object}  services.SwipeResult
// @Failure     400  {object}  handlers.ErrorResponse "Invalid type or self swipe"
// @Failure     404  {object}  handlers.ErrorResponse "Target not found"
// @Failure     429  {object}  handlers.ErrorResponse "Daily limit reached"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /discover/swipe [post]
func (h *Handlers) Swipe(c *gin.Context) {
	var req SwipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindMessage(err))
		return
	}
	res, err := h.swipes.Record(c.Request.Context(), userID(c), strings.TrimSpace(req.TargetID), req.Type)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}
