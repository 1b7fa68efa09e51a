// Block HTTP handlers.
//
//   - POST   /blocks            (block a user; removes any match with them)
//   - DELETE /blocks/{targetId} (unblock; nothing is restored)
//   - GET    /blocks            (caller's block list, newest first)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-match-backend/internal/services"
)

// BlockRequest is the JSON payload for blocking a user.
type BlockRequest struct {
	TargetID string `json:"targetId" binding:"required" example:"0b8f6c1e-3a4d-4f7e-9c2b-5d6e7f8a9b0c"`
}

// BlockUser godoc
// @ID          blockUser
// @Summary     Block a user
// @Description Creates a directional block and deletes any match between the two users.
// @Description Blocking the same user twice returns 409.
// @Tags        Blocks
// @Accept      json
// @Produce     json
// @Param       X-User-ID header string true "Authenticated user id"
// @Param       body      body   handlers.BlockRequest true "Target"
// @Success     201  {object}  handlers.SuccessResponse
// @Failure     400  {object}  handlers.ErrorResponse "Self block"
// @Failure     404  {object}  handlers.ErrorResponse "Target not found"
// @Failure     409  {object}  handlers.ErrorResponse "Already blocked"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /blocks [post]
func (h *Handlers) BlockUser(c *gin.Context) {
	var req BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindMessage(err))
		return
	}
	if err := h.blocks.Block(c.Request.Context(), userID(c), strings.TrimSpace(req.TargetID)); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, SuccessResponse{Success: true})
}

// UnblockUser godoc
// @ID          unblockUser
// @Summary     Unblock a user
// @Tags        Blocks
// @Param       X-User-ID header string true "Authenticated user id"
// @Param       targetId  path   string true "Blocked user id"
// @Success     204  "Unblocked"
// @Failure     404  {object}  handlers.ErrorResponse "Block not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /blocks/{targetId} [delete]
func (h *Handlers) UnblockUser(c *gin.Context) {
	if err := h.blocks.Unblock(c.Request.Context(), userID(c), c.Param("targetId")); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// ListBlocks godoc
// @ID          listBlocks
// @Summary     List blocked users
// @Tags        Blocks
// @Produce     json
// @Param       X-User-ID header string true "Authenticated user id"
// @Success     200  {array}   services.BlockEntry
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /blocks [get]
func (h *Handlers) ListBlocks(c *gin.Context) {
	items, err := h.blocks.List(c.Request.Context(), userID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	if items == nil {
		items = []services.BlockEntry{}
	}
	ok(c, http.StatusOK, items)
}
