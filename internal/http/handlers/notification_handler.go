package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterTokenRequest registers a device for push delivery.
type RegisterTokenRequest struct {
	Token    string `json:"token" binding:"required" example:"9f1c2d3e-onesignal-player-id"`
	Platform string `json:"platform" binding:"required,platform" example:"ios"`
}

// RemoveTokenRequest unregisters a device.
type RemoveTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// RegisterPushToken godoc
// @ID          registerPushToken
// @Summary     Register a push token
// @Description Upserts the (user, token) registration and refreshes its platform.
// @Tags        Notifications
// @Accept      json
// @Produce     json
// @Param       X-User-ID header string true "Authenticated user id"
// @Param       body      body   handlers.RegisterTokenRequest true "Device"
// @Success     200  {object}  handlers.SuccessResponse
// @Failure     400  {object}  handlers.ErrorResponse "Missing token or invalid platform"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /notifications/register-token [post]
func (h *Handlers) RegisterPushToken(c *gin.Context) {
	var req RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindMessage(err))
		return
	}
	if err := h.push.Register(c.Request.Context(), userID(c), req.Token, req.Platform); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, SuccessResponse{Success: true})
}

// RemovePushToken godoc
// @ID          removePushToken
// @Summary     Remove a push token
// @Tags        Notifications
// @Accept      json
// @Produce     json
// @Param       X-User-ID header string true "Authenticated user id"
// @Param       body      body   handlers.RemoveTokenRequest true "Device"
// @Success     200  {object}  handlers.SuccessResponse
// @Failure     400  {object}  handlers.ErrorResponse "Missing token"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /notifications/remove-token [post]
func (h *Handlers) RemovePushToken(c *gin.Context) {
	var req RemoveTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindMessage(err))
		return
	}
	if err := h.push.Remove(c.Request.Context(), userID(c), req.Token); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, SuccessResponse{Success: true})
}
