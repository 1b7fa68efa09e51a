package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ReportRequest is the JSON payload for reporting a user.
type ReportRequest struct {
	TargetID string `json:"targetId" binding:"required"`
	Reason   string `json:"reason" binding:"required,reportreason" example:"harassment"`
	// Details is optional free text, at most 1000 characters.
	Details string `json:"details" example:"Sent abusive messages"`
}

// ReportResponse acknowledges a filed report.
type ReportResponse struct {
	Success bool   `json:"success" example:"true"`
	ID      string `json:"id"`
}

// FileReport godoc
// @ID          fileReport
// @Summary     Report a user
// @Tags        Reports
// @Accept      json
// @Produce     json
// @Param       X-User-ID header string true "Authenticated user id"
// @Param       body      body   handlers.ReportRequest true "Report"
// @Success     201  {object}  handlers.ReportResponse
// @Failure     400  {object}  handlers.ErrorResponse "Invalid reason, details too long or self report"
// @Failure     404  {object}  handlers.ErrorResponse "Target not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /reports [post]
func (h *Handlers) FileReport(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindMessage(err))
		return
	}
	r, err := h.reports.File(c.Request.Context(), userID(c), strings.TrimSpace(req.TargetID), req.Reason, req.Details)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, ReportResponse{Success: true, ID: r.ID})
}
