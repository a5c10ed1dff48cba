package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-report-engine/internal/models"
	"github.com/noah-isme/sma-report-engine/internal/service"
	"github.com/noah-isme/sma-report-engine/pkg/response"
)

type sessionService interface {
	Current(ctx context.Context) (*models.AcademicSession, error)
	SetCurrent(ctx context.Context, req service.SetCurrentSessionRequest) (*models.AcademicSession, error)
}

// SessionHandler exposes the current academic session.
type SessionHandler struct {
	sessions sessionService
}

func NewSessionHandler(sessions sessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Current godoc
// @Summary Current academic session
// @Tags Sessions
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/current [get]
func (h *SessionHandler) Current(c *gin.Context) {
	session, err := h.sessions.Current(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// SetCurrent godoc
// @Summary Mark a session current
// @Description Clears the marker on every other session in the same transaction.
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/current [put]
func (h *SessionHandler) SetCurrent(c *gin.Context) {
	session, err := h.sessions.SetCurrent(c.Request.Context(), service.SetCurrentSessionRequest{SessionID: c.Param("id")})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}
