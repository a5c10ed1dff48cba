package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-report-engine/internal/dto"
	"github.com/noah-isme/sma-report-engine/internal/middleware"
	"github.com/noah-isme/sma-report-engine/pkg/response"
)

type rosterService interface {
	Roster(ctx context.Context, classID string) (*dto.ClassRoster, error)
	RollNumber(ctx context.Context, studentID string) (*dto.RollNumberResponse, error)
	IDCard(ctx context.Context, studentID string) (*dto.IDCard, error)
	ClassIDCards(ctx context.Context, classID string) ([]dto.IDCard, error)
	RollSlips(ctx context.Context, classID, sessionID string) ([]dto.RollSlip, error)
}

// RosterHandler exposes roll-number based documents.
type RosterHandler struct {
	roster   rosterService
	renderer documentRenderer
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(roster rosterService, renderer documentRenderer) *RosterHandler {
	return &RosterHandler{roster: roster, renderer: renderer}
}

// Roster godoc
// @Summary Ordered class roster
// @Description Active students of a class in roll-number order.
// @Tags Rosters
// @Produce json
// @Produce text/csv
// @Param id path string true "Class ID"
// @Param format query string false "json, csv, pdf or xlsx"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id}/roster [get]
func (h *RosterHandler) Roster(c *gin.Context) {
	roster, err := h.roster.Roster(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondDocument(c, h.renderer, roster)
}

// RollNumber godoc
// @Summary Roll number of a student
// @Tags Rosters
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/roll-number [get]
func (h *RosterHandler) RollNumber(c *gin.Context) {
	res, err := h.roster.RollNumber(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil, middleware.ExtractMeta(c))
}

// IDCard godoc
// @Summary Student identity card
// @Tags Rosters
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/{id}/id-card [get]
func (h *RosterHandler) IDCard(c *gin.Context) {
	card, err := h.roster.IDCard(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, card, nil, middleware.ExtractMeta(c))
}

// ClassIDCards godoc
// @Summary Identity cards of a class
// @Tags Rosters
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id}/id-cards [get]
func (h *RosterHandler) ClassIDCards(c *gin.Context) {
	cards, err := h.roster.ClassIDCards(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(cards))
	response.JSON(c, http.StatusOK, cards, nil, middleware.ExtractMeta(c))
}

// RollSlips godoc
// @Summary Roll-number slips of a class
// @Tags Rosters
// @Produce json
// @Param id path string true "Class ID"
// @Param sessionId query string false "Session ID, defaults to the current session"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes/{id}/roll-slips [get]
func (h *RosterHandler) RollSlips(c *gin.Context) {
	slips, err := h.roster.RollSlips(c.Request.Context(), c.Param("id"), c.Query("sessionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(slips))
	response.JSON(c, http.StatusOK, slips, nil, middleware.ExtractMeta(c))
}
