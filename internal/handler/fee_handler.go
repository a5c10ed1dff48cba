package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-report-engine/internal/dto"
	"github.com/noah-isme/sma-report-engine/internal/middleware"
	"github.com/noah-isme/sma-report-engine/internal/service"
	appErrors "github.com/noah-isme/sma-report-engine/pkg/errors"
	"github.com/noah-isme/sma-report-engine/pkg/response"
)

type feeService interface {
	ClassReport(ctx context.Context, classID string) (*dto.FeeReport, error)
	Invoice(ctx context.Context, feeRecordID string) (*dto.Invoice, error)
	SendReminders(ctx context.Context, classID string, req service.ReminderRequest) (*dto.ReminderResult, error)
}

// FeeHandler exposes fee reports, invoices and reminders.
type FeeHandler struct {
	fees     feeService
	renderer documentRenderer
}

// NewFeeHandler constructs the handler.
func NewFeeHandler(fees feeService, renderer documentRenderer) *FeeHandler {
	return &FeeHandler{fees: fees, renderer: renderer}
}

// ClassReport godoc
// @Summary Class fee report
// @Tags Fees
// @Produce json
// @Param id path string true "Class ID"
// @Param format query string false "json, csv, pdf or xlsx"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id}/fee-report [get]
func (h *FeeHandler) ClassReport(c *gin.Context) {
	report, err := h.fees.ClassReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondDocument(c, h.renderer, report)
}

// Invoice godoc
// @Summary Fee invoice
// @Tags Fees
// @Produce json
// @Param id path string true "Fee record ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /fee-records/{id}/invoice [get]
func (h *FeeHandler) Invoice(c *gin.Context) {
	invoice, err := h.fees.Invoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invoice, nil, middleware.ExtractMeta(c))
}

// SendReminders godoc
// @Summary Send fee reminders
// @Description Notifies students of the class with an outstanding balance. The body is optional.
// @Tags Fees
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.ReminderRequest false "Reminder options"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /classes/{id}/fee-reminders [post]
func (h *FeeHandler) SendReminders(c *gin.Context) {
	var req service.ReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid reminder payload"))
		return
	}
	result, err := h.fees.SendReminders(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, result, nil, middleware.ExtractMeta(c))
}
