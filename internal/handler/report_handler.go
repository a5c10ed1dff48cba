package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-report-engine/internal/dto"
	appErrors "github.com/noah-isme/sma-report-engine/pkg/errors"
	"github.com/noah-isme/sma-report-engine/pkg/response"
)

type attendanceReportService interface {
	Sheet(ctx context.Context, classID string, date time.Time) (*dto.AttendanceSheet, error)
}

type examReportService interface {
	AwardList(ctx context.Context, examID string) (*dto.AwardList, error)
}

// ReportHandler exposes attendance sheets and award lists.
type ReportHandler struct {
	attendance attendanceReportService
	exams      examReportService
	renderer   documentRenderer
}

// NewReportHandler constructs handler.
func NewReportHandler(attendance attendanceReportService, exams examReportService, renderer documentRenderer) *ReportHandler {
	return &ReportHandler{attendance: attendance, exams: exams, renderer: renderer}
}

// AttendanceSheet godoc
// @Summary Daily attendance sheet
// @Tags Reports
// @Produce json
// @Param id path string true "Class ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param format query string false "json, csv, pdf or xlsx"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /classes/{id}/attendance [get]
func (h *ReportHandler) AttendanceSheet(c *gin.Context) {
	raw := c.Query("date")
	if raw == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date required"))
		return
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
		return
	}
	sheet, err := h.attendance.Sheet(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondDocument(c, h.renderer, sheet)
}

// AwardList godoc
// @Summary Exam award list
// @Tags Reports
// @Produce json
// @Param id path string true "Exam ID"
// @Param format query string false "json, csv, pdf or xlsx"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exams/{id}/award-list [get]
func (h *ReportHandler) AwardList(c *gin.Context) {
	list, err := h.exams.AwardList(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondDocument(c, h.renderer, list)
}
