package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-report-engine/internal/assembly"
	"github.com/noah-isme/sma-report-engine/internal/dto"
	appErrors "github.com/noah-isme/sma-report-engine/pkg/errors"
	"github.com/noah-isme/sma-report-engine/pkg/export"
)

// RenderedDocument is a document encoded for download.
type RenderedDocument struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService turns document view models into tabular datasets and renders
// them as CSV, PDF or XLSX.
type ExportService struct {
	renderers map[export.Format]export.Renderer
	logger    *zap.Logger
	now       func() time.Time
}

func NewExportService(renderers map[export.Format]export.Renderer, logger *zap.Logger) *ExportService {
	if renderers == nil {
		renderers = export.Renderers()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{renderers: renderers, logger: logger, now: time.Now}
}

// Render encodes doc in format. Only tabular documents are supported.
func (s *ExportService) Render(doc interface{}, format export.Format) (*RenderedDocument, error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("format %q is not downloadable", format))
	}
	dataset, name, err := buildDataset(doc)
	if err != nil {
		return nil, err
	}
	body, err := renderer.Render(dataset)
	if err != nil {
		s.logger.Error("render document failed", zap.String("document", name), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render document")
	}
	return &RenderedDocument{
		Filename:    fmt.Sprintf("%s_%s.%s", name, s.now().UTC().Format("20060102_150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func buildDataset(doc interface{}) (export.Dataset, string, error) {
	switch d := doc.(type) {
	case *dto.AwardList:
		return awardListDataset(*d), "award_list_" + sanitizeFilename(d.ExamName), nil
	case *dto.FeeReport:
		return feeReportDataset(*d), "fee_report_" + sanitizeFilename(d.ClassName), nil
	case *dto.AttendanceSheet:
		return attendanceDataset(*d), "attendance_" + sanitizeFilename(d.ClassName) + "_" + d.Date, nil
	case *dto.ClassRoster:
		return rosterDataset(*d), "roster_" + sanitizeFilename(d.ClassName), nil
	default:
		return export.Dataset{}, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("document %T cannot be exported", doc))
	}
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "\"", "")
	result := strings.ToLower(replacer.Replace(raw))
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

func passingMarks(v *float64) string {
	if v == nil {
		return assembly.Dash
	}
	return fmt.Sprintf("%g", *v)
}

func awardListDataset(list dto.AwardList) export.Dataset {
	headers := []string{"Roll No", "Student No", "Name", "Marks", "Percentage", "Result", "Remarks"}
	rows := make([]map[string]string, 0, len(list.Rows))
	for _, r := range list.Rows {
		rows = append(rows, map[string]string{
			"Roll No":    strconv.Itoa(r.RollNumber),
			"Student No": r.StudentNumber,
			"Name":       r.StudentName,
			"Marks":      r.Marks,
			"Percentage": r.Percentage,
			"Result":     r.Result,
			"Remarks":    r.Remarks,
		})
	}
	sum := list.Summary
	return export.Dataset{
		Title: "Award List - " + list.ExamName,
		Lines: []string{
			"Class: " + list.ClassName,
			"Subject: " + list.Subject,
			"Session: " + list.SessionName,
			"Date: " + list.ExamDate,
			fmt.Sprintf("Max marks: %g  Passing marks: %s", list.MaxMarks, passingMarks(list.PassingMarks)),
		},
		Headers: headers,
		Rows:    rows,
		Footer: []string{
			fmt.Sprintf("Students: %d  Appeared: %d  Absent: %d", sum.TotalStudents, sum.Appeared, sum.Absent),
			fmt.Sprintf("Passed: %d  Failed: %d  Pass rate: %s", sum.Passed, sum.Failed, pct(sum.PassRate)),
			fmt.Sprintf("Average: %s  Highest: %s  Lowest: %s", pct(sum.AveragePercentage), sum.HighestMarks, sum.LowestMarks),
		},
	}
}

func feeReportDataset(report dto.FeeReport) export.Dataset {
	headers := []string{"Student No", "Name", "Fee", "Total", "Discount", "Paid", "Balance", "Status"}
	rows := make([]map[string]string, 0, len(report.Rows))
	for _, r := range report.Rows {
		rows = append(rows, map[string]string{
			"Student No": r.StudentNumber,
			"Name":       r.StudentName,
			"Fee":        r.FeeName,
			"Total":      money(r.Total),
			"Discount":   money(r.Discount),
			"Paid":       money(r.Paid),
			"Balance":    money(r.Balance),
			"Status":     r.Status,
		})
	}
	sum := report.Summary
	return export.Dataset{
		Title:   "Fee Report",
		Lines:   []string{"Class: " + report.ClassName},
		Headers: headers,
		Rows:    rows,
		Footer: []string{
			fmt.Sprintf("Records: %d  Paid: %d  Pending: %d", sum.TotalRecords, sum.PaidCount, sum.PendingCount),
			fmt.Sprintf("Total: %s  Discount: %s  Collected: %s  Balance: %s", money(sum.TotalFees), money(sum.TotalDiscount), money(sum.TotalPaid), money(sum.Balance)),
			"Collection: " + pct(sum.CollectionPct),
		},
	}
}

func attendanceDataset(sheet dto.AttendanceSheet) export.Dataset {
	headers := []string{"Student No", "Name", "Status", "Remarks"}
	rows := make([]map[string]string, 0, len(sheet.Rows))
	for _, r := range sheet.Rows {
		rows = append(rows, map[string]string{
			"Student No": r.StudentNumber,
			"Name":       r.StudentName,
			"Status":     r.Status,
			"Remarks":    r.Remarks,
		})
	}
	sum := sheet.Summary
	return export.Dataset{
		Title:   "Attendance Sheet",
		Lines:   []string{"Class: " + sheet.ClassName, "Date: " + sheet.Date},
		Headers: headers,
		Rows:    rows,
		Footer: []string{
			fmt.Sprintf("Total: %d  Present: %d  Absent: %d  Late: %d  Excused: %d", sum.Total, sum.Present, sum.Absent, sum.Late, sum.Excused),
			"Attendance rate: " + pct(sum.AttendanceRate),
		},
	}
}

func rosterDataset(roster dto.ClassRoster) export.Dataset {
	headers := []string{"Roll No", "Student No", "Name"}
	rows := make([]map[string]string, 0, len(roster.Students))
	for _, r := range roster.Students {
		rows = append(rows, map[string]string{
			"Roll No":    strconv.Itoa(r.RollNumber),
			"Student No": r.StudentNumber,
			"Name":       r.StudentName,
		})
	}
	return export.Dataset{
		Title:   "Class Roster",
		Lines:   []string{"Class: " + roster.ClassName},
		Headers: headers,
		Rows:    rows,
		Footer:  []string{fmt.Sprintf("Total students: %d", roster.Total)},
	}
}
