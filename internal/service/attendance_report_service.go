package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-report-engine/internal/assembly"
	"github.com/noah-isme/sma-report-engine/internal/dto"
	"github.com/noah-isme/sma-report-engine/internal/models"
	appErrors "github.com/noah-isme/sma-report-engine/pkg/errors"
)

// AttendanceReportService assembles daily attendance sheets.
type AttendanceReportService struct {
	f *fetcher
}

func NewAttendanceReportService(gw Gateway, opts AssemblyOptions, metrics *MetricsService, logger *zap.Logger) *AttendanceReportService {
	return &AttendanceReportService{f: newFetcher(gw, opts, metrics, logger)}
}

// Sheet returns the attendance of a class on date. Rows follow the recorded
// order; students missing from the store print as N/A.
func (s *AttendanceReportService) Sheet(ctx context.Context, classID string, date time.Time) (*dto.AttendanceSheet, error) {
	if err := requireID("class id", classID); err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date is required")
	}
	ctx, cancel := s.f.scope(ctx)
	defer cancel()
	defer s.f.observe("attendance_sheet", time.Now())

	records, err := fetch(ctx, s.f, "attendance", "class_id="+classID+" date="+date.Format("2006-01-02"), func(ctx context.Context) ([]models.AttendanceRecord, error) {
		return s.f.gw.Attendance.ListByClassDate(ctx, classID, date)
	})
	if err != nil {
		return nil, err
	}

	studentIDs := make([]string, 0, len(records))
	for _, r := range records {
		studentIDs = append(studentIDs, r.StudentID)
	}
	students, err := fetch(ctx, s.f, "student", idFilter("id", studentIDs), func(ctx context.Context) ([]models.Student, error) {
		return s.f.gw.Students.ListByIDs(ctx, studentIDs)
	})
	if err != nil {
		return nil, err
	}

	dir, err := s.f.directory(ctx, students, related{classIDs: []string{classID}})
	if err != nil {
		return nil, err
	}
	class := dir.Class(classID)
	if class == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	rows, err := dir.Attendance(records)
	if err != nil {
		return nil, s.f.assemblyError(err)
	}
	sheet := assembly.EmitAttendanceSheet(classID, class, date, rows, assembly.SummarizeAttendance(rows))
	return &sheet, nil
}
