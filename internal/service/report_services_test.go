package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-report-engine/internal/models"
	appErrors "github.com/noah-isme/sma-report-engine/pkg/errors"
)

func TestAttendanceReportServiceSheet(t *testing.T) {
	svc := NewAttendanceReportService(newSchool().gateway(), AssemblyOptions{}, nil, zap.NewNop())

	sheet, err := svc.Sheet(context.Background(), "c1", schoolDay)
	require.NoError(t, err)
	assert.Equal(t, "2024-10-07", sheet.Date)
	assert.Equal(t, "Grade 7 - A", sheet.ClassName)
	require.Len(t, sheet.Rows, 3)

	assert.Equal(t, "Zara", sheet.Rows[0].StudentName)
	assert.Equal(t, "present", sheet.Rows[0].Status)
	assert.Equal(t, "-", sheet.Rows[0].Remarks)
	assert.Equal(t, "Bilal", sheet.Rows[1].StudentName)
	assert.Equal(t, "sick", sheet.Rows[1].Remarks)
	assert.Equal(t, "late", sheet.Rows[2].Status)

	assert.Equal(t, 3, sheet.Summary.Total)
	assert.Equal(t, 1, sheet.Summary.Present)
	assert.Equal(t, 1, sheet.Summary.Absent)
	assert.Equal(t, 1, sheet.Summary.Late)
	assert.Equal(t, 66.7, sheet.Summary.AttendanceRate)
}

func TestAttendanceReportServiceUnknownStudent(t *testing.T) {
	store := newSchool()
	store.attendance = append(store.attendance, models.AttendanceRecord{
		ID: "a9", StudentID: "s-gone", ClassID: "c1", Date: schoolDay, Status: models.AttendanceStatusExcused,
	})
	svc := NewAttendanceReportService(store.gateway(), AssemblyOptions{}, nil, zap.NewNop())

	sheet, err := svc.Sheet(context.Background(), "c1", schoolDay)
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 4)
	assert.Equal(t, "N/A", sheet.Rows[3].StudentName)
	assert.Equal(t, "N/A", sheet.Rows[3].StudentNumber)
	assert.Equal(t, 1, sheet.Summary.Excused)
}

func TestAttendanceReportServiceValidation(t *testing.T) {
	svc := NewAttendanceReportService(newSchool().gateway(), AssemblyOptions{}, nil, zap.NewNop())

	_, err := svc.Sheet(context.Background(), "c1", time.Time{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Sheet(context.Background(), "", schoolDay)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Sheet(context.Background(), "c9", schoolDay)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAttendanceReportServiceEmptyDay(t *testing.T) {
	svc := NewAttendanceReportService(newSchool().gateway(), AssemblyOptions{}, nil, zap.NewNop())

	sheet, err := svc.Sheet(context.Background(), "c1", schoolDay.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, sheet.Rows)
	assert.Equal(t, 0.0, sheet.Summary.AttendanceRate)
}

func TestExamReportServiceAwardList(t *testing.T) {
	svc := NewExamReportService(newSchool().gateway(), AssemblyOptions{PassPercentage: 40}, nil, zap.NewNop())

	list, err := svc.AwardList(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "Midterm Maths", list.ExamName)
	assert.Equal(t, "Mathematics", list.Subject)
	assert.Equal(t, "Grade 7 - A", list.ClassName)
	assert.Equal(t, "2024/2025", list.SessionName)

	require.Len(t, list.Rows, 3)
	ali, bilal, zara := list.Rows[0], list.Rows[1], list.Rows[2]
	assert.Equal(t, "Ali", ali.StudentName)
	assert.Equal(t, "35", ali.Marks)
	assert.Equal(t, "35.0", ali.Percentage)
	assert.Equal(t, "FAIL", ali.Result)
	assert.Equal(t, "AB", bilal.Marks)
	assert.Equal(t, "ABSENT", bilal.Result)
	assert.Equal(t, "PASS", zara.Result)

	sum := list.Summary
	assert.Equal(t, 3, sum.TotalStudents)
	assert.Equal(t, 2, sum.Appeared)
	assert.Equal(t, 1, sum.Absent)
	assert.Equal(t, 1, sum.Passed)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 57.5, sum.AveragePercentage)
	assert.Equal(t, 50.0, sum.PassRate)
	assert.Equal(t, "80", sum.HighestMarks)
	assert.Equal(t, "35", sum.LowestMarks)
}

func TestExamReportServiceUsesExamPassingMarks(t *testing.T) {
	store := newSchool()
	store.exams[0].PassingMarks = floatPtr(30)
	svc := NewExamReportService(store.gateway(), AssemblyOptions{PassPercentage: 40}, nil, zap.NewNop())

	list, err := svc.AwardList(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "PASS", list.Rows[0].Result)
	assert.Equal(t, 2, list.Summary.Passed)
	assert.Equal(t, 100.0, list.Summary.PassRate)
}

func TestExamReportServiceErrors(t *testing.T) {
	store := newSchool()
	svc := NewExamReportService(store.gateway(), AssemblyOptions{}, nil, zap.NewNop())

	_, err := svc.AwardList(context.Background(), "e9")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	store.failOn = map[string]error{"exam_result": errStoreDown}
	_, err = svc.AwardList(context.Background(), "e1")
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestExamReportServiceZeroPassingMarks(t *testing.T) {
	store := newSchool()
	store.exams[0].PassingMarks = floatPtr(0)
	svc := NewExamReportService(store.gateway(), AssemblyOptions{PassPercentage: 40}, nil, zap.NewNop())

	list, err := svc.AwardList(context.Background(), "e1")
	require.NoError(t, err)
	require.NotNil(t, list.PassingMarks)
	assert.Equal(t, 0.0, *list.PassingMarks)
	assert.Equal(t, 2, list.Summary.Passed)
	assert.Equal(t, 0, list.Summary.Failed)
}
