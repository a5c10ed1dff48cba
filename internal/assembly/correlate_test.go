package assembly

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-report-engine/internal/models"
)

func TestDirectoryEnrichStudent(t *testing.T) {
	dir, err := NewDirectory(fixtureSnapshot())
	require.NoError(t, err)

	view, ok := dir.Student("s1")
	require.True(t, ok)
	assert.Equal(t, "Zara", view.Name())
	assert.Equal(t, "Grade 7 - A", view.ClassName())

	orphan, ok := dir.Student("s5")
	require.True(t, ok)
	assert.Nil(t, orphan.Profile)
	assert.Nil(t, orphan.Class)
	assert.Equal(t, "", orphan.Name())

	_, ok = dir.Student("missing")
	assert.False(t, ok)
}

func TestDirectoryAttendanceJoinSafety(t *testing.T) {
	dir, err := NewDirectory(fixtureSnapshot())
	require.NoError(t, err)

	date := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	records := []models.AttendanceRecord{
		{ID: "a1", StudentID: "s1", ClassID: "c1", Date: date, Status: models.AttendanceStatusPresent},
		{ID: "a2", StudentID: "ghost", ClassID: "c1", Date: date, Status: models.AttendanceStatusAbsent},
		{ID: "a3", StudentID: "s3", ClassID: "c1", Date: date, Status: models.AttendanceStatusLate},
	}

	views, err := dir.Attendance(records)
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.Equal(t, "a1", views[0].Record.ID)
	assert.Equal(t, "a2", views[1].Record.ID)
	assert.Equal(t, "a3", views[2].Record.ID)
	assert.NotNil(t, views[0].Student)
	assert.Nil(t, views[1].Student)
	assert.NotNil(t, views[2].Student)
	assert.Equal(t, "Ali", views[2].Student.Name())
}

func TestDirectoryAttendanceMissingJoinKey(t *testing.T) {
	dir, err := NewDirectory(fixtureSnapshot())
	require.NoError(t, err)

	_, err = dir.Attendance([]models.AttendanceRecord{{ID: "a1", ClassID: "c1"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingJoinKey))
}

func TestNewDirectoryRejectsMalformedRecords(t *testing.T) {
	snap := fixtureSnapshot()
	snap.Profiles = append(snap.Profiles, models.Profile{ID: "p9"})

	_, err := NewDirectory(snap)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingKey))
}

func TestDirectoryExamsOptionalJoins(t *testing.T) {
	dir, err := NewDirectory(fixtureSnapshot())
	require.NoError(t, err)

	views := dir.Exams([]models.Exam{
		{ID: "e1", ClassID: "c1", SubjectID: "math", SessionID: "ses-1"},
		{ID: "e2", ClassID: "c1", SubjectID: "art", SessionID: "ses-old"},
	})
	require.Len(t, views, 2)
	assert.Equal(t, "Mathematics", views[0].Subject.Name)
	assert.NotNil(t, views[0].Session)
	assert.Nil(t, views[1].Subject)
	assert.Nil(t, views[1].Session)
	assert.NotNil(t, views[1].Class)
}

func TestDirectoryFeesGroupsPaymentsByDate(t *testing.T) {
	dir, err := NewDirectory(fixtureSnapshot())
	require.NoError(t, err)

	d1 := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	records := []models.FeeRecord{
		{ID: "f1", StudentID: "s1", FeeStructureID: "tuition", TotalAmount: 1000, PaidAmount: 600},
		{ID: "f2", StudentID: "ghost", FeeStructureID: "gone", TotalAmount: 500},
	}
	payments := []models.Payment{
		{ID: "p2", FeeRecordID: "f1", PaymentDate: d2, Amount: 200},
		{ID: "p1", FeeRecordID: "f1", PaymentDate: d1, Amount: 400},
	}

	views, err := dir.Fees(records, payments)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Len(t, views[0].Payments, 2)
	assert.Equal(t, "p1", views[0].Payments[0].ID)
	assert.Equal(t, "p2", views[0].Payments[1].ID)
	assert.InDelta(t, 600, views[0].PaymentTotal(), 0.001)
	assert.Equal(t, "Tuition", views[0].Structure.Name)

	assert.Nil(t, views[1].Student)
	assert.Nil(t, views[1].Structure)
	assert.Empty(t, views[1].Payments)
}

func TestDirectoryResultsFollowsRoster(t *testing.T) {
	dir, err := NewDirectory(fixtureSnapshot())
	require.NoError(t, err)

	roster := OrderRoster(ActiveRoster("c1", dir.Students(fixtureSnapshot().Students)))
	rows := dir.Results(roster, []models.ExamResult{
		{ID: "r1", ExamID: "e1", StudentID: "s1", MarksObtained: floatPtr(80)},
		{ID: "r9", ExamID: "e1", StudentID: "s4", MarksObtained: floatPtr(99)},
	})
	require.Len(t, rows, 3)
	assert.Equal(t, "s3", rows[0].Entry.StudentID)
	assert.Nil(t, rows[0].Result)
	assert.Equal(t, "s1", rows[2].Entry.StudentID)
	require.NotNil(t, rows[2].Result)
	assert.Equal(t, 80.0, *rows[2].Result.MarksObtained)
}
