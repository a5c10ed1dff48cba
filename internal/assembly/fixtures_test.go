package assembly

import (
	"time"

	"github.com/noah-isme/sma-report-engine/internal/models"
)

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

func fixtureSnapshot() Snapshot {
	return Snapshot{
		Students: []models.Student{
			{ID: "s1", UserID: "u1", StudentNumber: "2024-001", Status: models.StudentStatusActive, ClassID: strPtr("c1")},
			{ID: "s2", UserID: "u2", StudentNumber: "2024-002", Status: models.StudentStatusActive, ClassID: strPtr("c1")},
			{ID: "s3", UserID: "u3", StudentNumber: "2024-003", Status: models.StudentStatusActive, ClassID: strPtr("c1")},
			{ID: "s4", UserID: "u4", StudentNumber: "2024-004", Status: models.StudentStatusGraduated, ClassID: strPtr("c1")},
			{ID: "s5", UserID: "u5", StudentNumber: "2024-005", Status: models.StudentStatusActive, ClassID: strPtr("c-deleted")},
		},
		Profiles: []models.Profile{
			{ID: "p1", UserID: "u1", FullName: "Zara", Email: "zara@school.test", Phone: "0811"},
			{ID: "p2", UserID: "u2", FullName: "Bilal", Email: "bilal@school.test"},
			{ID: "p3", UserID: "u3", FullName: "Ali", PhotoURL: strPtr("https://cdn.test/ali.png")},
			{ID: "p4", UserID: "u4", FullName: "Omar"},
		},
		Classes: []models.ClassRoom{
			{ID: "c1", Name: "Grade 7", Section: strPtr("A")},
		},
		Subjects: []models.Subject{
			{ID: "math", Name: "Mathematics", Code: "MTH"},
		},
		Sessions: []models.AcademicSession{
			{ID: "ses-1", Name: "2024/2025", StartDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), IsCurrent: true},
		},
		FeeStructures: []models.FeeStructure{
			{ID: "tuition", Name: "Tuition", Amount: 1000},
		},
	}
}
