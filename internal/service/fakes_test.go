package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/sma-report-engine/internal/models"
)

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

var errStoreDown = errors.New("connection refused")

// fakeStore is an in-memory record store implementing every gateway reader.
type fakeStore struct {
	mu         sync.Mutex
	students   []models.Student
	profiles   []models.Profile
	classes    []models.ClassRoom
	subjects   []models.Subject
	sessions   []models.AcademicSession
	attendance []models.AttendanceRecord
	exams      []models.Exam
	results    []models.ExamResult
	feeRecords []models.FeeRecord
	structures []models.FeeStructure
	payments   []models.Payment

	failOn     map[string]error
	calls      map[string]int
	setCurrent []string
}

func (s *fakeStore) hit(entity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[entity]++
	return s.failOn[entity]
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (s *fakeStore) gateway() Gateway {
	return Gateway{
		Students:      fakeStudents{s},
		Profiles:      fakeProfiles{s},
		Classes:       fakeClasses{s},
		Subjects:      fakeSubjects{s},
		Sessions:      fakeSessions{s},
		Attendance:    fakeAttendance{s},
		Exams:         fakeExams{s},
		Results:       fakeResults{s},
		FeeRecords:    fakeFeeRecords{s},
		FeeStructures: fakeStructures{s},
		Payments:      fakePayments{s},
	}
}

type fakeStudents struct{ s *fakeStore }

func (f fakeStudents) List(_ context.Context, filter models.StudentFilter) ([]models.Student, error) {
	if err := f.s.hit("student"); err != nil {
		return nil, err
	}
	out := []models.Student{}
	for _, st := range f.s.students {
		if filter.ClassID != "" && (st.ClassID == nil || *st.ClassID != filter.ClassID) {
			continue
		}
		if filter.Status != nil && st.Status != *filter.Status {
			continue
		}
		out = append(out, st)
	}
	return out, nil
}

func (f fakeStudents) FindByID(_ context.Context, id string) (*models.Student, error) {
	if err := f.s.hit("student"); err != nil {
		return nil, err
	}
	for _, st := range f.s.students {
		if st.ID == id {
			st := st
			return &st, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f fakeStudents) ListByIDs(_ context.Context, ids []string) ([]models.Student, error) {
	if err := f.s.hit("student"); err != nil {
		return nil, err
	}
	out := []models.Student{}
	for _, st := range f.s.students {
		if contains(ids, st.ID) {
			out = append(out, st)
		}
	}
	return out, nil
}

func (f fakeStudents) ListByUserIDs(_ context.Context, ids []string) ([]models.Student, error) {
	if err := f.s.hit("student"); err != nil {
		return nil, err
	}
	out := []models.Student{}
	for _, st := range f.s.students {
		if contains(ids, st.UserID) {
			out = append(out, st)
		}
	}
	return out, nil
}

func (f fakeStudents) SearchByNumber(_ context.Context, q string, limit int) ([]models.Student, error) {
	if err := f.s.hit("student_search"); err != nil {
		return nil, err
	}
	out := []models.Student{}
	for _, st := range f.s.students {
		if containsFold(st.StudentNumber, q) && len(out) < limit {
			out = append(out, st)
		}
	}
	return out, nil
}

type fakeProfiles struct{ s *fakeStore }

func (f fakeProfiles) ListByUserIDs(_ context.Context, ids []string) ([]models.Profile, error) {
	if err := f.s.hit("profile"); err != nil {
		return nil, err
	}
	out := []models.Profile{}
	for _, p := range f.s.profiles {
		if contains(ids, p.UserID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakeProfiles) SearchByName(_ context.Context, q string, limit int) ([]models.Profile, error) {
	if err := f.s.hit("profile_search"); err != nil {
		return nil, err
	}
	out := []models.Profile{}
	students := make(map[string]bool, len(f.s.students))
	for _, st := range f.s.students {
		students[st.UserID] = true
	}
	for _, p := range f.s.profiles {
		if students[p.UserID] && containsFold(p.FullName, q) && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeClasses struct{ s *fakeStore }

func (f fakeClasses) FindByID(_ context.Context, id string) (*models.ClassRoom, error) {
	if err := f.s.hit("class"); err != nil {
		return nil, err
	}
	for _, c := range f.s.classes {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f fakeClasses) ListByIDs(_ context.Context, ids []string) ([]models.ClassRoom, error) {
	if err := f.s.hit("class"); err != nil {
		return nil, err
	}
	out := []models.ClassRoom{}
	for _, c := range f.s.classes {
		if contains(ids, c.ID) {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeSubjects struct{ s *fakeStore }

func (f fakeSubjects) ListByIDs(_ context.Context, ids []string) ([]models.Subject, error) {
	if err := f.s.hit("subject"); err != nil {
		return nil, err
	}
	out := []models.Subject{}
	for _, sub := range f.s.subjects {
		if contains(ids, sub.ID) {
			out = append(out, sub)
		}
	}
	return out, nil
}

type fakeSessions struct{ s *fakeStore }

func (f fakeSessions) ListCurrent(context.Context) ([]models.AcademicSession, error) {
	if err := f.s.hit("session"); err != nil {
		return nil, err
	}
	out := []models.AcademicSession{}
	for _, ses := range f.s.sessions {
		if ses.IsCurrent {
			out = append(out, ses)
		}
	}
	return out, nil
}

func (f fakeSessions) FindByID(_ context.Context, id string) (*models.AcademicSession, error) {
	if err := f.s.hit("session"); err != nil {
		return nil, err
	}
	for _, ses := range f.s.sessions {
		if ses.ID == id {
			ses := ses
			return &ses, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f fakeSessions) ListByIDs(_ context.Context, ids []string) ([]models.AcademicSession, error) {
	if err := f.s.hit("session"); err != nil {
		return nil, err
	}
	out := []models.AcademicSession{}
	for _, ses := range f.s.sessions {
		if contains(ids, ses.ID) {
			out = append(out, ses)
		}
	}
	return out, nil
}

func (f fakeSessions) SetCurrent(_ context.Context, id string) error {
	if err := f.s.hit("session_write"); err != nil {
		return err
	}
	found := false
	for _, ses := range f.s.sessions {
		found = found || ses.ID == id
	}
	if !found {
		return sql.ErrNoRows
	}
	for i := range f.s.sessions {
		f.s.sessions[i].IsCurrent = f.s.sessions[i].ID == id
	}
	f.s.setCurrent = append(f.s.setCurrent, id)
	return nil
}

type fakeAttendance struct{ s *fakeStore }

func (f fakeAttendance) ListByClassDate(_ context.Context, classID string, date time.Time) ([]models.AttendanceRecord, error) {
	if err := f.s.hit("attendance"); err != nil {
		return nil, err
	}
	out := []models.AttendanceRecord{}
	for _, r := range f.s.attendance {
		if r.ClassID == classID && r.Date.Equal(date) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeExams struct{ s *fakeStore }

func (f fakeExams) FindByID(_ context.Context, id string) (*models.Exam, error) {
	if err := f.s.hit("exam"); err != nil {
		return nil, err
	}
	for _, e := range f.s.exams {
		if e.ID == id {
			e := e
			return &e, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f fakeExams) ListByClassSession(_ context.Context, classID, sessionID string) ([]models.Exam, error) {
	if err := f.s.hit("exam"); err != nil {
		return nil, err
	}
	out := []models.Exam{}
	for _, e := range f.s.exams {
		if e.ClassID == classID && e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeResults struct{ s *fakeStore }

func (f fakeResults) ListByExam(_ context.Context, examID string) ([]models.ExamResult, error) {
	if err := f.s.hit("exam_result"); err != nil {
		return nil, err
	}
	out := []models.ExamResult{}
	for _, r := range f.s.results {
		if r.ExamID == examID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeFeeRecords struct{ s *fakeStore }

func (f fakeFeeRecords) FindByID(_ context.Context, id string) (*models.FeeRecord, error) {
	if err := f.s.hit("fee_record"); err != nil {
		return nil, err
	}
	for _, r := range f.s.feeRecords {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f fakeFeeRecords) ListByStudentIDs(_ context.Context, ids []string) ([]models.FeeRecord, error) {
	if err := f.s.hit("fee_record"); err != nil {
		return nil, err
	}
	out := []models.FeeRecord{}
	for _, r := range f.s.feeRecords {
		if contains(ids, r.StudentID) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeStructures struct{ s *fakeStore }

func (f fakeStructures) ListByIDs(_ context.Context, ids []string) ([]models.FeeStructure, error) {
	if err := f.s.hit("fee_structure"); err != nil {
		return nil, err
	}
	out := []models.FeeStructure{}
	for _, st := range f.s.structures {
		if contains(ids, st.ID) {
			out = append(out, st)
		}
	}
	return out, nil
}

type fakePayments struct{ s *fakeStore }

func (f fakePayments) ListByFeeRecordIDs(_ context.Context, ids []string) ([]models.Payment, error) {
	if err := f.s.hit("payment"); err != nil {
		return nil, err
	}
	out := []models.Payment{}
	for _, p := range f.s.payments {
		if contains(ids, p.FeeRecordID) {
			out = append(out, p)
		}
	}
	return out, nil
}

var (
	sessionStart = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	sessionEnd   = time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	schoolDay    = time.Date(2024, 10, 7, 0, 0, 0, 0, time.UTC)
	feeDue       = time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC)
)

// newSchool seeds class c1 with Zara, Bilal and Ali active, Omar graduated,
// and class c2 with only an inactive student.
func newSchool() *fakeStore {
	return &fakeStore{
		students: []models.Student{
			{ID: "s1", UserID: "u1", StudentNumber: "2024-001", Status: models.StudentStatusActive, ClassID: strPtr("c1"), GuardianName: strPtr("Mrs. Noor")},
			{ID: "s2", UserID: "u2", StudentNumber: "2024-002", Status: models.StudentStatusActive, ClassID: strPtr("c1")},
			{ID: "s3", UserID: "u3", StudentNumber: "2024-003", Status: models.StudentStatusActive, ClassID: strPtr("c1")},
			{ID: "s4", UserID: "u4", StudentNumber: "2023-004", Status: models.StudentStatusGraduated, ClassID: strPtr("c1")},
			{ID: "s6", UserID: "u6", StudentNumber: "2024-006", Status: models.StudentStatusInactive, ClassID: strPtr("c2")},
		},
		profiles: []models.Profile{
			{ID: "p1", UserID: "u1", FullName: "Zara", Email: "zara@school.test", Phone: "0811"},
			{ID: "p2", UserID: "u2", FullName: "Bilal", Email: "bilal@school.test"},
			{ID: "p3", UserID: "u3", FullName: "Ali", Email: "ali@school.test", PhotoURL: strPtr("https://cdn.test/ali.png")},
			{ID: "p4", UserID: "u4", FullName: "Omar"},
			{ID: "p6", UserID: "u6", FullName: "Hina"},
		},
		classes: []models.ClassRoom{
			{ID: "c1", Name: "Grade 7", Section: strPtr("A")},
			{ID: "c2", Name: "Grade 8"},
		},
		subjects: []models.Subject{{ID: "math", Name: "Mathematics", Code: "MTH"}},
		sessions: []models.AcademicSession{
			{ID: "ses-1", Name: "2024/2025", StartDate: sessionStart, EndDate: sessionEnd, IsCurrent: true},
			{ID: "ses-0", Name: "2023/2024", StartDate: sessionStart.AddDate(-1, 0, 0), EndDate: sessionEnd.AddDate(-1, 0, 0)},
		},
		attendance: []models.AttendanceRecord{
			{ID: "a1", StudentID: "s1", ClassID: "c1", Date: schoolDay, Status: models.AttendanceStatusPresent},
			{ID: "a2", StudentID: "s2", ClassID: "c1", Date: schoolDay, Status: models.AttendanceStatusAbsent, Remarks: strPtr("sick")},
			{ID: "a3", StudentID: "s3", ClassID: "c1", Date: schoolDay, Status: models.AttendanceStatusLate},
		},
		exams: []models.Exam{
			{ID: "e1", Name: "Midterm Maths", ClassID: "c1", SubjectID: "math", SessionID: "ses-1", Type: models.ExamTypeMidterm, ExamDate: schoolDay, StartTime: strPtr("09:00"), EndTime: strPtr("11:00"), MaxMarks: 100},
		},
		results: []models.ExamResult{
			{ID: "r1", ExamID: "e1", StudentID: "s1", MarksObtained: floatPtr(80)},
			{ID: "r2", ExamID: "e1", StudentID: "s3", MarksObtained: floatPtr(35)},
			{ID: "r4", ExamID: "e1", StudentID: "s4", MarksObtained: floatPtr(99)},
		},
		feeRecords: []models.FeeRecord{
			{ID: "f1", StudentID: "s1", FeeStructureID: "tuition", TotalAmount: 1000, PaidAmount: 1000, Status: models.FeeStatusPaid, DueDate: feeDue},
			{ID: "f2", StudentID: "s2", FeeStructureID: "tuition", TotalAmount: 1000, PaidAmount: 400, Balance: 600, Status: models.FeeStatusPartial, DueDate: feeDue},
		},
		structures: []models.FeeStructure{{ID: "tuition", Name: "Tuition", Amount: 1000, SessionID: "ses-1", DueDate: feeDue}},
		payments: []models.Payment{
			{ID: "pay-2", FeeRecordID: "f2", PaymentDate: feeDue.AddDate(0, 0, 5), Amount: 150, Method: "card"},
			{ID: "pay-1", FeeRecordID: "f2", PaymentDate: feeDue.AddDate(0, 0, -3), Amount: 250, Method: "cash", ReceiptNumber: strPtr("R-100")},
		},
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
