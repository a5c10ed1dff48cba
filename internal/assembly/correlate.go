package assembly

import (
	"errors"
	"fmt"
	"sort"

	"github.com/noah-isme/sma-report-engine/internal/models"
)

// ErrMissingJoinKey marks a driving record without the key needed to correlate it.
var ErrMissingJoinKey = errors.New("driving record missing join key")

// Snapshot holds the record sets fetched for one assembly.
type Snapshot struct {
	Students      []models.Student
	Profiles      []models.Profile
	Classes       []models.ClassRoom
	Subjects      []models.Subject
	Sessions      []models.AcademicSession
	FeeStructures []models.FeeStructure
}

// Directory joins record sets in memory. Every join is optional: a missing
// target yields a nil field, never an error.
type Directory struct {
	students      *Index[models.Student]
	profiles      *Index[models.Profile]
	classes       *Index[models.ClassRoom]
	subjects      *Index[models.Subject]
	sessions      *Index[models.AcademicSession]
	feeStructures *Index[models.FeeStructure]
}

// NewDirectory indexes every set of the snapshot. Profiles are keyed by the
// owning account, everything else by primary id.
func NewDirectory(snap Snapshot) (*Directory, error) {
	var (
		d   Directory
		err error
	)
	if d.students, err = BuildIndex("student", snap.Students, func(s models.Student) string { return s.ID }); err != nil {
		return nil, err
	}
	if d.profiles, err = BuildIndex("profile", snap.Profiles, func(p models.Profile) string { return p.UserID }); err != nil {
		return nil, err
	}
	if d.classes, err = BuildIndex("class", snap.Classes, func(c models.ClassRoom) string { return c.ID }); err != nil {
		return nil, err
	}
	if d.subjects, err = BuildIndex("subject", snap.Subjects, func(s models.Subject) string { return s.ID }); err != nil {
		return nil, err
	}
	if d.sessions, err = BuildIndex("session", snap.Sessions, func(s models.AcademicSession) string { return s.ID }); err != nil {
		return nil, err
	}
	if d.feeStructures, err = BuildIndex("fee_structure", snap.FeeStructures, func(f models.FeeStructure) string { return f.ID }); err != nil {
		return nil, err
	}
	return &d, nil
}

// StudentView is a student enriched with its profile and class.
type StudentView struct {
	Student models.Student    `json:"student"`
	Profile *models.Profile   `json:"profile"`
	Class   *models.ClassRoom `json:"class"`
}

// Name is the profile display name, or empty when the profile is absent.
func (v StudentView) Name() string {
	if v.Profile == nil {
		return ""
	}
	return v.Profile.FullName
}

// ClassName is the class display name, or empty when the class is absent.
func (v StudentView) ClassName() string {
	if v.Class == nil {
		return ""
	}
	return v.Class.DisplayName()
}

// AttendanceView is an attendance row enriched with its student and class.
type AttendanceView struct {
	Record  models.AttendanceRecord `json:"record"`
	Student *StudentView            `json:"student"`
	Class   *models.ClassRoom       `json:"class"`
}

// ExamView is an exam enriched with its subject, class and session.
type ExamView struct {
	Exam    models.Exam             `json:"exam"`
	Subject *models.Subject         `json:"subject"`
	Class   *models.ClassRoom       `json:"class"`
	Session *models.AcademicSession `json:"session"`
}

// FeeView is a fee record enriched with its student, definition and payments.
type FeeView struct {
	Record    models.FeeRecord     `json:"record"`
	Student   *StudentView         `json:"student"`
	Structure *models.FeeStructure `json:"structure"`
	Payments  []models.Payment     `json:"payments"`
}

// PaymentTotal sums the payments attached to the record.
func (v FeeView) PaymentTotal() float64 {
	var total float64
	for _, p := range v.Payments {
		total += p.Amount
	}
	return total
}

// ResultRow joins a roster position with the student's exam result.
type ResultRow struct {
	Entry   RankedEntry        `json:"entry"`
	Student *StudentView       `json:"student"`
	Result  *models.ExamResult `json:"result"`
}

// Enrich correlates a single student.
func (d *Directory) Enrich(s models.Student) StudentView {
	return StudentView{
		Student: s,
		Profile: d.profiles.Lookup(&s.UserID),
		Class:   d.classes.Lookup(s.ClassID),
	}
}

// Student returns the enriched student for id.
func (d *Directory) Student(id string) (*StudentView, bool) {
	s, ok := d.students.Get(id)
	if !ok {
		return nil, false
	}
	view := d.Enrich(*s)
	return &view, true
}

// Class returns the class for id.
func (d *Directory) Class(id string) *models.ClassRoom {
	c, _ := d.classes.Get(id)
	return c
}

// Session returns the session for id.
func (d *Directory) Session(id string) *models.AcademicSession {
	s, _ := d.sessions.Get(id)
	return s
}

// Students correlates every student, keeping input order.
func (d *Directory) Students(students []models.Student) []StudentView {
	views := make([]StudentView, 0, len(students))
	for _, s := range students {
		views = append(views, d.Enrich(s))
	}
	return views
}

// Attendance correlates attendance rows with their students and classes. The
// output has one row per input row, in input order.
func (d *Directory) Attendance(records []models.AttendanceRecord) ([]AttendanceView, error) {
	views := make([]AttendanceView, 0, len(records))
	for i, rec := range records {
		if rec.StudentID == "" {
			return nil, fmt.Errorf("attendance row %d (%s): %w", i, rec.ID, ErrMissingJoinKey)
		}
		student, _ := d.Student(rec.StudentID)
		class, _ := d.classes.Get(rec.ClassID)
		views = append(views, AttendanceView{Record: rec, Student: student, Class: class})
	}
	return views, nil
}

// Exams correlates exams with subject, class and session.
func (d *Directory) Exams(exams []models.Exam) []ExamView {
	views := make([]ExamView, 0, len(exams))
	for _, e := range exams {
		subject, _ := d.subjects.Get(e.SubjectID)
		class, _ := d.classes.Get(e.ClassID)
		session, _ := d.sessions.Get(e.SessionID)
		views = append(views, ExamView{Exam: e, Subject: subject, Class: class, Session: session})
	}
	return views
}

// Fees correlates fee records with their students, definitions and payments.
// Payments are ordered by date; equal dates keep fetch order.
func (d *Directory) Fees(records []models.FeeRecord, payments []models.Payment) ([]FeeView, error) {
	byRecord := GroupBy(payments, func(p models.Payment) string { return p.FeeRecordID })
	views := make([]FeeView, 0, len(records))
	for i, rec := range records {
		if rec.StudentID == "" {
			return nil, fmt.Errorf("fee record %d (%s): %w", i, rec.ID, ErrMissingJoinKey)
		}
		student, _ := d.Student(rec.StudentID)
		structure, _ := d.feeStructures.Get(rec.FeeStructureID)
		views = append(views, FeeView{
			Record:    rec,
			Student:   student,
			Structure: structure,
			Payments:  sortedPayments(byRecord[rec.ID]),
		})
	}
	return views, nil
}

// Results joins the ordered roster with exam results keyed by student.
func (d *Directory) Results(roster []RankedEntry, results []models.ExamResult) []ResultRow {
	byStudent := make(map[string]models.ExamResult, len(results))
	for _, r := range results {
		byStudent[r.StudentID] = r
	}
	rows := make([]ResultRow, 0, len(roster))
	for _, entry := range roster {
		row := ResultRow{Entry: entry}
		row.Student, _ = d.Student(entry.StudentID)
		if r, ok := byStudent[entry.StudentID]; ok {
			row.Result = &r
		}
		rows = append(rows, row)
	}
	return rows
}

func sortedPayments(payments []models.Payment) []models.Payment {
	out := make([]models.Payment, len(payments))
	copy(out, payments)
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].PaymentDate.Before(out[b].PaymentDate)
	})
	return out
}
