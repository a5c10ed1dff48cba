package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/sma-report-engine/internal/assembly"
	"github.com/noah-isme/sma-report-engine/internal/dto"
	"github.com/noah-isme/sma-report-engine/internal/models"
	appErrors "github.com/noah-isme/sma-report-engine/pkg/errors"
)

// RosterService derives roll numbers and the documents keyed by them: class
// rosters, roll-number slips and identity cards. Roll numbers are recomputed
// on every call and never stored.
type RosterService struct {
	f *fetcher
}

func NewRosterService(gw Gateway, opts AssemblyOptions, metrics *MetricsService, logger *zap.Logger) *RosterService {
	return &RosterService{f: newFetcher(gw, opts, metrics, logger)}
}

type rosterResult struct {
	class   *models.ClassRoom
	entries []assembly.RosterEntry
	ordered []assembly.RankedEntry
	dir     *assembly.Directory
}

func requireID(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return appErrors.Clone(appErrors.ErrValidation, field+" is required")
	}
	return nil
}

// load fetches the active students of a class, then the class itself with
// the student profiles, and returns the correlated, ordered roster.
func (s *RosterService) load(ctx context.Context, classID string) (*rosterResult, error) {
	students, err := s.f.activeStudents(ctx, classID)
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
	entries := assembly.ActiveRoster(classID, dir.Students(students))
	return &rosterResult{
		class:   class,
		entries: entries,
		ordered: assembly.OrderRoster(entries),
		dir:     dir,
	}, nil
}

// Roster returns the ordered active roster of a class. An empty class yields
// an empty roster, not an error.
func (s *RosterService) Roster(ctx context.Context, classID string) (*dto.ClassRoster, error) {
	if err := requireID("class id", classID); err != nil {
		return nil, err
	}
	ctx, cancel := s.f.scope(ctx)
	defer cancel()
	defer s.f.observe("roster", time.Now())

	res, err := s.load(ctx, classID)
	if err != nil {
		return nil, err
	}
	out := assembly.EmitRoster(classID, res.class, res.ordered, res.dir)
	return &out, nil
}

// RollNumber returns the position of a student in the active roster of the
// class the student is assigned to.
func (s *RosterService) RollNumber(ctx context.Context, studentID string) (*dto.RollNumberResponse, error) {
	if err := requireID("student id", studentID); err != nil {
		return nil, err
	}
	ctx, cancel := s.f.scope(ctx)
	defer cancel()
	defer s.f.observe("roll_number", time.Now())

	student, err := fetchOne(ctx, s.f, "student", studentID, s.f.gw.Students.FindByID)
	if err != nil {
		return nil, err
	}
	if student.ClassID == nil || *student.ClassID == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student is not assigned to a class")
	}
	res, err := s.load(ctx, *student.ClassID)
	if err != nil {
		return nil, err
	}
	number, err := assembly.RollNumberOf(res.entries, studentID)
	if err != nil {
		return nil, s.f.assemblyError(err)
	}
	return &dto.RollNumberResponse{
		StudentID:  studentID,
		ClassID:    *student.ClassID,
		ClassName:  res.class.DisplayName(),
		RollNumber: number,
		RosterSize: len(res.entries),
	}, nil
}

// optionalCurrentSession resolves the current session for documents that
// print it. An unset marker yields nil; a conflicting marker is an error.
func (s *RosterService) optionalCurrentSession(ctx context.Context) (*models.AcademicSession, error) {
	session, err := s.f.currentSession(ctx)
	if errors.Is(err, appErrors.ErrNotFound) {
		return nil, nil
	}
	return session, err
}

// IDCard builds the identity card of one student. Students off the active
// roster still get a card, printed without a roll number.
func (s *RosterService) IDCard(ctx context.Context, studentID string) (*dto.IDCard, error) {
	if err := requireID("student id", studentID); err != nil {
		return nil, err
	}
	ctx, cancel := s.f.scope(ctx)
	defer cancel()
	defer s.f.observe("id_card", time.Now())

	student, err := fetchOne(ctx, s.f, "student", studentID, s.f.gw.Students.FindByID)
	if err != nil {
		return nil, err
	}

	var (
		session *models.AcademicSession
		dir     *assembly.Directory
		roll    int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		session, err = s.optionalCurrentSession(gctx)
		return err
	})
	g.Go(func() error {
		if student.ClassID != nil && *student.ClassID != "" && student.Status == models.StudentStatusActive {
			res, err := s.load(gctx, *student.ClassID)
			if err != nil && !errors.Is(err, appErrors.ErrNotFound) {
				return err
			}
			if res != nil {
				roll = assembly.RollNumbers(res.ordered)[studentID]
				if _, ok := res.dir.Student(studentID); ok {
					dir = res.dir
					return nil
				}
			}
		}
		d, err := s.f.directory(gctx, []models.Student{*student}, related{})
		dir = d
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view, _ := dir.Student(studentID)
	card := assembly.EmitIDCard(*view, roll, session)
	return &card, nil
}

// ClassIDCards builds identity cards for the active roster in roll order.
func (s *RosterService) ClassIDCards(ctx context.Context, classID string) ([]dto.IDCard, error) {
	if err := requireID("class id", classID); err != nil {
		return nil, err
	}
	ctx, cancel := s.f.scope(ctx)
	defer cancel()
	defer s.f.observe("id_cards", time.Now())

	var (
		res     *rosterResult
		session *models.AcademicSession
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		res, err = s.load(gctx, classID)
		return err
	})
	g.Go(func() (err error) {
		session, err = s.optionalCurrentSession(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(res.ordered) == 0 {
		return nil, appErrors.Clone(appErrors.ErrEmptyRoster, "")
	}

	cards := make([]dto.IDCard, 0, len(res.ordered))
	for _, entry := range res.ordered {
		view, ok := res.dir.Student(entry.StudentID)
		if !ok {
			continue
		}
		cards = append(cards, assembly.EmitIDCard(*view, entry.RollNumber, session))
	}
	return cards, nil
}

// RollSlips builds one roll-number slip per active student, each listing the
// class exam timetable of the session. An empty sessionID selects the
// current session.
func (s *RosterService) RollSlips(ctx context.Context, classID, sessionID string) ([]dto.RollSlip, error) {
	if err := requireID("class id", classID); err != nil {
		return nil, err
	}
	ctx, cancel := s.f.scope(ctx)
	defer cancel()
	defer s.f.observe("roll_slips", time.Now())

	var (
		session *models.AcademicSession
		err     error
	)
	if strings.TrimSpace(sessionID) == "" {
		session, err = s.f.currentSession(ctx)
	} else {
		session, err = fetchOne(ctx, s.f, "session", sessionID, s.f.gw.Sessions.FindByID)
	}
	if err != nil {
		return nil, err
	}

	var (
		students []models.Student
		exams    []models.Exam
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		students, err = s.f.activeStudents(gctx, classID)
		return err
	})
	g.Go(func() (err error) {
		exams, err = fetch(gctx, s.f, "exam", "class_id="+classID+" session_id="+session.ID, func(ctx context.Context) ([]models.Exam, error) {
			return s.f.gw.Exams.ListByClassSession(ctx, classID, session.ID)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	subjectIDs := make([]string, 0, len(exams))
	for _, e := range exams {
		subjectIDs = append(subjectIDs, e.SubjectID)
	}
	dir, err := s.f.directory(ctx, students, related{classIDs: []string{classID}, subjectIDs: subjectIDs})
	if err != nil {
		return nil, err
	}
	if dir.Class(classID) == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	ordered := assembly.OrderRoster(assembly.ActiveRoster(classID, dir.Students(students)))
	if len(ordered) == 0 {
		return nil, appErrors.Clone(appErrors.ErrEmptyRoster, "")
	}
	timetable := dir.Exams(exams)
	slips := make([]dto.RollSlip, 0, len(ordered))
	for _, entry := range ordered {
		view, _ := dir.Student(entry.StudentID)
		slips = append(slips, assembly.EmitRollSlip(entry, view, session, timetable))
	}
	return slips, nil
}
