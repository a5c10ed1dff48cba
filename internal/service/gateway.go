package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/sma-report-engine/internal/assembly"
	"github.com/noah-isme/sma-report-engine/internal/models"
	appErrors "github.com/noah-isme/sma-report-engine/pkg/errors"
)

type studentReader interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Student, error)
	ListByUserIDs(ctx context.Context, userIDs []string) ([]models.Student, error)
	SearchByNumber(ctx context.Context, q string, limit int) ([]models.Student, error)
}

type profileReader interface {
	ListByUserIDs(ctx context.Context, userIDs []string) ([]models.Profile, error)
	SearchByName(ctx context.Context, q string, limit int) ([]models.Profile, error)
}

type classReader interface {
	FindByID(ctx context.Context, id string) (*models.ClassRoom, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.ClassRoom, error)
}

type subjectReader interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.Subject, error)
}

type sessionReader interface {
	ListCurrent(ctx context.Context) ([]models.AcademicSession, error)
	FindByID(ctx context.Context, id string) (*models.AcademicSession, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.AcademicSession, error)
}

type attendanceReader interface {
	ListByClassDate(ctx context.Context, classID string, date time.Time) ([]models.AttendanceRecord, error)
}

type examReader interface {
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	ListByClassSession(ctx context.Context, classID, sessionID string) ([]models.Exam, error)
}

type examResultReader interface {
	ListByExam(ctx context.Context, examID string) ([]models.ExamResult, error)
}

type feeRecordReader interface {
	FindByID(ctx context.Context, id string) (*models.FeeRecord, error)
	ListByStudentIDs(ctx context.Context, studentIDs []string) ([]models.FeeRecord, error)
}

type feeStructureReader interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.FeeStructure, error)
}

type paymentReader interface {
	ListByFeeRecordIDs(ctx context.Context, feeRecordIDs []string) ([]models.Payment, error)
}

// Gateway bundles the flat record store readers used by report assembly.
type Gateway struct {
	Students      studentReader
	Profiles      profileReader
	Classes       classReader
	Subjects      subjectReader
	Sessions      sessionReader
	Attendance    attendanceReader
	Exams         examReader
	Results       examResultReader
	FeeRecords    feeRecordReader
	FeeStructures feeStructureReader
	Payments      paymentReader
}

// AssemblyOptions tunes every report service.
type AssemblyOptions struct {
	PassPercentage float64
	SearchLimit    int
	FetchTimeout   time.Duration
}

// fetcher runs gateway reads with timing, logging and error mapping shared by
// all report services.
type fetcher struct {
	gw      Gateway
	opts    AssemblyOptions
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

func newFetcher(gw Gateway, opts AssemblyOptions, metrics *MetricsService, logger *zap.Logger) *fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PassPercentage <= 0 {
		opts.PassPercentage = assembly.DefaultPassPercentage
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = 50
	}
	return &fetcher{gw: gw, opts: opts, metrics: metrics, logger: logger, now: time.Now}
}

// scope bounds one assembly by the configured fetch timeout.
func (f *fetcher) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.opts.FetchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.opts.FetchTimeout)
}

// observe records the assembly duration for kind; call it deferred.
func (f *fetcher) observe(kind string, start time.Time) {
	f.metrics.ObserveAssembly(kind, time.Since(start))
}

// fetch runs one gateway read. Failures are logged with the entity and
// filter, then surfaced as a generic internal error.
func fetch[T any](ctx context.Context, f *fetcher, entity, filter string, read func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	out, err := read(ctx)
	f.metrics.ObserveFetch(entity, time.Since(start), err)
	if err != nil {
		var zero T
		f.logger.Error("gateway fetch failed",
			zap.String("entity", entity),
			zap.String("filter", filter),
			zap.Error(err),
		)
		return zero, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+entity)
	}
	return out, nil
}

// fetchOne is fetch for single-row reads; sql.ErrNoRows becomes not found.
func fetchOne[T any](ctx context.Context, f *fetcher, entity, id string, read func(context.Context, string) (*T, error)) (*T, error) {
	start := time.Now()
	out, err := read(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		f.metrics.ObserveFetch(entity, time.Since(start), nil)
		return nil, appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	f.metrics.ObserveFetch(entity, time.Since(start), err)
	if err != nil {
		f.logger.Error("gateway fetch failed",
			zap.String("entity", entity),
			zap.String("filter", "id="+id),
			zap.Error(err),
		)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+entity)
	}
	return out, nil
}

// related names the foreign keys whose targets should be loaded next to a
// set of students.
type related struct {
	profiles        []models.Profile
	classIDs        []string
	subjectIDs      []string
	sessionIDs      []string
	feeStructureIDs []string
}

// directory performs the dependent fetch stage for students: profiles by
// owning account and classes by id, plus any extra related sets, all in
// parallel. The result indexes everything for correlation.
func (f *fetcher) directory(ctx context.Context, students []models.Student, rel related) (*assembly.Directory, error) {
	snap := assembly.Snapshot{Students: students, Profiles: rel.profiles}
	userIDs := make([]string, 0, len(students))
	classIDs := append([]string{}, rel.classIDs...)
	for _, s := range students {
		userIDs = append(userIDs, s.UserID)
		if s.ClassID != nil {
			classIDs = append(classIDs, *s.ClassID)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if len(userIDs) > 0 && rel.profiles == nil {
		g.Go(func() (err error) {
			snap.Profiles, err = fetch(gctx, f, "profile", idFilter("user_id", userIDs), func(ctx context.Context) ([]models.Profile, error) {
				return f.gw.Profiles.ListByUserIDs(ctx, userIDs)
			})
			return err
		})
	}
	if len(classIDs) > 0 {
		g.Go(func() (err error) {
			snap.Classes, err = fetch(gctx, f, "class", idFilter("id", classIDs), func(ctx context.Context) ([]models.ClassRoom, error) {
				return f.gw.Classes.ListByIDs(ctx, classIDs)
			})
			return err
		})
	}
	if len(rel.subjectIDs) > 0 {
		g.Go(func() (err error) {
			snap.Subjects, err = fetch(gctx, f, "subject", idFilter("id", rel.subjectIDs), func(ctx context.Context) ([]models.Subject, error) {
				return f.gw.Subjects.ListByIDs(ctx, rel.subjectIDs)
			})
			return err
		})
	}
	if len(rel.sessionIDs) > 0 {
		g.Go(func() (err error) {
			snap.Sessions, err = fetch(gctx, f, "session", idFilter("id", rel.sessionIDs), func(ctx context.Context) ([]models.AcademicSession, error) {
				return f.gw.Sessions.ListByIDs(ctx, rel.sessionIDs)
			})
			return err
		})
	}
	if len(rel.feeStructureIDs) > 0 {
		g.Go(func() (err error) {
			snap.FeeStructures, err = fetch(gctx, f, "fee_structure", idFilter("id", rel.feeStructureIDs), func(ctx context.Context) ([]models.FeeStructure, error) {
				return f.gw.FeeStructures.ListByIDs(ctx, rel.feeStructureIDs)
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dir, err := assembly.NewDirectory(snap)
	if err != nil {
		return nil, f.assemblyError(err)
	}
	return dir, nil
}

// assemblyError maps engine errors onto the API error set.
func (f *fetcher) assemblyError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, assembly.ErrMissingKey), errors.Is(err, assembly.ErrMissingJoinKey):
		f.logger.Warn("record set failed correlation", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "record set is missing a join key")
	case errors.Is(err, assembly.ErrEmptyRoster):
		return appErrors.Clone(appErrors.ErrEmptyRoster, "")
	case errors.Is(err, assembly.ErrNotOnRoster):
		return appErrors.Clone(appErrors.ErrNotFound, "student is not on the active roster")
	case errors.Is(err, assembly.ErrInvalidQuery):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "search query is required")
	default:
		return appErrors.FromError(err)
	}
}

// activeStudents loads the active students of a class.
func (f *fetcher) activeStudents(ctx context.Context, classID string) ([]models.Student, error) {
	status := models.StudentStatusActive
	filter := models.StudentFilter{ClassID: classID, Status: &status}
	return fetch(ctx, f, "student", "class_id="+classID+" status=active", func(ctx context.Context) ([]models.Student, error) {
		return f.gw.Students.List(ctx, filter)
	})
}

// currentSession resolves the single current session. It returns conflict
// when the marker is set on more than one session and not found when unset.
func (f *fetcher) currentSession(ctx context.Context) (*models.AcademicSession, error) {
	sessions, err := fetch(ctx, f, "session", "is_current=true", f.gw.Sessions.ListCurrent)
	if err != nil {
		return nil, err
	}
	switch len(sessions) {
	case 0:
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no current academic session")
	case 1:
		return &sessions[0], nil
	default:
		ids := make([]string, 0, len(sessions))
		for _, s := range sessions {
			ids = append(ids, s.ID)
		}
		f.logger.Warn("multiple current sessions", zap.Strings("session_ids", ids))
		return nil, appErrors.Clone(appErrors.ErrConflict, "multiple current sessions")
	}
}

func idFilter(field string, ids []string) string {
	const maxShown = 5
	shown := ids
	suffix := ""
	if len(ids) > maxShown {
		shown = ids[:maxShown]
		suffix = ",..."
	}
	return field + " in [" + strings.Join(shown, ",") + suffix + "]"
}
