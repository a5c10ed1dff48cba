package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/sma-report-engine/internal/assembly"
	"github.com/noah-isme/sma-report-engine/internal/dto"
	"github.com/noah-isme/sma-report-engine/internal/models"
)

// ExamReportService assembles award lists.
type ExamReportService struct {
	f *fetcher
}

func NewExamReportService(gw Gateway, opts AssemblyOptions, metrics *MetricsService, logger *zap.Logger) *ExamReportService {
	return &ExamReportService{f: newFetcher(gw, opts, metrics, logger)}
}

// passThreshold uses the exam's own passing marks when they are set, zero
// included, and falls back to the configured percentage otherwise.
func (s *ExamReportService) passThreshold(exam models.Exam) float64 {
	if exam.PassingMarks != nil && exam.MaxMarks > 0 {
		return assembly.Percentage(*exam.PassingMarks, exam.MaxMarks)
	}
	return s.f.opts.PassPercentage
}

// AwardList lists every active student of the exam's class in roll order
// with their marks. Results of students off the roster are ignored; roster
// students without a result are absent.
func (s *ExamReportService) AwardList(ctx context.Context, examID string) (*dto.AwardList, error) {
	if err := requireID("exam id", examID); err != nil {
		return nil, err
	}
	ctx, cancel := s.f.scope(ctx)
	defer cancel()
	defer s.f.observe("award_list", time.Now())

	exam, err := fetchOne(ctx, s.f, "exam", examID, s.f.gw.Exams.FindByID)
	if err != nil {
		return nil, err
	}

	var (
		students []models.Student
		results  []models.ExamResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		students, err = s.f.activeStudents(gctx, exam.ClassID)
		return err
	})
	g.Go(func() (err error) {
		results, err = fetch(gctx, s.f, "exam_result", "exam_id="+examID, func(ctx context.Context) ([]models.ExamResult, error) {
			return s.f.gw.Results.ListByExam(ctx, examID)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dir, err := s.f.directory(ctx, students, related{
		classIDs:   []string{exam.ClassID},
		subjectIDs: []string{exam.SubjectID},
		sessionIDs: []string{exam.SessionID},
	})
	if err != nil {
		return nil, err
	}

	ordered := assembly.OrderRoster(assembly.ActiveRoster(exam.ClassID, dir.Students(students)))
	rows := dir.Results(ordered, results)
	summary := assembly.SummarizeResults(rows, exam.MaxMarks, s.passThreshold(*exam))
	list := assembly.EmitAwardList(dir.Exams([]models.Exam{*exam})[0], rows, summary)
	return &list, nil
}
