package service

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-report-engine/internal/assembly"
	"github.com/noah-isme/sma-report-engine/internal/dto"
	"github.com/noah-isme/sma-report-engine/internal/models"
	appErrors "github.com/noah-isme/sma-report-engine/pkg/errors"
)

// Strategy names reported in MatchedBy.
const (
	StrategyStudentNumber = "student_number"
	StrategyName          = "name"
)

// SearchRequest is a student lookup across identity attributes.
type SearchRequest struct {
	Query string `form:"q" validate:"required,max=100"`
	Limit int    `form:"limit" validate:"omitempty,min=1,max=200"`
}

// SearchService finds students by student number and by profile name and
// merges the hits into one deduplicated list.
type SearchService struct {
	f         *fetcher
	validator *validator.Validate
}

func NewSearchService(gw Gateway, opts AssemblyOptions, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *SearchService {
	if validate == nil {
		validate = validator.New()
	}
	return &SearchService{f: newFetcher(gw, opts, metrics, logger), validator: validate}
}

// Search runs both strategies concurrently. Student-number hits come first;
// a student found by both carries both strategy names.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) ([]dto.SearchResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid search request")
	}
	limit := req.Limit
	if limit <= 0 || limit > s.f.opts.SearchLimit {
		limit = s.f.opts.SearchLimit
	}
	ctx, cancel := s.f.scope(ctx)
	defer cancel()
	defer s.f.observe("search", time.Now())

	candidates, err := assembly.Search(ctx, req.Query,
		assembly.Strategy{Name: StrategyStudentNumber, Run: s.byStudentNumber(limit)},
		assembly.Strategy{Name: StrategyName, Run: s.byName(limit)},
	)
	if err != nil {
		return nil, s.f.assemblyError(err)
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return assembly.EmitSearchResults(candidates), nil
}

func (s *SearchService) byStudentNumber(limit int) func(context.Context, string) ([]assembly.Candidate, error) {
	return func(ctx context.Context, q string) ([]assembly.Candidate, error) {
		students, err := fetch(ctx, s.f, "student", "student_number ilike "+q, func(ctx context.Context) ([]models.Student, error) {
			return s.f.gw.Students.SearchByNumber(ctx, q, limit)
		})
		if err != nil {
			return nil, err
		}
		return s.candidates(ctx, students, related{})
	}
}

func (s *SearchService) byName(limit int) func(context.Context, string) ([]assembly.Candidate, error) {
	return func(ctx context.Context, q string) ([]assembly.Candidate, error) {
		profiles, err := fetch(ctx, s.f, "profile", "full_name ilike "+q, func(ctx context.Context) ([]models.Profile, error) {
			return s.f.gw.Profiles.SearchByName(ctx, q, limit)
		})
		if err != nil || len(profiles) == 0 {
			return nil, err
		}
		userIDs := make([]string, 0, len(profiles))
		for _, p := range profiles {
			userIDs = append(userIDs, p.UserID)
		}
		students, err := fetch(ctx, s.f, "student", idFilter("user_id", userIDs), func(ctx context.Context) ([]models.Student, error) {
			return s.f.gw.Students.ListByUserIDs(ctx, userIDs)
		})
		if err != nil {
			return nil, err
		}
		// Keep the name ordering of the profile hits.
		rank := make(map[string]int, len(profiles))
		for i, p := range profiles {
			if _, ok := rank[p.UserID]; !ok {
				rank[p.UserID] = i
			}
		}
		ordered := make([]models.Student, len(students))
		copy(ordered, students)
		slices.SortStableFunc(ordered, func(a, b models.Student) int { return cmp.Compare(rank[a.UserID], rank[b.UserID]) })
		return s.candidates(ctx, ordered, related{profiles: profiles})
	}
}

func (s *SearchService) candidates(ctx context.Context, students []models.Student, rel related) ([]assembly.Candidate, error) {
	if len(students) == 0 {
		return nil, nil
	}
	dir, err := s.f.directory(ctx, students, rel)
	if err != nil {
		return nil, err
	}
	out := make([]assembly.Candidate, 0, len(students))
	for _, view := range dir.Students(students) {
		c := assembly.Candidate{StudentID: view.Student.ID}
		c.StudentNumber = optional(view.Student.StudentNumber)
		c.ClassID = view.Student.ClassID
		if view.Profile != nil {
			c.Name = optional(view.Profile.FullName)
			c.Email = optional(strings.TrimSpace(view.Profile.Email))
		}
		if view.Class != nil {
			c.ClassName = optional(view.Class.DisplayName())
		}
		out = append(out, c)
	}
	return out, nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
