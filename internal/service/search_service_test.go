package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-report-engine/internal/models"
	appErrors "github.com/noah-isme/sma-report-engine/pkg/errors"
)

func searchSchool() *fakeStore {
	store := newSchool()
	store.students[2].StudentNumber = "ALI-003"
	return store
}

func TestSearchServiceMergesStrategies(t *testing.T) {
	svc := NewSearchService(searchSchool().gateway(), AssemblyOptions{}, nil, nil, zap.NewNop())

	results, err := svc.Search(context.Background(), SearchRequest{Query: " ali "})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "s3", results[0].StudentID)
	assert.Equal(t, "ALI-003", results[0].StudentNumber)
	assert.Equal(t, "Ali", results[0].StudentName)
	assert.Equal(t, "Grade 7 - A", results[0].ClassName)
	assert.Equal(t, "ali@school.test", results[0].Email)
	assert.Equal(t, []string{StrategyStudentNumber, StrategyName}, results[0].MatchedBy)

	assert.Equal(t, "s2", results[1].StudentID)
	assert.Equal(t, []string{StrategyName}, results[1].MatchedBy)
}

func TestSearchServiceLimit(t *testing.T) {
	svc := NewSearchService(searchSchool().gateway(), AssemblyOptions{}, nil, nil, zap.NewNop())

	results, err := svc.Search(context.Background(), SearchRequest{Query: "ali", Limit: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "s3", results[0].StudentID)
}

func TestSearchServiceNameLimitIgnoresNonStudentProfiles(t *testing.T) {
	store := newSchool()
	staff := models.Profile{ID: "p-staff", UserID: "u-staff", FullName: "Bilquis Staff", Email: "staff@school.test"}
	store.profiles = append([]models.Profile{staff}, store.profiles...)
	svc := NewSearchService(store.gateway(), AssemblyOptions{}, nil, nil, zap.NewNop())

	results, err := svc.Search(context.Background(), SearchRequest{Query: "bil", Limit: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "s2", results[0].StudentID)
}

func TestSearchServiceNoMatches(t *testing.T) {
	svc := NewSearchService(newSchool().gateway(), AssemblyOptions{}, nil, nil, zap.NewNop())

	results, err := svc.Search(context.Background(), SearchRequest{Query: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearchServiceRejectsBlankQuery(t *testing.T) {
	svc := NewSearchService(newSchool().gateway(), AssemblyOptions{}, nil, nil, zap.NewNop())

	_, err := svc.Search(context.Background(), SearchRequest{Query: ""})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Search(context.Background(), SearchRequest{Query: "   "})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSearchServiceStrategyFailure(t *testing.T) {
	store := newSchool()
	store.failOn = map[string]error{"profile_search": errStoreDown}
	svc := NewSearchService(store.gateway(), AssemblyOptions{}, nil, nil, zap.NewNop())

	_, err := svc.Search(context.Background(), SearchRequest{Query: "2024"})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
