package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appErrors "github.com/noah-isme/sma-report-engine/pkg/errors"
)

func newRosterService(store *fakeStore) *RosterService {
	return NewRosterService(store.gateway(), AssemblyOptions{}, NewMetricsService(), zap.NewNop())
}

func TestRosterServiceRosterOrdersByName(t *testing.T) {
	svc := newRosterService(newSchool())

	roster, err := svc.Roster(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Grade 7 - A", roster.ClassName)
	require.Len(t, roster.Students, 3)
	assert.Equal(t, 3, roster.Total)

	names := []string{}
	for i, s := range roster.Students {
		names = append(names, s.StudentName)
		assert.Equal(t, i+1, s.RollNumber)
	}
	assert.Equal(t, []string{"Ali", "Bilal", "Zara"}, names)
	assert.Equal(t, "2024-003", roster.Students[0].StudentNumber)
}

func TestRosterServiceRosterEmptyClass(t *testing.T) {
	svc := newRosterService(newSchool())

	roster, err := svc.Roster(context.Background(), "c2")
	require.NoError(t, err)
	assert.Equal(t, 0, roster.Total)
	assert.Empty(t, roster.Students)
}

func TestRosterServiceRosterUnknownClass(t *testing.T) {
	svc := newRosterService(newSchool())

	_, err := svc.Roster(context.Background(), "c9")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Roster(context.Background(), "  ")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestRosterServiceUpstreamFailureIsLogged(t *testing.T) {
	store := newSchool()
	store.failOn = map[string]error{"profile": errStoreDown}
	core, logs := observer.New(zapcore.ErrorLevel)
	metrics := NewMetricsService()
	svc := NewRosterService(store.gateway(), AssemblyOptions{}, metrics, zap.New(core))

	_, err := svc.Roster(context.Background(), "c1")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
	assert.ErrorIs(t, err, errStoreDown)

	entries := logs.FilterMessage("gateway fetch failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "profile", entries[0].ContextMap()["entity"])
	assert.Equal(t, uint64(1), metrics.Snapshot().FetchErrorsTotal)
}

func TestRosterServiceRollNumber(t *testing.T) {
	svc := newRosterService(newSchool())

	res, err := svc.RollNumber(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, res.RollNumber)
	assert.Equal(t, 3, res.RosterSize)
	assert.Equal(t, "c1", res.ClassID)

	res, err = svc.RollNumber(context.Background(), "s3")
	require.NoError(t, err)
	assert.Equal(t, 1, res.RollNumber)
}

func TestRosterServiceRollNumberErrors(t *testing.T) {
	svc := newRosterService(newSchool())
	ctx := context.Background()

	_, err := svc.RollNumber(ctx, "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	// graduated students keep their class but are off the active roster
	_, err = svc.RollNumber(ctx, "s4")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.RollNumber(ctx, "s6")
	assert.ErrorIs(t, err, appErrors.ErrEmptyRoster)
}

func TestRosterServiceIDCard(t *testing.T) {
	svc := newRosterService(newSchool())

	card, err := svc.IDCard(context.Background(), "s3")
	require.NoError(t, err)
	assert.Equal(t, "1", card.RollNumber)
	assert.Equal(t, "Ali", card.StudentName)
	assert.Equal(t, "Grade 7 - A", card.ClassName)
	assert.Equal(t, "2024/2025", card.SessionName)
	assert.Equal(t, "2025-06-30", card.ValidUntil)
	assert.Equal(t, "https://cdn.test/ali.png", card.PhotoURL)
	assert.Equal(t, "N/A", card.GuardianName)
}

func TestRosterServiceIDCardOffRoster(t *testing.T) {
	store := newSchool()
	store.sessions[0].IsCurrent = false
	svc := newRosterService(store)

	card, err := svc.IDCard(context.Background(), "s4")
	require.NoError(t, err)
	assert.Equal(t, "-", card.RollNumber)
	assert.Equal(t, "Omar", card.StudentName)
	assert.Equal(t, "Grade 7 - A", card.ClassName)
	assert.Equal(t, "N/A", card.SessionName)
	assert.Equal(t, "N/A", card.Email)
}

func TestRosterServiceIDCardSessionConflict(t *testing.T) {
	store := newSchool()
	store.sessions[1].IsCurrent = true
	svc := newRosterService(store)

	_, err := svc.IDCard(context.Background(), "s1")
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestRosterServiceClassIDCards(t *testing.T) {
	svc := newRosterService(newSchool())

	cards, err := svc.ClassIDCards(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, cards, 3)
	assert.Equal(t, "s3", cards[0].StudentID)
	assert.Equal(t, "1", cards[0].RollNumber)
	assert.Equal(t, "s1", cards[2].StudentID)
	assert.Equal(t, "Mrs. Noor", cards[2].GuardianName)

	_, err = svc.ClassIDCards(context.Background(), "c2")
	assert.ErrorIs(t, err, appErrors.ErrEmptyRoster)
}

func TestRosterServiceRollSlips(t *testing.T) {
	svc := newRosterService(newSchool())

	slips, err := svc.RollSlips(context.Background(), "c1", "")
	require.NoError(t, err)
	require.Len(t, slips, 3)

	first := slips[0]
	assert.Equal(t, 1, first.RollNumber)
	assert.Equal(t, "Ali", first.StudentName)
	assert.Equal(t, "2024/2025", first.SessionName)
	require.Len(t, first.Exams, 1)
	assert.Equal(t, "Mathematics", first.Exams[0].Subject)
	assert.Equal(t, "2024-10-07", first.Exams[0].Date)
	assert.Equal(t, "09:00 - 11:00", first.Exams[0].Time)
	assert.Equal(t, "Mrs. Noor", slips[2].GuardianName)
}

func TestRosterServiceRollSlipsExplicitSession(t *testing.T) {
	svc := newRosterService(newSchool())

	slips, err := svc.RollSlips(context.Background(), "c1", "ses-0")
	require.NoError(t, err)
	require.Len(t, slips, 3)
	assert.Equal(t, "2023/2024", slips[0].SessionName)
	assert.Empty(t, slips[0].Exams)

	_, err = svc.RollSlips(context.Background(), "c1", "ses-x")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestRosterServiceRollSlipsSessionErrors(t *testing.T) {
	store := newSchool()
	store.sessions[1].IsCurrent = true
	svc := newRosterService(store)

	_, err := svc.RollSlips(context.Background(), "c1", "")
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	store.sessions[0].IsCurrent = false
	store.sessions[1].IsCurrent = false
	_, err = svc.RollSlips(context.Background(), "c1", "")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	store.sessions[0].IsCurrent = true
	_, err = svc.RollSlips(context.Background(), "c2", "")
	assert.ErrorIs(t, err, appErrors.ErrEmptyRoster)
}
