package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-report-engine/pkg/errors"
)

func newSessionService(store *fakeStore) *SessionService {
	return NewSessionService(store.gateway(), fakeSessions{store}, AssemblyOptions{}, nil, nil, zap.NewNop())
}

func TestSessionServiceCurrent(t *testing.T) {
	store := newSchool()
	svc := newSessionService(store)

	current, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ses-1", current.ID)

	store.sessions[1].IsCurrent = true
	_, err = svc.Current(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	store.sessions[0].IsCurrent = false
	store.sessions[1].IsCurrent = false
	_, err = svc.Current(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSessionServiceSetCurrent(t *testing.T) {
	store := newSchool()
	svc := newSessionService(store)

	session, err := svc.SetCurrent(context.Background(), SetCurrentSessionRequest{SessionID: "ses-0"})
	require.NoError(t, err)
	assert.Equal(t, "ses-0", session.ID)
	assert.True(t, session.IsCurrent)
	assert.Equal(t, []string{"ses-0"}, store.setCurrent)

	current, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ses-0", current.ID)
}

func TestSessionServiceSetCurrentErrors(t *testing.T) {
	store := newSchool()
	svc := newSessionService(store)

	_, err := svc.SetCurrent(context.Background(), SetCurrentSessionRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.SetCurrent(context.Background(), SetCurrentSessionRequest{SessionID: "ses-9"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	store.failOn = map[string]error{"session_write": errStoreDown}
	_, err = svc.SetCurrent(context.Background(), SetCurrentSessionRequest{SessionID: "ses-0"})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
