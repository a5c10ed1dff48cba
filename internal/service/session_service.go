package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-report-engine/internal/models"
	appErrors "github.com/noah-isme/sma-report-engine/pkg/errors"
)

type sessionWriter interface {
	SetCurrent(ctx context.Context, id string) error
}

// SetCurrentSessionRequest selects the session to mark current.
type SetCurrentSessionRequest struct {
	SessionID string `validate:"required,max=64"`
}

// SessionService resolves and assigns the current academic session.
type SessionService struct {
	f         *fetcher
	writer    sessionWriter
	validator *validator.Validate
}

func NewSessionService(gw Gateway, writer sessionWriter, opts AssemblyOptions, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	return &SessionService{f: newFetcher(gw, opts, metrics, logger), writer: writer, validator: validate}
}

// Current returns the single session marked current. More than one marked
// session is a conflict; none is not found.
func (s *SessionService) Current(ctx context.Context) (*models.AcademicSession, error) {
	ctx, cancel := s.f.scope(ctx)
	defer cancel()
	return s.f.currentSession(ctx)
}

// SetCurrent clears every other current flag and marks the requested
// session, atomically.
func (s *SessionService) SetCurrent(ctx context.Context, req SetCurrentSessionRequest) (*models.AcademicSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session id")
	}
	if err := s.writer.SetCurrent(ctx, req.SessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		s.f.logger.Error("set current session failed", zap.String("session_id", req.SessionID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set current session")
	}
	s.f.logger.Info("current session changed", zap.String("session_id", req.SessionID))
	return fetchOne(ctx, s.f, "session", req.SessionID, s.f.gw.Sessions.FindByID)
}
