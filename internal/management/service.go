package management

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	dErrors "trinity/pkg/domain-errors"
)

// DefaultSessionTTL bounds how long an admin console session stays valid
// without re-login.
const DefaultSessionTTL = 30 * time.Minute

// Service implements the management operations over a Store.
type Service struct {
	store      Store
	adminID    string
	adminHash  []byte
	sessionTTL time.Duration
	logger     *slog.Logger
}

func NewService(store Store, adminID, adminPasswordHash string, logger *slog.Logger) *Service {
	return &Service{
		store:      store,
		adminID:    adminID,
		adminHash:  []byte(adminPasswordHash),
		sessionTTL: DefaultSessionTTL,
		logger:     logger,
	}
}

// RecordLoginSuccess bumps the login counter. Invoked from the
// fire-and-forget loginSuccess event.
func (s *Service) RecordLoginSuccess(ctx context.Context) error {
	count, err := s.store.IncrementLoginCount(ctx)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "login count incremented", "count", count)
	return nil
}

func (s *Service) LoginCount(ctx context.Context) (int64, error) {
	return s.store.LoginCount(ctx)
}

// Login verifies the admin credentials and mints a session. The bcrypt
// comparison runs even for a wrong id so response timing does not reveal
// which field was wrong.
func (s *Service) Login(ctx context.Context, id, password string) (string, error) {
	match := bcrypt.CompareHashAndPassword(s.adminHash, []byte(password)) == nil
	if id != s.adminID || !match {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid admin credentials")
	}

	sessionID := uuid.NewString()
	if err := s.store.SaveSession(ctx, sessionID, s.sessionTTL); err != nil {
		return "", dErrors.Wrap(dErrors.CodeInternal, "failed to create session", err)
	}
	return sessionID, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.store.DeleteSession(ctx, sessionID)
}

func (s *Service) ValidateSession(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	return s.store.SessionExists(ctx, sessionID)
}

func (s *Service) Term(ctx context.Context) (Term, error) {
	return s.store.Term(ctx)
}

func (s *Service) SetTerm(ctx context.Context, term Term) error {
	if term.Shtm == "" || term.Yyyy == "" {
		return dErrors.New(dErrors.CodeBadRequest, "shtm and yyyy are required")
	}
	return s.store.SetTerm(ctx, term)
}
