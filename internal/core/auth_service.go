package core

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/expense-tracker/internal/expenses"
	"github.com/example/expense-tracker/internal/identity"
	"github.com/example/expense-tracker/internal/models"
	"github.com/example/expense-tracker/internal/session"
	"github.com/example/expense-tracker/internal/validation"
)

// PremiumThreshold is the expense total a user must exceed to activate premium.
var PremiumThreshold = decimal.NewFromInt(10000)

// authService implements the AuthService interface.
type authService struct {
	identity      IdentityProvider
	sessions      *session.Store
	lists         *expenses.Registry
	auditService  AuditService
	missingConfig []string
	logger        *zap.Logger
}

// NewAuthService creates a new AuthService instance. missingConfig is the
// result of the startup configuration check; a non-empty list blocks signup.
func NewAuthService(
	idp IdentityProvider,
	sessions *session.Store,
	lists *expenses.Registry,
	as AuditService,
	missingConfig []string,
	logger *zap.Logger,
) AuthService {
	return &authService{
		identity:      idp,
		sessions:      sessions,
		lists:         lists,
		auditService:  as,
		missingConfig: missingConfig,
		logger:        logger,
	}
}

func (s *authService) MissingConfig() []string {
	out := make([]string, len(s.missingConfig))
	copy(out, s.missingConfig)
	return out
}

func validationFailure(name validation.Name, input interface{}) error {
	errs, err := validation.Validate(name, input)
	if err != nil {
		return fmt.Errorf("validate %s: %w", name, err)
	}
	if !errs.Valid() {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func (s *authService) SignUp(ctx context.Context, clientID string, req models.SignUpRequest) (*Session, error) {
	if err := validationFailure(validation.SignUp, req); err != nil {
		return nil, err
	}
	if len(s.missingConfig) > 0 {
		return nil, &NotConfiguredError{Missing: s.MissingConfig()}
	}

	cred, err := s.identity.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Info("Signup rejected", zap.String("email", req.Email), zap.Error(err))
		return nil, classifyIdentityError(identity.FlowSignUp, err)
	}
	return s.establish(ctx, clientID, cred)
}

func (s *authService) Login(ctx context.Context, clientID string, req models.LoginRequest) (*Session, error) {
	if err := validationFailure(validation.Login, req); err != nil {
		return nil, err
	}

	cred, err := s.identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Info("Login rejected", zap.String("email", req.Email), zap.Error(err))
		return nil, classifyIdentityError(identity.FlowLogin, err)
	}
	return s.establish(ctx, clientID, cred)
}

// establish stores the new token for clientID and resolves the full user.
// A failed lookup falls back to what the credential carries.
func (s *authService) establish(ctx context.Context, clientID string, cred *identity.Credential) (*Session, error) {
	if err := s.sessions.Set(ctx, clientID, cred.IDToken); err != nil {
		return nil, fmt.Errorf("failed to store session for client '%s': %w", clientID, err)
	}

	user, err := s.identity.Lookup(ctx, cred.IDToken)
	if err != nil {
		s.logger.Warn("Lookup after sign-in failed, using credential fields", zap.String("user_id", cred.LocalID), zap.Error(err))
		user = &models.User{ID: cred.LocalID, Email: cred.Email}
	}
	if err := s.sessions.SetUser(ctx, clientID, user.ID); err != nil {
		return nil, fmt.Errorf("failed to store session user for client '%s': %w", clientID, err)
	}
	// A new session always starts from a fresh load of the user's list.
	s.lists.Drop(user.ID)
	s.logger.Info("User signed in", zap.String("user_id", user.ID), zap.String("client_id", clientID))
	return &Session{Token: cred.IDToken, User: user}, nil
}

func (s *authService) SendPasswordReset(ctx context.Context, req models.PasswordResetRequest) error {
	if err := validationFailure(validation.PasswordReset, req); err != nil {
		return err
	}
	if err := s.identity.SendPasswordReset(ctx, req.Email); err != nil {
		return classifyIdentityError(identity.FlowPasswordReset, err)
	}
	return nil
}

func (s *authService) SendEmailVerification(ctx context.Context, idToken string) error {
	if err := s.identity.SendEmailVerification(ctx, idToken); err != nil {
		return classifyIdentityError(identity.FlowVerifyEmail, err)
	}
	return nil
}

// Logout clears the session of clientID. userID is the user the token still
// resolved to, if any; the user recorded at sign-in is dropped as well so an
// expired token cannot leave a stale list behind.
func (s *authService) Logout(ctx context.Context, clientID, userID string) error {
	storedUserID, _, err := s.sessions.UserID(ctx, clientID)
	if err != nil {
		return fmt.Errorf("failed to read session user for client '%s': %w", clientID, err)
	}
	if err := s.sessions.Clear(ctx, clientID); err != nil {
		return fmt.Errorf("failed to clear session for client '%s': %w", clientID, err)
	}
	for _, id := range []string{userID, storedUserID} {
		if id != "" {
			s.lists.Drop(id)
		}
	}
	return nil
}

func (s *authService) CheckSession(ctx context.Context, clientID string) (session.Status, error) {
	status, err := s.sessions.Check(ctx, clientID, s.identity)
	if err != nil {
		return session.Status{}, fmt.Errorf("startup session check for client '%s': %w", clientID, err)
	}
	return status, nil
}

func (s *authService) ActivatePremium(ctx context.Context, clientID, userID, idToken string) error {
	list := s.lists.For(userID)
	if list.State() == expenses.StateLoading {
		if _, err := list.Load(ctx, idToken); err != nil {
			return classifyStoreError(err)
		}
	}
	total := list.Total()
	if !total.GreaterThan(PremiumThreshold) {
		return fmt.Errorf("%w: current total %s", ErrPremiumNotEligible, total.StringFixed(2))
	}
	if err := s.sessions.SetPremium(ctx, clientID); err != nil {
		return fmt.Errorf("failed to store premium flag for client '%s': %w", clientID, err)
	}
	recordAudit(ctx, s.auditService, s.logger, models.AuditLog{
		UserID:  userID,
		Action:  models.AuditPremium,
		Details: map[string]interface{}{"total": total.StringFixed(2)},
	})
	return nil
}
