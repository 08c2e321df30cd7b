package core

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"github.com/example/expense-tracker/internal/expenses"
	"github.com/example/expense-tracker/internal/identity"
	"github.com/example/expense-tracker/internal/models"
	"github.com/example/expense-tracker/internal/session"
)

// IdentityProvider is the slice of the Identity Toolkit the services call.
// *identity.Client implements it.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (*identity.Credential, error)
	SignIn(ctx context.Context, email, password string) (*identity.Credential, error)
	Lookup(ctx context.Context, idToken string) (*models.User, error)
	SendPasswordReset(ctx context.Context, email string) error
	SendEmailVerification(ctx context.Context, idToken string) error
	UpdateAccount(ctx context.Context, idToken, displayName, photoURL string) error
}

// Session is a signed-in client: the token stored for it and its user.
type Session struct {
	Token string       `json:"-"`
	User  *models.User `json:"user"`
}

// AuthService defines the sign-in related flows.
type AuthService interface {
	SignUp(ctx context.Context, clientID string, req models.SignUpRequest) (*Session, error)
	Login(ctx context.Context, clientID string, req models.LoginRequest) (*Session, error)
	SendPasswordReset(ctx context.Context, req models.PasswordResetRequest) error
	SendEmailVerification(ctx context.Context, idToken string) error
	// Logout clears the client's token and forgets the user's expense list.
	Logout(ctx context.Context, clientID, userID string) error
	// CheckSession runs the startup check for clientID.
	CheckSession(ctx context.Context, clientID string) (session.Status, error)
	// ActivatePremium flags the client as premium once the user's total allows it.
	ActivatePremium(ctx context.Context, clientID, userID, idToken string) error
	// MissingConfig lists the web config keys that are not set.
	MissingConfig() []string
}

// ProfileService defines profile operations.
type ProfileService interface {
	// Get returns (nil, nil) when the user has not completed a profile.
	Get(ctx context.Context, userID, idToken string) (*models.Profile, error)
	Update(ctx context.Context, userID, idToken string, req models.ProfileRequest) (*models.Profile, error)
	UploadPhoto(ctx context.Context, userID, fileName, contentType string, content io.Reader) (string, error)
}

// ExpenseSummary describes the list state of a user.
type ExpenseSummary struct {
	State   string                  `json:"state"`
	Total   decimal.Decimal         `json:"total"`
	Pending []expenses.PendingEntry `json:"pending"`
}

// ExpenseService defines expense operations.
type ExpenseService interface {
	List(ctx context.Context, userID, idToken string) ([]models.Expense, error)
	Create(ctx context.Context, userID, idToken string, req models.ExpenseRequest) (*models.Expense, error)
	Update(ctx context.Context, userID, idToken, expenseID string, req models.ExpenseRequest) (*models.Expense, error)
	Delete(ctx context.Context, userID, idToken, expenseID string) error
	Summary(userID string) ExpenseSummary
}

// AuditService defines the interface for audit logging operations.
type AuditService interface {
	CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error
}
