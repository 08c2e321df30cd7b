package db

import (
	"context"
	"io"

	"github.com/example/expense-tracker/internal/models"
)

// ProfileRepository reads and overwrites the profile document of a user.
// Every call is authorized with the user's own ID token.
type ProfileRepository interface {
	// Get returns (nil, nil) when the user has no profile yet.
	Get(ctx context.Context, userID, idToken string) (*models.Profile, error)
	// Put replaces the whole profile record.
	Put(ctx context.Context, userID, idToken string, profile models.Profile) error
}

// ExpenseRepository manages the expenses collection of a user.
type ExpenseRepository interface {
	// List returns all expenses sorted newest first.
	List(ctx context.Context, userID, idToken string) ([]models.Expense, error)
	// Create appends an expense and returns the key the store generated.
	Create(ctx context.Context, userID, idToken string, draft models.ExpenseDraft) (string, error)
	// Update replaces the expense with the same ID.
	Update(ctx context.Context, userID, idToken string, expense models.Expense) error
	Delete(ctx context.Context, userID, idToken, expenseID string) error
}

// AuditRepository defines the interface for audit log data storage operations.
type AuditRepository interface {
	Create(ctx context.Context, logEntry models.AuditLog) error
}

// PhotoStorage stores profile photos and returns a public download URL.
type PhotoStorage interface {
	Upload(ctx context.Context, userID, fileName, contentType string, content io.Reader) (string, error)
}
