package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/expense-tracker/internal/db"
	"github.com/example/expense-tracker/internal/identity"
	"github.com/example/expense-tracker/internal/validation"
)

// Sentinel errors of the service layer.
var (
	ErrPremiumNotEligible      = errors.New("premium requires an expense total above 10000")
	ErrPhotoStorageUnavailable = errors.New("photo storage is not configured")
	ErrInvalidPhoto            = errors.New("photo must be an image")
	ErrExpenseNotFound         = errors.New("expense not found")
)

const (
	msgNetwork          = "Network error. Please check your connection and try again."
	msgSessionInvalid   = "Your session is invalid or expired. Please log out and sign in again."
	msgUnexpectedAnswer = "Unexpected response from server. Please try again."
)

// ValidationError carries per-field messages. No remote call was made.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

// AuthError is a rejection by the identity provider or the database rules.
// ForceLogout is set when the session token can no longer be used.
type AuthError struct {
	Message     string
	ForceLogout bool
	Err         error
}

func (e *AuthError) Error() string { return e.Message }
func (e *AuthError) Unwrap() error { return e.Err }

// NetworkError means a remote service could not be reached or answered with
// something other than a rejection.
type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string { return e.Message }
func (e *NetworkError) Unwrap() error { return e.Err }

// NotConfiguredError lists the configuration keys a flow needs but lacks.
type NotConfiguredError struct {
	Missing []string
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("missing Firebase config: %s", strings.Join(e.Missing, ", "))
}

// classifyIdentityError converts an identity client error into the taxonomy.
func classifyIdentityError(flow identity.Flow, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, identity.ErrNotConfigured) {
		return &NotConfiguredError{Missing: []string{"apiKey"}}
	}
	var ne *identity.NetworkError
	if errors.As(err, &ne) {
		return &NetworkError{Message: msgNetwork, Err: err}
	}
	if errors.Is(err, identity.ErrMalformedResponse) {
		return &NetworkError{Message: msgUnexpectedAnswer, Err: err}
	}
	var pe *identity.ProviderError
	if errors.As(err, &pe) {
		if pe.Transient() {
			return &NetworkError{Message: identity.FriendlyMessage(flow, err), Err: err}
		}
		return &AuthError{Message: identity.FriendlyMessage(flow, err), ForceLogout: pe.InvalidSession(), Err: err}
	}
	return &AuthError{Message: identity.FriendlyMessage(flow, err), Err: err}
}

// classifyStoreError converts a database or storage error into the taxonomy.
func classifyStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, db.ErrNotConfigured) {
		return &NotConfiguredError{Missing: []string{"databaseURL"}}
	}
	var re *db.RemoteError
	if errors.As(err, &re) {
		if re.Unauthorized() {
			return &AuthError{Message: msgSessionInvalid, ForceLogout: true, Err: err}
		}
		if re.Message == "" {
			return &NetworkError{Message: fmt.Sprintf("Request failed (%d)", re.Status), Err: err}
		}
		return &NetworkError{Message: re.Message, Err: err}
	}
	var ne *db.NetworkError
	if errors.As(err, &ne) {
		return &NetworkError{Message: msgNetwork, Err: err}
	}
	if errors.Is(err, db.ErrMalformedResponse) {
		return &NetworkError{Message: msgUnexpectedAnswer, Err: err}
	}
	return err
}
