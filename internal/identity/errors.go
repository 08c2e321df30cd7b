package identity

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrMalformedResponse marks a 2xx response whose body could not be decoded.
var ErrMalformedResponse = errors.New("identity: malformed response")

// ProviderError is a non-2xx answer from the Identity Toolkit.
type ProviderError struct {
	Status int
	Code   string // e.g. EMAIL_EXISTS, INVALID_ID_TOKEN
	Detail string
}

func (e *ProviderError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("identity provider: %d %s: %s", e.Status, e.Code, e.Detail)
	}
	return fmt.Sprintf("identity provider: %d %s", e.Status, e.Code)
}

// InvalidSession reports whether the error means the ID token is no longer usable.
func (e *ProviderError) InvalidSession() bool {
	switch e.Code {
	case "INVALID_ID_TOKEN", "INVALID_TOKEN", "TOKEN_EXPIRED", "USER_DISABLED", "CREDENTIAL_TOO_OLD_LOGIN_AGAIN", "MISSING_ID_TOKEN", "USER_NOT_FOUND":
		return true
	}
	return false
}

// Transient reports whether the provider failed or throttled the request
// rather than rejecting it; retrying later may succeed.
func (e *ProviderError) Transient() bool {
	return e.Status >= 500 || e.Code == "TOO_MANY_ATTEMPTS_TRY_LATER"
}

// NetworkError means the request could not complete.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("identity %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Flow names the user action a provider error happened in, since the same
// code reads differently per screen.
type Flow string

const (
	FlowSignUp        Flow = "signup"
	FlowLogin         Flow = "login"
	FlowPasswordReset Flow = "password_reset"
	FlowVerifyEmail   Flow = "verify_email"
	FlowUpdateAccount Flow = "update_account"
)

var defaultMessages = map[Flow]string{
	FlowSignUp:        "Failed to create account",
	FlowLogin:         "Login failed",
	FlowPasswordReset: "Failed to send password reset email.",
	FlowVerifyEmail:   "Failed to send verification email.",
	FlowUpdateAccount: "Failed to update profile",
}

const (
	msgSessionInvalid = "Your session is invalid or expired. Please log out and sign in again."
	msgConfigNotFound = "Authentication configuration not found. Make sure Email/Password sign-in is enabled for the project and that the API key and project ID match the registered web app."
)

// FriendlyMessage turns a provider error code into the text shown to the user.
func FriendlyMessage(flow Flow, err error) string {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		var ne *NetworkError
		if errors.As(err, &ne) {
			return "Network error. Please check your connection and try again."
		}
		if errors.Is(err, ErrNotConfigured) {
			return "Missing API key"
		}
		return defaultMessages[flow]
	}

	switch pe.Code {
	case "EMAIL_EXISTS":
		return "Email is already in use"
	case "INVALID_EMAIL":
		if flow == FlowPasswordReset {
			return "Invalid email address."
		}
		return "Invalid email address"
	case "WEAK_PASSWORD":
		return "Password is too weak"
	case "CONFIGURATION_NOT_FOUND":
		return msgConfigNotFound
	case "EMAIL_NOT_FOUND":
		if flow == FlowPasswordReset {
			return "No account found for this email."
		}
		return "No user found with this email"
	case "INVALID_PASSWORD":
		return "Incorrect password"
	case "INVALID_LOGIN_CREDENTIALS":
		return "Invalid email or password"
	case "USER_DISABLED":
		return "This account has been disabled"
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return "Too many attempts. Please try again later."
	case "INVALID_ID_TOKEN", "INVALID_TOKEN", "TOKEN_EXPIRED", "CREDENTIAL_TOO_OLD_LOGIN_AGAIN":
		return msgSessionInvalid
	case "USER_NOT_FOUND":
		return "No user account found. Please sign up first."
	case "MISSING_ID_TOKEN":
		return "Authentication token missing. Please sign out and sign in again."
	}
	if pe.Code != "" && pe.Code != "UNKNOWN_ERROR" {
		return pe.Code
	}
	return defaultMessages[flow]
}
