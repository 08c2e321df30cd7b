package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SignUpRequest is the signup form.
type SignUpRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginRequest is the login form.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordResetRequest is the forgot-password form.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// ProfileRequest is the profile edit form. PhotoURL and Phone are optional.
type ProfileRequest struct {
	DisplayName string `json:"displayName"`
	Phone       string `json:"phone"`
	PhotoURL    string `json:"photoUrl"`
}

// AmountInput is the amount of an expense form as sent by the client. It
// decodes from a JSON string, kept as typed so thousands separators can be
// stripped during validation, or from a JSON number.
type AmountInput string

// UnmarshalJSON accepts a string, a number or null.
func (a *AmountInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = AmountInput(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a string or a number: %w", err)
	}
	*a = AmountInput(n.String())
	return nil
}

// ExpenseRequest is the expense entry form.
type ExpenseRequest struct {
	Amount      AmountInput `json:"amount"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
}

// ThemeRequest sets the dark theme preference explicitly.
type ThemeRequest struct {
	Dark bool `json:"dark"`
}

// NavigateRequest carries a view navigation event.
type NavigateRequest struct {
	From  string `json:"from"`
	Event string `json:"event"`
}
