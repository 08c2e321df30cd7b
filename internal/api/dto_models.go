package api

import (
	"encoding/json"

	"github.com/example/expense-tracker/internal/expenses"
	"github.com/example/expense-tracker/internal/models"
	"github.com/example/expense-tracker/internal/view"
)

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error       string              `json:"error"`
	Details     string              `json:"details,omitempty"`
	Fields      map[string][]string `json:"fields,omitempty"`
	Missing     []string            `json:"missing,omitempty"`
	ForceLogout bool                `json:"forceLogout,omitempty"`
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ConfigStatusResponse reports whether the web config is complete.
type ConfigStatusResponse struct {
	Configured bool     `json:"configured"`
	Missing    []string `json:"missing"`
}

// SessionResponse is the startup state of a client.
type SessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user,omitempty"`
	Screen        view.Screen  `json:"screen"`
	Dark          bool         `json:"dark"`
	Premium       bool         `json:"premium"`
	Missing       []string     `json:"missingConfig,omitempty"`
}

// AuthResponse is returned after signup and login.
type AuthResponse struct {
	User   *models.User `json:"user"`
	Screen view.Screen  `json:"screen"`
}

// ProfileResponse wraps the profile; Complete is false until a display name is saved.
type ProfileResponse struct {
	Profile  *models.Profile `json:"profile"`
	Complete bool            `json:"complete"`
	Screen   view.Screen     `json:"screen,omitempty"`
}

// PhotoResponse carries the download URL of an uploaded photo.
type PhotoResponse struct {
	PhotoURL string `json:"photoUrl"`
}

// ExpenseView is an expense shaped for display.
type ExpenseView struct {
	ID              string          `json:"id"`
	Amount          json.Number     `json:"amount"`
	FormattedAmount string          `json:"formattedAmount"`
	Description     string          `json:"description"`
	Category        models.Category `json:"category"`
	Timestamp       int64           `json:"timestamp"`
	CreatedAt       string          `json:"createdAt"`
}

// ExpenseListResponse is the expense list of the user with its totals.
type ExpenseListResponse struct {
	Expenses []ExpenseView           `json:"expenses"`
	Total    string                  `json:"total"`
	State    string                  `json:"state"`
	Pending  []expenses.PendingEntry `json:"pending"`
}

// PreferencesResponse is the per-client preference state.
type PreferencesResponse struct {
	Dark    bool `json:"dark"`
	Premium bool `json:"premium"`
}

// NavigateResponse is the screen to show next.
type NavigateResponse struct {
	Screen view.Screen `json:"screen"`
}
