package models

// User is the identity resolved from a session token by the identity provider.
type User struct {
	ID            string `json:"id"` // Firebase Auth UID (localId)
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	DisplayName   string `json:"displayName,omitempty"`
	PhotoURL      string `json:"photoUrl,omitempty"`
}
