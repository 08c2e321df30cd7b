package models

// Profile is the user-owned profile document stored at users/{uid}/profile.
// Every submission replaces the whole record; there is no field merge.
type Profile struct {
	DisplayName string `json:"displayName"`
	Phone       string `json:"phone"`
	PhotoURL    string `json:"photoUrl"`
	UpdatedAt   int64  `json:"updatedAt"` // unix milliseconds
}
