package models

import "time"

// Audit actions recorded for profile and expense mutations.
const (
	AuditProfileUpdate = "PROFILE_UPDATE"
	AuditPhotoUpload   = "PROFILE_PHOTO_UPLOAD"
	AuditExpenseCreate = "EXPENSE_CREATE"
	AuditExpenseUpdate = "EXPENSE_UPDATE"
	AuditExpenseDelete = "EXPENSE_DELETE"
	AuditPremium       = "PREMIUM_ACTIVATE"
)

// AuditLog represents an audit trail event.
type AuditLog struct {
	ID         string                 `json:"id" firestore:"-"`
	Timestamp  time.Time              `json:"timestamp" firestore:"timestamp,serverTimestamp"`
	UserID     string                 `json:"userId" firestore:"userId"`
	Action     string                 `json:"action" firestore:"action"`
	TargetType string                 `json:"targetType,omitempty" firestore:"targetType,omitempty"` // "PROFILE" or "EXPENSE"
	TargetID   string                 `json:"targetId,omitempty" firestore:"targetId,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty" firestore:"details,omitempty"`
}
