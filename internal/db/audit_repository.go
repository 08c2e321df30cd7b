package db

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/expense-tracker/internal/models"
)

const auditLogsCollection = "audit_logs"

// firestoreAuditRepository implements the AuditRepository interface using Firestore.
type firestoreAuditRepository struct {
	client *firestore.Client
}

// NewFirestoreAuditRepository creates a new instance of firestoreAuditRepository.
func NewFirestoreAuditRepository(client *firestore.Client) AuditRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for AuditRepository.")
	}
	return &firestoreAuditRepository{client: client}
}

// Create adds an audit log document with an auto-generated ID. Timestamp is
// filled server-side through the serverTimestamp tag.
func (r *firestoreAuditRepository) Create(ctx context.Context, logEntry models.AuditLog) error {
	docRef := r.client.Collection(auditLogsCollection).NewDoc()
	logEntry.ID = docRef.ID
	if _, err := docRef.Create(ctx, logEntry); err != nil {
		if status.Code(err) == codes.PermissionDenied {
			return fmt.Errorf("audit log write denied for user '%s': %w", logEntry.UserID, err)
		}
		return fmt.Errorf("failed to create audit log for user '%s': %w", logEntry.UserID, err)
	}
	return nil
}
