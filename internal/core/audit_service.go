package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/expense-tracker/internal/db"
	"github.com/example/expense-tracker/internal/models"
)

// auditService implements the AuditService interface.
type auditService struct {
	auditRepo db.AuditRepository
}

// NewAuditService creates a new AuditService instance. A nil repository
// yields a service that accepts and drops every entry, used when audit
// logging is disabled.
func NewAuditService(auditRepo db.AuditRepository) AuditService {
	return &auditService{
		auditRepo: auditRepo,
	}
}

// CreateAuditLog creates a new audit log entry.
func (s *auditService) CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error {
	if s.auditRepo == nil {
		return nil
	}
	if err := s.auditRepo.Create(ctx, logEntry); err != nil {
		return fmt.Errorf("failed to create audit log via repository: %w", err)
	}
	return nil
}

// recordAudit writes an audit entry and only logs a failure; auditing never
// fails the user's operation.
func recordAudit(ctx context.Context, audit AuditService, logger *zap.Logger, entry models.AuditLog) {
	if audit == nil {
		return
	}
	if err := audit.CreateAuditLog(ctx, entry); err != nil {
		logger.Warn("Failed to write audit log",
			zap.String("action", entry.Action), zap.String("user_id", entry.UserID), zap.Error(err))
	}
}
