package core

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/example/expense-tracker/internal/expenses"
	"github.com/example/expense-tracker/internal/models"
	"github.com/example/expense-tracker/internal/validation"
)

// expenseService implements the ExpenseService interface on top of the
// per-user lists, so confirmed state is shared by every request of a user.
type expenseService struct {
	lists        *expenses.Registry
	auditService AuditService
	logger       *zap.Logger
}

// NewExpenseService creates a new ExpenseService instance.
func NewExpenseService(lists *expenses.Registry, as AuditService, logger *zap.Logger) ExpenseService {
	return &expenseService{
		lists:        lists,
		auditService: as,
		logger:       logger,
	}
}

// classifyListError keeps list sentinels visible to handlers.
func classifyListError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, expenses.ErrBusy), errors.Is(err, expenses.ErrStale):
		return err
	case errors.Is(err, expenses.ErrNotFound):
		return ErrExpenseNotFound
	}
	return classifyStoreError(err)
}

func parseDraft(req models.ExpenseRequest) (models.ExpenseDraft, error) {
	draft, errs := validation.ParseExpense(req)
	if !errs.Valid() {
		return models.ExpenseDraft{}, &ValidationError{Fields: errs}
	}
	return draft, nil
}

// List reloads the user's expenses from the database.
func (s *expenseService) List(ctx context.Context, userID, idToken string) ([]models.Expense, error) {
	records, err := s.lists.For(userID).Load(ctx, idToken)
	if err != nil {
		return nil, classifyListError(err)
	}
	return records, nil
}

func (s *expenseService) Create(ctx context.Context, userID, idToken string, req models.ExpenseRequest) (*models.Expense, error) {
	draft, err := parseDraft(req)
	if err != nil {
		return nil, err
	}
	draft.Timestamp = models.NowMillis()

	record, err := s.lists.For(userID).Add(ctx, idToken, draft)
	if err != nil {
		return nil, classifyListError(err)
	}
	s.audit(ctx, userID, models.AuditExpenseCreate, record)
	return &record, nil
}

func (s *expenseService) Update(ctx context.Context, userID, idToken, expenseID string, req models.ExpenseRequest) (*models.Expense, error) {
	draft, err := parseDraft(req)
	if err != nil {
		return nil, err
	}

	list := s.lists.For(userID)
	if list.State() == expenses.StateLoading {
		if _, err := list.Load(ctx, idToken); err != nil {
			return nil, classifyListError(err)
		}
	}
	record, err := list.Edit(ctx, idToken, expenseID, draft)
	if err != nil {
		return nil, classifyListError(err)
	}
	s.audit(ctx, userID, models.AuditExpenseUpdate, record)
	return &record, nil
}

func (s *expenseService) Delete(ctx context.Context, userID, idToken, expenseID string) error {
	list := s.lists.For(userID)
	if list.State() == expenses.StateLoading {
		if _, err := list.Load(ctx, idToken); err != nil {
			return classifyListError(err)
		}
	}
	if err := list.Delete(ctx, idToken, expenseID); err != nil {
		return classifyListError(err)
	}
	s.audit(ctx, userID, models.AuditExpenseDelete, models.Expense{ID: expenseID})
	return nil
}

func (s *expenseService) Summary(userID string) ExpenseSummary {
	list := s.lists.For(userID)
	return ExpenseSummary{
		State:   list.State().String(),
		Total:   list.Total(),
		Pending: list.Pending(),
	}
}

func (s *expenseService) audit(ctx context.Context, userID, action string, record models.Expense) {
	entry := models.AuditLog{
		UserID:     userID,
		Action:     action,
		TargetType: "EXPENSE",
		TargetID:   record.ID,
	}
	if action != models.AuditExpenseDelete {
		entry.Details = map[string]interface{}{
			"amount":   record.Amount.StringFixed(2),
			"category": string(record.Category),
		}
	}
	recordAudit(ctx, s.auditService, s.logger, entry)
}
