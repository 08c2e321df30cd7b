package api

import (
	"encoding/json"
	"time"

	"github.com/example/expense-tracker/internal/models"
)

func newExpenseView(e models.Expense) ExpenseView {
	return ExpenseView{
		ID:              e.ID,
		Amount:          json.Number(e.Amount.StringFixed(2)),
		FormattedAmount: e.FormattedAmount(),
		Description:     e.Description,
		Category:        e.Category,
		Timestamp:       e.Timestamp,
		CreatedAt:       e.CreatedAt().UTC().Format(time.RFC3339),
	}
}

func newExpenseViews(list []models.Expense) []ExpenseView {
	out := make([]ExpenseView, 0, len(list))
	for _, e := range list {
		out = append(out, newExpenseView(e))
	}
	return out
}
