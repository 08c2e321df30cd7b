package db

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/example/expense-tracker/internal/models"
)

// expenseDocument is the stored shape of an expense. The field names are the
// ones existing data was written with, so they stay short.
type expenseDocument struct {
	Amount   float64 `json:"amount"`
	Desc     string  `json:"desc"`
	Category string  `json:"category"`
	Ts       int64   `json:"ts"`
}

func toDocument(amount decimal.Decimal, description string, category models.Category, ts int64) expenseDocument {
	return expenseDocument{
		Amount:   amount.Round(2).InexactFloat64(),
		Desc:     description,
		Category: string(category),
		Ts:       ts,
	}
}

func (d expenseDocument) toModel(id string) models.Expense {
	return models.Expense{
		ID:          id,
		Amount:      decimal.NewFromFloat(d.Amount).Round(2),
		Description: d.Desc,
		Category:    models.Category(d.Category),
		Timestamp:   d.Ts,
	}
}

// rtdbExpenseRepository implements ExpenseRepository on the realtime database.
type rtdbExpenseRepository struct {
	db *RealtimeDatabase
}

// NewExpenseRepository creates an ExpenseRepository backed by the realtime database.
func NewExpenseRepository(db *RealtimeDatabase) ExpenseRepository {
	return &rtdbExpenseRepository{db: db}
}

// List fetches the key→document map under users/{uid}/expenses and expands it
// into records carrying their store keys, newest first.
func (r *rtdbExpenseRepository) List(ctx context.Context, userID, idToken string) ([]models.Expense, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for expense List")
	}
	var raw json.RawMessage
	if err := r.db.do(ctx, "list_expenses", http.MethodGet, userPath(userID, "expenses"), idToken, nil, &raw); err != nil {
		return nil, err
	}
	docs, err := decodeCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: list_expenses: %v", ErrMalformedResponse, err)
	}

	list := make([]models.Expense, 0, len(docs))
	for id, doc := range docs {
		if doc == nil {
			continue
		}
		list = append(list, doc.toModel(id))
	}
	models.SortNewestFirst(list)
	return list, nil
}

// decodeCollection reads a collection in either of the shapes the database
// returns: an object keyed by id, or an array when every key is a small
// integer. Array holes come back as null and are skipped.
func decodeCollection(raw json.RawMessage) (map[string]*expenseDocument, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '[' {
		var items []*expenseDocument
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		docs := make(map[string]*expenseDocument, len(items))
		for i, doc := range items {
			docs[strconv.Itoa(i)] = doc
		}
		return docs, nil
	}
	var docs map[string]*expenseDocument
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Create appends a document; the database replies {"name": "<generated key>"}.
func (r *rtdbExpenseRepository) Create(ctx context.Context, userID, idToken string, draft models.ExpenseDraft) (string, error) {
	if userID == "" {
		return "", errors.New("userID cannot be empty for expense Create")
	}
	var resp struct {
		Name string `json:"name"`
	}
	doc := toDocument(draft.Amount, draft.Description, draft.Category, draft.Timestamp)
	if err := r.db.do(ctx, "create_expense", http.MethodPost, userPath(userID, "expenses"), idToken, doc, &resp); err != nil {
		return "", err
	}
	if resp.Name == "" {
		return "", ErrMalformedResponse
	}
	return resp.Name, nil
}

// Update replaces users/{uid}/expenses/{id}.
func (r *rtdbExpenseRepository) Update(ctx context.Context, userID, idToken string, expense models.Expense) error {
	if userID == "" || expense.ID == "" {
		return errors.New("userID and expense ID cannot be empty for expense Update")
	}
	doc := toDocument(expense.Amount, expense.Description, expense.Category, expense.Timestamp)
	return r.db.do(ctx, "update_expense", http.MethodPut, userPath(userID, "expenses", expense.ID), idToken, doc, nil)
}

// Delete removes users/{uid}/expenses/{id}.
func (r *rtdbExpenseRepository) Delete(ctx context.Context, userID, idToken, expenseID string) error {
	if userID == "" || expenseID == "" {
		return errors.New("userID and expense ID cannot be empty for expense Delete")
	}
	return r.db.do(ctx, "delete_expense", http.MethodDelete, userPath(userID, "expenses", expenseID), idToken, nil, nil)
}
