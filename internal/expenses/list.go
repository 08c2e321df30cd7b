// Package expenses holds the in-memory expense list of a signed-in user.
// The list only ever exposes records the realtime database has confirmed;
// in-flight mutations are tracked separately as pending entries.
package expenses

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/expense-tracker/internal/db"
	"github.com/example/expense-tracker/internal/metrics"
	"github.com/example/expense-tracker/internal/models"
)

var (
	// ErrBusy is returned when a mutation is attempted while another one is
	// still submitting.
	ErrBusy = errors.New("expenses: another change is being saved")
	// ErrStale is returned when the caller went away before the remote result
	// arrived. The result is discarded and the list is left as it was.
	ErrStale = errors.New("expenses: result arrived after the request was cancelled")
	// ErrNotFound is returned for edits and deletes of ids the list does not hold.
	ErrNotFound = errors.New("expenses: expense not found")
)

// State is the lifecycle of a List.
type State int

const (
	StateLoading State = iota
	StateReady
)

func (s State) String() string {
	if s == StateReady {
		return "ready"
	}
	return "loading"
}

// Op names a pending mutation.
type Op string

const (
	OpAdd    Op = "add"
	OpEdit   Op = "edit"
	OpDelete Op = "delete"
)

// PendingEntry is a mutation that has been sent but not yet confirmed.
// Key is the expense id for edits and deletes and a local placeholder for adds.
type PendingEntry struct {
	Key string `json:"key"`
	Op  Op     `json:"op"`
}

// List is the expense list of one user. It is safe for concurrent use.
type List struct {
	repo   db.ExpenseRepository
	userID string
	logger *zap.Logger

	mu         sync.Mutex
	state      State
	items      []models.Expense
	pending    map[string]Op
	submitting bool
	// generation counts confirmed mutations. A load that started before the
	// latest confirmation carries older data and is not applied.
	generation uint64
}

// NewList creates an empty list in the loading state.
func NewList(repo db.ExpenseRepository, userID string, logger *zap.Logger) *List {
	return &List{
		repo:    repo,
		userID:  userID,
		logger:  logger,
		state:   StateLoading,
		pending: make(map[string]Op),
	}
}

// State returns the current lifecycle state.
func (l *List) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Snapshot returns a copy of the confirmed records, newest first.
func (l *List) Snapshot() []models.Expense {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Expense, len(l.items))
	copy(out, l.items)
	return out
}

// Pending lists the mutations currently in flight.
func (l *List) Pending() []PendingEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]PendingEntry, 0, len(l.pending))
	for key, op := range l.pending {
		out = append(out, PendingEntry{Key: key, Op: op})
	}
	return out
}

// Total sums the confirmed amounts.
func (l *List) Total() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return models.TotalAmount(l.items)
}

// Load replaces the list with the remote records. On failure the previous
// records are kept and the list still becomes ready. When a mutation was
// confirmed while the records were in flight, they predate it; the list is
// left as it is and its current records are returned.
func (l *List) Load(ctx context.Context, idToken string) ([]models.Expense, error) {
	l.mu.Lock()
	started := l.generation
	l.mu.Unlock()

	records, err := l.repo.List(ctx, l.userID, idToken)
	if staleErr := l.checkStale(ctx, "load"); staleErr != nil {
		return nil, staleErr
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.generation != started {
		l.logger.Debug("Discarding expense load overtaken by a confirmed change",
			zap.String("user_id", l.userID))
		return l.copyLocked(), nil
	}
	l.state = StateReady
	if err != nil {
		return nil, errors.Wrap(err, "load expenses")
	}
	l.items = records
	models.SortNewestFirst(l.items)
	return l.copyLocked(), nil
}

// Add creates draft remotely and, once the database returns its id, inserts
// the confirmed record.
func (l *List) Add(ctx context.Context, idToken string, draft models.ExpenseDraft) (models.Expense, error) {
	key := "new:" + uuid.NewString()
	if err := l.begin(key, OpAdd); err != nil {
		return models.Expense{}, err
	}
	defer l.finish(key)

	id, err := l.repo.Create(ctx, l.userID, idToken, draft)
	if staleErr := l.checkStale(ctx, "add"); staleErr != nil {
		return models.Expense{}, staleErr
	}
	if err != nil {
		return models.Expense{}, errors.Wrap(err, "add expense")
	}

	record := draft.WithID(id)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.upsertLocked(record)
	return record, nil
}

// Edit replaces amount, description and category of the expense with id. The
// creation timestamp is kept.
func (l *List) Edit(ctx context.Context, idToken, id string, draft models.ExpenseDraft) (models.Expense, error) {
	l.mu.Lock()
	current, ok := l.findLocked(id)
	l.mu.Unlock()
	if !ok {
		return models.Expense{}, ErrNotFound
	}

	if err := l.begin(id, OpEdit); err != nil {
		return models.Expense{}, err
	}
	defer l.finish(id)

	updated := current
	updated.Amount = draft.Amount
	updated.Description = draft.Description
	updated.Category = draft.Category

	err := l.repo.Update(ctx, l.userID, idToken, updated)
	if staleErr := l.checkStale(ctx, "edit"); staleErr != nil {
		return models.Expense{}, staleErr
	}
	if err != nil {
		return models.Expense{}, errors.Wrap(err, "edit expense")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.upsertLocked(updated)
	return updated, nil
}

// Delete removes the expense with id remotely and then from the list.
func (l *List) Delete(ctx context.Context, idToken, id string) error {
	l.mu.Lock()
	_, ok := l.findLocked(id)
	l.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	if err := l.begin(id, OpDelete); err != nil {
		return err
	}
	defer l.finish(id)

	err := l.repo.Delete(ctx, l.userID, idToken, id)
	if staleErr := l.checkStale(ctx, "delete"); staleErr != nil {
		return staleErr
	}
	if err != nil {
		return errors.Wrap(err, "delete expense")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.generation++
	for i := range l.items {
		if l.items[i].ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			break
		}
	}
	return nil
}

func (l *List) begin(key string, op Op) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.submitting {
		return ErrBusy
	}
	l.submitting = true
	l.pending[key] = op
	return nil
}

func (l *List) finish(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.pending, key)
	l.submitting = false
}

func (l *List) checkStale(ctx context.Context, op string) error {
	if ctx.Err() == nil {
		return nil
	}
	metrics.StaleResult(op)
	l.logger.Debug("Discarding expense result for cancelled request",
		zap.String("user_id", l.userID), zap.String("operation", op))
	return ErrStale
}

func (l *List) findLocked(id string) (models.Expense, bool) {
	for _, e := range l.items {
		if e.ID == id {
			return e, true
		}
	}
	return models.Expense{}, false
}

// upsertLocked confirms record, replacing any copy already in the list.
func (l *List) upsertLocked(record models.Expense) {
	l.generation++
	replaced := false
	for i := range l.items {
		if l.items[i].ID == record.ID {
			l.items[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		l.items = append(l.items, record)
	}
	models.SortNewestFirst(l.items)
}

func (l *List) copyLocked() []models.Expense {
	out := make([]models.Expense, len(l.items))
	copy(out, l.items)
	return out
}
