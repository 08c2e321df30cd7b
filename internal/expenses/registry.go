package expenses

import (
	"sync"

	"go.uber.org/zap"

	"github.com/example/expense-tracker/internal/db"
)

// Registry keeps one List per user for the lifetime of the process.
type Registry struct {
	repo   db.ExpenseRepository
	logger *zap.Logger

	mu    sync.Mutex
	lists map[string]*List
}

func NewRegistry(repo db.ExpenseRepository, logger *zap.Logger) *Registry {
	return &Registry{repo: repo, logger: logger, lists: make(map[string]*List)}
}

// For returns the list of userID, creating it on first use.
func (r *Registry) For(userID string) *List {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lists[userID]
	if !ok {
		l = NewList(r.repo, userID, r.logger)
		r.lists[userID] = l
	}
	return l
}

// Drop forgets the list of userID, e.g. on logout.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lists, userID)
}
