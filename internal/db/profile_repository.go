package db

import (
	"context"
	"errors"
	"net/http"

	"github.com/example/expense-tracker/internal/models"
)

// rtdbProfileRepository implements ProfileRepository on the realtime database.
type rtdbProfileRepository struct {
	db *RealtimeDatabase
}

// NewProfileRepository creates a ProfileRepository backed by the realtime database.
func NewProfileRepository(db *RealtimeDatabase) ProfileRepository {
	return &rtdbProfileRepository{db: db}
}

// Get reads users/{uid}/profile. The database answers JSON null for a missing
// document, which decodes to a nil pointer.
func (r *rtdbProfileRepository) Get(ctx context.Context, userID, idToken string) (*models.Profile, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for profile Get")
	}
	var profile *models.Profile
	if err := r.db.do(ctx, "get_profile", http.MethodGet, userPath(userID, "profile"), idToken, nil, &profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Put overwrites users/{uid}/profile with the given record.
func (r *rtdbProfileRepository) Put(ctx context.Context, userID, idToken string, profile models.Profile) error {
	if userID == "" {
		return errors.New("userID cannot be empty for profile Put")
	}
	return r.db.do(ctx, "put_profile", http.MethodPut, userPath(userID, "profile"), idToken, profile, nil)
}
