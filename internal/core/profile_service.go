package core

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/example/expense-tracker/internal/db"
	"github.com/example/expense-tracker/internal/identity"
	"github.com/example/expense-tracker/internal/models"
	"github.com/example/expense-tracker/internal/validation"
)

// profileService implements the ProfileService interface.
type profileService struct {
	profileRepo  db.ProfileRepository
	photos       db.PhotoStorage
	identity     IdentityProvider
	auditService AuditService
	logger       *zap.Logger
}

// NewProfileService creates a new ProfileService instance. photos may be nil
// when no storage bucket is configured.
func NewProfileService(pr db.ProfileRepository, photos db.PhotoStorage, idp IdentityProvider, as AuditService, logger *zap.Logger) ProfileService {
	return &profileService{
		profileRepo:  pr,
		photos:       photos,
		identity:     idp,
		auditService: as,
		logger:       logger,
	}
}

func (s *profileService) Get(ctx context.Context, userID, idToken string) (*models.Profile, error) {
	profile, err := s.profileRepo.Get(ctx, userID, idToken)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	return profile, nil
}

// Update validates req, overwrites the stored profile and mirrors display name
// and photo onto the identity account. The account update is best effort: the
// profile record is the source of truth.
func (s *profileService) Update(ctx context.Context, userID, idToken string, req models.ProfileRequest) (*models.Profile, error) {
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.PhotoURL = strings.TrimSpace(req.PhotoURL)
	if err := validationFailure(validation.Profile, req); err != nil {
		return nil, err
	}

	profile := models.Profile{
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		PhotoURL:    req.PhotoURL,
		UpdatedAt:   models.NowMillis(),
	}
	if err := s.profileRepo.Put(ctx, userID, idToken, profile); err != nil {
		return nil, classifyStoreError(err)
	}

	if err := s.identity.UpdateAccount(ctx, idToken, profile.DisplayName, profile.PhotoURL); err != nil {
		s.logger.Warn("Profile saved but identity account update failed",
			zap.String("user_id", userID), zap.String("reason", identity.FriendlyMessage(identity.FlowUpdateAccount, err)))
	}

	recordAudit(ctx, s.auditService, s.logger, models.AuditLog{
		UserID:     userID,
		Action:     models.AuditProfileUpdate,
		TargetType: "PROFILE",
		TargetID:   userID,
	})
	return &profile, nil
}

func (s *profileService) UploadPhoto(ctx context.Context, userID, fileName, contentType string, content io.Reader) (string, error) {
	if s.photos == nil {
		return "", ErrPhotoStorageUnavailable
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: got %q", ErrInvalidPhoto, contentType)
	}

	photoURL, err := s.photos.Upload(ctx, userID, fileName, contentType, content)
	if err != nil {
		return "", &NetworkError{Message: "Failed to upload photo", Err: err}
	}

	recordAudit(ctx, s.auditService, s.logger, models.AuditLog{
		UserID:     userID,
		Action:     models.AuditPhotoUpload,
		TargetType: "PROFILE",
		TargetID:   userID,
		Details:    map[string]interface{}{"fileName": fileName},
	})
	return photoURL, nil
}
