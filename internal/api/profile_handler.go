package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/expense-tracker/internal/core"
	"github.com/example/expense-tracker/internal/middleware"
	"github.com/example/expense-tracker/internal/models"
	"github.com/example/expense-tracker/internal/session"
	"github.com/example/expense-tracker/internal/view"
)

// maxPhotoBytes limits profile photo uploads.
const maxPhotoBytes = 5 << 20

// ProfileHandler handles API endpoints related to the user profile.
type ProfileHandler struct {
	errorMapper
	profileService core.ProfileService
	views          view.Controller
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(ps core.ProfileService, sessions *session.Store, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{errorMapper: errorMapper{sessions: sessions, logger: logger}, profileService: ps}
}

// GetProfile handles GET /profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	user, idToken, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User not found in context"})
		return
	}

	profile, err := h.profileService.Get(c.Request.Context(), user.ID, idToken)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{
		Profile:  profile,
		Complete: profile != nil && profile.DisplayName != "",
	})
}

// UpdateProfile handles PUT /profile. The whole profile is replaced.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	user, idToken, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User not found in context"})
		return
	}

	var req models.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	profile, err := h.profileService.Update(c.Request.Context(), user.ID, idToken, req)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	screen, _ := h.views.Navigate(view.ScreenProfile, view.EventProfileUpdated, true)
	c.JSON(http.StatusOK, ProfileResponse{Profile: profile, Complete: true, Screen: screen})
}

// UploadPhoto handles POST /profile/photo with a multipart "photo" file. It
// returns the URL to put into the profile; the profile itself is unchanged.
func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	user, _, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User not found in context"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoBytes+1024)
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		badPayload(c, err)
		return
	}
	if fileHeader.Size > maxPhotoBytes {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "Photo must be 5 MB or smaller"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		badPayload(c, err)
		return
	}
	defer file.Close()

	photoURL, err := h.profileService.UploadPhoto(c.Request.Context(), user.ID, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, PhotoResponse{PhotoURL: photoURL})
}
