package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/expense-tracker/internal/middleware"
	"github.com/example/expense-tracker/internal/models"
	"github.com/example/expense-tracker/internal/session"
	"github.com/example/expense-tracker/internal/view"
)

// PreferenceHandler handles the theme preference and view navigation. Both
// work without a signed-in user.
type PreferenceHandler struct {
	errorMapper
	views view.Controller
}

// NewPreferenceHandler creates a new PreferenceHandler.
func NewPreferenceHandler(sessions *session.Store, logger *zap.Logger) *PreferenceHandler {
	return &PreferenceHandler{errorMapper: errorMapper{sessions: sessions, logger: logger}}
}

func (h *PreferenceHandler) respond(c *gin.Context, dark bool) {
	premium, err := h.sessions.Premium(c.Request.Context(), middleware.ClientID(c))
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, PreferencesResponse{Dark: dark, Premium: premium})
}

// GetPreferences handles GET /preferences
func (h *PreferenceHandler) GetPreferences(c *gin.Context) {
	dark, err := h.sessions.Theme(c.Request.Context(), middleware.ClientID(c))
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	h.respond(c, dark)
}

// ToggleTheme handles POST /preferences/theme/toggle
func (h *PreferenceHandler) ToggleTheme(c *gin.Context) {
	dark, err := h.sessions.ToggleTheme(c.Request.Context(), middleware.ClientID(c))
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	h.respond(c, dark)
}

// SetTheme handles PUT /preferences/theme
func (h *PreferenceHandler) SetTheme(c *gin.Context) {
	var req models.ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	if err := h.sessions.SetTheme(c.Request.Context(), middleware.ClientID(c), req.Dark); err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	h.respond(c, req.Dark)
}

// Navigate handles POST /view/navigate. Session presence is read from the
// store, so a client cannot navigate itself onto a protected screen.
func (h *PreferenceHandler) Navigate(c *gin.Context) {
	var req models.NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	_, authenticated, err := h.sessions.Get(c.Request.Context(), middleware.ClientID(c))
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}

	screen, err := h.views.Navigate(view.Screen(req.From), view.Event(req.Event), authenticated)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, NavigateResponse{Screen: screen})
}
