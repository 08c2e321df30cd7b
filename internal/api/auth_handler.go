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

const (
	msgResetSent        = "Check your email. We sent a password reset link. Follow the link to reset your password."
	msgVerificationSent = "Check your email. You should receive a verification link shortly. Click it to verify."
)

// AuthHandler handles signup, login and the other session endpoints.
type AuthHandler struct {
	errorMapper
	authService core.AuthService
	views       view.Controller
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as core.AuthService, sessions *session.Store, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{errorMapper: errorMapper{sessions: sessions, logger: logger}, authService: as}
}

// ConfigStatus handles GET /config/status
func (h *AuthHandler) ConfigStatus(c *gin.Context) {
	missing := h.authService.MissingConfig()
	c.JSON(http.StatusOK, ConfigStatusResponse{Configured: len(missing) == 0, Missing: missing})
}

// Session handles GET /session. It runs the startup check and reports the
// screen the client should open with.
func (h *AuthHandler) Session(c *gin.Context) {
	ctx := c.Request.Context()
	clientID := middleware.ClientID(c)

	status, err := h.authService.CheckSession(ctx, clientID)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	dark, err := h.sessions.Theme(ctx, clientID)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	premium, err := h.sessions.Premium(ctx, clientID)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		Authenticated: status.Authenticated,
		User:          status.User,
		Screen:        h.views.Initial(status.Authenticated),
		Dark:          dark,
		Premium:       premium,
		Missing:       h.authService.MissingConfig(),
	})
}

// SignUp handles POST /auth/signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	sess, err := h.authService.SignUp(c.Request.Context(), middleware.ClientID(c), req)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	screen, _ := h.views.Navigate(view.ScreenSignUp, view.EventSignUpSucceeded, true)
	c.JSON(http.StatusCreated, AuthResponse{User: sess.User, Screen: screen})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	sess, err := h.authService.Login(c.Request.Context(), middleware.ClientID(c), req)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	screen, _ := h.views.Navigate(view.ScreenLogin, view.EventLoginSucceeded, true)
	c.JSON(http.StatusOK, AuthResponse{User: sess.User, Screen: screen})
}

// PasswordReset handles POST /auth/password-reset
func (h *AuthHandler) PasswordReset(c *gin.Context) {
	var req models.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	if err := h.authService.SendPasswordReset(c.Request.Context(), req); err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: msgResetSent})
}

// Logout handles POST /auth/logout. It succeeds for clients that are not
// signed in too.
func (h *AuthHandler) Logout(c *gin.Context) {
	var userID string
	if user, _, ok := middleware.CurrentUser(c); ok {
		userID = user.ID
	}
	if err := h.authService.Logout(c.Request.Context(), middleware.ClientID(c), userID); err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, NavigateResponse{Screen: view.ScreenLogin})
}

// VerifyEmail handles POST /auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	_, idToken, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User not found in context"})
		return
	}

	if err := h.authService.SendEmailVerification(c.Request.Context(), idToken); err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: msgVerificationSent})
}

// ActivatePremium handles POST /premium/activate
func (h *AuthHandler) ActivatePremium(c *gin.Context) {
	user, idToken, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User not found in context"})
		return
	}

	if err := h.authService.ActivatePremium(c.Request.Context(), middleware.ClientID(c), user.ID, idToken); err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, PreferencesResponse{Dark: h.currentTheme(c), Premium: true})
}

func (h *AuthHandler) currentTheme(c *gin.Context) bool {
	dark, err := h.sessions.Theme(c.Request.Context(), middleware.ClientID(c))
	if err != nil {
		return false
	}
	return dark
}
