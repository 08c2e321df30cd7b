package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/expense-tracker/internal/models"
	"github.com/example/expense-tracker/internal/session"
)

// TokenResolver turns an ID token into the user it was issued to.
type TokenResolver interface {
	Resolve(ctx context.Context, idToken string) (*models.User, error)
}

// LookupResolver resolves tokens through the identity provider's lookup
// endpoint, which needs only the web API key.
type LookupResolver struct {
	Lookup session.Lookuper
}

func (r LookupResolver) Resolve(ctx context.Context, idToken string) (*models.User, error) {
	return r.Lookup.Lookup(ctx, idToken)
}

// AdminResolver verifies tokens locally with the Firebase Admin SDK.
type AdminResolver struct {
	Client *auth.Client
}

func (r AdminResolver) Resolve(ctx context.Context, idToken string) (*models.User, error) {
	token, err := r.Client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	user := &models.User{ID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		user.Email = email
	}
	if verified, ok := token.Claims["email_verified"].(bool); ok {
		user.EmailVerified = verified
	}
	if name, ok := token.Claims["name"].(string); ok {
		user.DisplayName = name
	}
	if picture, ok := token.Claims["picture"].(string); ok {
		user.PhotoURL = picture
	}
	return user, nil
}

// AuthMiddleware provides Gin middleware that requires a signed-in client.
type AuthMiddleware struct {
	resolver TokenResolver
	sessions *session.Store
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(resolver TokenResolver, sessions *session.Store, logger *zap.Logger) *AuthMiddleware {
	if resolver == nil || sessions == nil {
		panic("AuthMiddleware requires a TokenResolver and a session.Store")
	}
	return &AuthMiddleware{resolver: resolver, sessions: sessions, logger: logger}
}

// RequireSession takes the token stored for the client, or a Bearer token
// from the Authorization header when the client has none, and resolves it.
// A stored token that fails to resolve is cleared and the response tells the
// client to log out.
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := ClientID(c)

		idToken, stored, err := m.sessions.Get(c.Request.Context(), clientID)
		if err != nil {
			m.logger.Error("Failed to read session", zap.String("client_id", clientID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read session"})
			return
		}
		if !stored {
			idToken = bearerToken(c.GetHeader("Authorization"))
		}
		if idToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Not signed in"})
			return
		}

		user, err := m.resolver.Resolve(c.Request.Context(), idToken)
		if err != nil || user == nil {
			m.logger.Info("Rejected session token", zap.String("client_id", clientID), zap.Bool("stored", stored), zap.Error(err))
			if stored {
				if clearErr := m.sessions.Clear(c.Request.Context(), clientID); clearErr != nil {
					m.logger.Error("Failed to clear rejected session", zap.String("client_id", clientID), zap.Error(clearErr))
				}
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error:       "Your session is invalid or expired. Please log out and sign in again.",
				ForceLogout: true,
			})
			return
		}

		c.Set(ctxUserID, user.ID)
		c.Set(ctxUser, user)
		c.Set(ctxIDToken, idToken)
		c.Next()
	}
}

// OptionalSession resolves the stored token when there is one, without ever
// rejecting the request.
func (m *AuthMiddleware) OptionalSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		idToken, stored, err := m.sessions.Get(c.Request.Context(), ClientID(c))
		if err == nil && stored {
			if user, err := m.resolver.Resolve(c.Request.Context(), idToken); err == nil && user != nil {
				c.Set(ctxUserID, user.ID)
				c.Set(ctxUser, user)
				c.Set(ctxIDToken, idToken)
			}
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
