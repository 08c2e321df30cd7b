package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/example/expense-tracker/internal/models"
)

// Keys under which the middleware stores request values in the gin context.
const (
	ctxRequestID = "requestID"
	ctxClientID  = "clientID"
	ctxUserID    = "userID"
	ctxUser      = "user"
	ctxIDToken   = "idToken"
)

// ErrorResponse is the JSON body of every error the middleware writes. It
// mirrors api.ErrorResponse; the api package imports middleware, not the
// other way round.
type ErrorResponse struct {
	Error       string `json:"error"`
	Details     string `json:"details,omitempty"`
	ForceLogout bool   `json:"forceLogout,omitempty"`
}

// ClientID returns the id of the calling client, set by ClientCookie.
func ClientID(c *gin.Context) string {
	return c.GetString(ctxClientID)
}

// RequestID returns the id assigned by RequestLogger.
func RequestID(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}

// CurrentUser returns the user resolved by RequireSession, and its token.
func CurrentUser(c *gin.Context) (*models.User, string, bool) {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil, "", false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		return nil, "", false
	}
	return user, c.GetString(ctxIDToken), true
}
