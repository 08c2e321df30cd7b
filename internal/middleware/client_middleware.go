package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// ClientCookieName is the cookie that identifies a browser to the session store.
const ClientCookieName = "et_client"

// ClientSessionKey is the value of the client cookie that holds the client id.
const ClientSessionKey = "client_id"

const clientCookieMaxAge = 365 * 24 * 60 * 60

// NewClientStore creates the signed cookie store for client ids. secret is
// the HMAC key; a cookie signed with another key is treated as absent.
func NewClientStore(secret []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   clientCookieMaxAge,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// ClientCookie assigns every browser a stable client id. The id keys the
// session token, the theme preference and the premium flag; it is not a
// credential by itself.
func ClientCookie(store sessions.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get returns a fresh session alongside the error for tampered cookies.
		sess, err := store.Get(c.Request, ClientCookieName)
		if err != nil {
			logger.Debug("Discarding unverifiable client cookie", zap.Error(err))
		}

		clientID, _ := sess.Values[ClientSessionKey].(string)
		if uuid.Validate(clientID) != nil {
			clientID = uuid.NewString()
			sess.Values[ClientSessionKey] = clientID
			if err := sess.Save(c.Request, c.Writer); err != nil {
				logger.Error("Failed to issue client cookie", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to initialize client session"})
				return
			}
		}
		c.Set(ctxClientID, clientID)
		c.Next()
	}
}
