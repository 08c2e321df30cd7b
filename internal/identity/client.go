// Package identity talks to the Firebase Identity Toolkit REST API: account
// creation, password sign-in, token lookup, out-of-band codes and profile
// updates. Every call is a JSON POST keyed by the web API key.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/example/expense-tracker/internal/metrics"
	"github.com/example/expense-tracker/internal/models"
)

// DefaultBaseURL is the production Identity Toolkit endpoint.
const DefaultBaseURL = "https://identitytoolkit.googleapis.com/v1"

const (
	requestTypePasswordReset = "PASSWORD_RESET"
	requestTypeVerifyEmail   = "VERIFY_EMAIL"
)

// ErrNoUser is returned by Lookup when the provider answers 2xx with an empty user list.
var ErrNoUser = errors.New("identity: token resolved to no user")

// ErrNotConfigured is returned when the client has no API key.
var ErrNotConfigured = errors.New("identity: missing API key")

// Credential is what signup and sign-in return.
type Credential struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
}

type lookupUser struct {
	LocalID       string `json:"localId"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	DisplayName   string `json:"displayName"`
	PhotoURL      string `json:"photoUrl"`
}

type lookupResponse struct {
	Users []lookupUser `json:"users"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client is an Identity Toolkit REST client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a Client. An empty baseURL means DefaultBaseURL.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SignUp creates an email/password account and returns its first credential.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Credential, error) {
	var cred Credential
	err := c.post(ctx, "signUp", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &cred)
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// SignIn exchanges email and password for a credential.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Credential, error) {
	var cred Credential
	err := c.post(ctx, "signInWithPassword", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &cred)
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// Lookup resolves an ID token to the user it was issued for.
func (c *Client) Lookup(ctx context.Context, idToken string) (*models.User, error) {
	var resp lookupResponse
	if err := c.post(ctx, "lookup", map[string]interface{}{"idToken": idToken}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Users) == 0 || resp.Users[0].LocalID == "" {
		return nil, ErrNoUser
	}
	u := resp.Users[0]
	return &models.User{
		ID:            u.LocalID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		DisplayName:   u.DisplayName,
		PhotoURL:      u.PhotoURL,
	}, nil
}

// SendPasswordReset asks the provider to email a password reset link.
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	return c.post(ctx, "sendOobCode", map[string]interface{}{
		"requestType": requestTypePasswordReset,
		"email":       email,
	}, nil)
}

// SendEmailVerification asks the provider to email a verification link to the
// owner of idToken.
func (c *Client) SendEmailVerification(ctx context.Context, idToken string) error {
	return c.post(ctx, "sendOobCode", map[string]interface{}{
		"requestType": requestTypeVerifyEmail,
		"idToken":     idToken,
	}, nil)
}

// UpdateAccount sets the display name and photo URL on the identity account.
func (c *Client) UpdateAccount(ctx context.Context, idToken, displayName, photoURL string) error {
	body := map[string]interface{}{
		"idToken":           idToken,
		"displayName":       displayName,
		"returnSecureToken": false,
	}
	if photoURL != "" {
		body["photoUrl"] = photoURL
	} else {
		body["deleteAttribute"] = []string{"PHOTO_URL"}
	}
	return c.post(ctx, "update", body, nil)
}

func (c *Client) endpoint(method string) string {
	return c.baseURL + "/accounts:" + method + "?key=" + url.QueryEscape(c.apiKey)
}

func (c *Client) post(ctx context.Context, method string, body interface{}, out interface{}) (err error) {
	if c.apiKey == "" {
		return ErrNotConfigured
	}

	start := time.Now()
	defer func() {
		metrics.ObserveRemote("identity", method, time.Since(start), err != nil)
	}()

	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "encoding request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(method), bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: method, Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return &NetworkError{Op: method, Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return parseProviderError(res.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(ErrMalformedResponse, "%s: %v", method, err)
	}
	return nil
}

func parseProviderError(status int, raw []byte) error {
	var er errorResponse
	code := ""
	if err := json.Unmarshal(raw, &er); err == nil {
		code = er.Error.Message
	}
	// Messages look like "WEAK_PASSWORD : Password should be at least 6 characters".
	detail := ""
	if i := strings.Index(code, " : "); i >= 0 {
		detail = code[i+3:]
		code = code[:i]
	}
	if code == "" {
		code = "UNKNOWN_ERROR"
	}
	return &ProviderError{Status: status, Code: strings.TrimSpace(code), Detail: detail}
}
