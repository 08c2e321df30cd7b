package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/expense-tracker/internal/cache"
	"github.com/example/expense-tracker/internal/config"
	"github.com/example/expense-tracker/internal/core"
	"github.com/example/expense-tracker/internal/expenses"
	"github.com/example/expense-tracker/internal/middleware"
	"github.com/example/expense-tracker/internal/models"
	"github.com/example/expense-tracker/internal/session"
	"github.com/example/expense-tracker/internal/validation"
)

const testClientID = "0b6f3c1e-5a7d-4e8f-9a1b-2c3d4e5f6a7b"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuth struct {
	sessions  *session.Store
	missing   []string
	status    session.Status
	err       error
	premium   error
	loggedOut string
}

func (f *fakeAuth) SignUp(ctx context.Context, clientID string, _ models.SignUpRequest) (*core.Session, error) {
	if len(f.missing) > 0 {
		return nil, &core.NotConfiguredError{Missing: f.missing}
	}
	return f.login(ctx, clientID)
}

func (f *fakeAuth) Login(ctx context.Context, clientID string, _ models.LoginRequest) (*core.Session, error) {
	return f.login(ctx, clientID)
}

func (f *fakeAuth) login(ctx context.Context, clientID string) (*core.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := f.sessions.Set(ctx, clientID, "tok"); err != nil {
		return nil, err
	}
	return &core.Session{Token: "tok", User: &models.User{ID: "user123", Email: "a@b.com"}}, nil
}

func (f *fakeAuth) SendPasswordReset(context.Context, models.PasswordResetRequest) error { return f.err }
func (f *fakeAuth) SendEmailVerification(context.Context, string) error { return f.err }

func (f *fakeAuth) Logout(ctx context.Context, clientID, userID string) error {
	f.loggedOut = userID
	return f.sessions.Clear(ctx, clientID)
}

func (f *fakeAuth) CheckSession(context.Context, string) (session.Status, error) {
	return f.status, f.err
}

func (f *fakeAuth) ActivatePremium(ctx context.Context, clientID, _, _ string) error {
	if f.premium != nil {
		return f.premium
	}
	return f.sessions.SetPremium(ctx, clientID)
}

func (f *fakeAuth) MissingConfig() []string { return f.missing }

type fakeProfile struct {
	profile  *models.Profile
	err      error
	photoURL string
}

func (f *fakeProfile) Get(context.Context, string, string) (*models.Profile, error) {
	return f.profile, f.err
}

func (f *fakeProfile) Update(_ context.Context, _, _ string, req models.ProfileRequest) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Profile{DisplayName: req.DisplayName, Phone: req.Phone, PhotoURL: req.PhotoURL, UpdatedAt: 1}, nil
}

func (f *fakeProfile) UploadPhoto(_ context.Context, _, _, contentType string, content io.Reader) (string, error) {
	if contentType != "image/png" {
		return "", core.ErrInvalidPhoto
	}
	if _, err := io.ReadAll(content); err != nil {
		return "", err
	}
	return f.photoURL, nil
}

type fakeExpense struct {
	records []models.Expense
	err     error
}

func (f *fakeExpense) List(context.Context, string, string) ([]models.Expense, error) {
	return f.records, f.err
}

func (f *fakeExpense) Create(_ context.Context, _, _ string, req models.ExpenseRequest) (*models.Expense, error) {
	if f.err != nil {
		return nil, f.err
	}
	draft, errs := validation.ParseExpense(req)
	if !errs.Valid() {
		return nil, &core.ValidationError{Fields: errs}
	}
	record := draft.WithID("new-id")
	return &record, nil
}

func (f *fakeExpense) Update(_ context.Context, _, _, id string, req models.ExpenseRequest) (*models.Expense, error) {
	if f.err != nil {
		return nil, f.err
	}
	draft, _ := validation.ParseExpense(req)
	record := draft.WithID(id)
	return &record, nil
}

func (f *fakeExpense) Delete(context.Context, string, string, string) error { return f.err }

func (f *fakeExpense) Summary(string) core.ExpenseSummary {
	return core.ExpenseSummary{State: "ready", Total: models.TotalAmount(f.records), Pending: []expenses.PendingEntry{}}
}

type fakeResolver struct{}

func (fakeResolver) Resolve(_ context.Context, token string) (*models.User, error) {
	if token != "tok" {
		return nil, &core.AuthError{Message: "invalid"}
	}
	return &models.User{ID: "user123", Email: "a@b.com"}, nil
}

type testServer struct {
	router   *gin.Engine
	cookie   *http.Cookie
	sessions *session.Store
	auth     *fakeAuth
	profile  *fakeProfile
	expense  *fakeExpense
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	sessions := session.NewStore(cache.NewMemoryCache(), 0, logger)
	ts := &testServer{
		router:   gin.New(),
		sessions: sessions,
		auth:     &fakeAuth{sessions: sessions},
		profile:  &fakeProfile{},
		expense:  &fakeExpense{},
	}
	clients := middleware.NewClientStore([]byte("0123456789abcdef0123456789abcdef"), false)
	encoded, err := securecookie.EncodeMulti(middleware.ClientCookieName,
		map[interface{}]interface{}{middleware.ClientSessionKey: testClientID}, clients.Codecs...)
	require.NoError(t, err)
	ts.cookie = &http.Cookie{Name: middleware.ClientCookieName, Value: encoded}

	SetupRoutes(ts.router, &config.Config{GinMode: gin.TestMode}, logger, Services{
		Auth:     ts.auth,
		Profile:  ts.profile,
		Expense:  ts.expense,
		Sessions: sessions,
		Clients:  clients,
		Resolver: fakeResolver{},
	})
	return ts
}

func (ts *testServer) signIn(t *testing.T) {
	t.Helper()
	require.NoError(t, ts.sessions.Set(context.Background(), testClientID, "tok"))
}

func (ts *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(ts.cookie)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func Test_Health(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "UP")
}

func Test_ConfigStatus(t *testing.T) {
	ts := newTestServer(t)
	ts.auth.missing = []string{"apiKey"}

	var resp ConfigStatusResponse
	decode(t, ts.do(http.MethodGet, "/api/v1/config/status", nil), &resp)
	assert.False(t, resp.Configured)
	assert.Equal(t, []string{"apiKey"}, resp.Missing)
}

func Test_SignUp_NotConfigured(t *testing.T) {
	ts := newTestServer(t)
	ts.auth.missing = []string{"apiKey", "databaseURL"}

	w := ts.do(http.MethodPost, "/api/v1/auth/signup", models.SignUpRequest{Email: "a@b.com"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, []string{"apiKey", "databaseURL"}, resp.Missing)
}

func Test_Login_NavigatesHome(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/v1/auth/login", models.LoginRequest{Email: "a@b.com", Password: "x"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp AuthResponse
	decode(t, w, &resp)
	assert.Equal(t, "home", string(resp.Screen))
	assert.Equal(t, "user123", resp.User.ID)
}

func Test_Login_Rejected(t *testing.T) {
	ts := newTestServer(t)
	ts.auth.err = &core.AuthError{Message: "Incorrect password"}

	w := ts.do(http.MethodPost, "/api/v1/auth/login", models.LoginRequest{Email: "a@b.com", Password: "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, "Incorrect password", resp.Error)
	assert.False(t, resp.ForceLogout)
}

func Test_Session_StartupCheck(t *testing.T) {
	ts := newTestServer(t)

	var resp SessionResponse
	decode(t, ts.do(http.MethodGet, "/api/v1/session", nil), &resp)
	assert.False(t, resp.Authenticated)
	assert.Equal(t, "login", string(resp.Screen))

	ts.auth.status = session.Status{Authenticated: true, User: &models.User{ID: "user123"}}
	decode(t, ts.do(http.MethodGet, "/api/v1/session", nil), &resp)
	assert.True(t, resp.Authenticated)
	assert.Equal(t, "home", string(resp.Screen))
}

func Test_Logout_PassesResolvedUser(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn(t)

	w := ts.do(http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user123", ts.auth.loggedOut)

	_, ok, _ := ts.sessions.Get(context.Background(), testClientID)
	assert.False(t, ok)

	w = ts.do(http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, ts.auth.loggedOut)
}

func Test_Expenses_RequireSession(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodGet, "/api/v1/expenses", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func Test_ListExpenses_Display(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn(t)
	ts.expense.records = []models.Expense{{
		ID:          "1",
		Amount:      decimal.RequireFromString("25.5"),
		Description: "Lunch at cafe",
		Category:    models.CategoryFood,
		Timestamp:   1700000000000,
	}}

	w := ts.do(http.MethodGet, "/api/v1/expenses", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Lunch at cafe")
	assert.Contains(t, w.Body.String(), "Food")
	assert.Contains(t, w.Body.String(), "₹ 25.50")

	var resp ExpenseListResponse
	decode(t, w, &resp)
	require.Len(t, resp.Expenses, 1)
	assert.Equal(t, "25.50", resp.Expenses[0].Amount.String())
	assert.Equal(t, "25.50", resp.Total)
	assert.Equal(t, "2023-11-14T22:13:20Z", resp.Expenses[0].CreatedAt)
}

func Test_CreateExpense(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn(t)

	w := ts.do(http.MethodPost, "/api/v1/expenses", models.ExpenseRequest{Amount: "", Description: "", Category: "Toys"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var errResp ErrorResponse
	decode(t, w, &errResp)
	assert.Equal(t, []string{validation.MsgInvalidAmount}, errResp.Fields["amount"])
	assert.Equal(t, []string{validation.MsgSelectCategory}, errResp.Fields["category"])

	w = ts.do(http.MethodPost, "/api/v1/expenses", models.ExpenseRequest{Amount: "50.00", Description: "Test expense", Category: "Food"})
	require.Equal(t, http.StatusCreated, w.Code)
	var view ExpenseView
	decode(t, w, &view)
	assert.Equal(t, "new-id", view.ID)
	assert.Equal(t, "₹ 50.00", view.FormattedAmount)
}

func Test_CreateExpense_NumericAmount(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn(t)

	w := ts.do(http.MethodPost, "/api/v1/expenses", json.RawMessage(`{"amount":50,"description":"Lunch","category":"Food"}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var view ExpenseView
	decode(t, w, &view)
	assert.Equal(t, "₹ 50.00", view.FormattedAmount)

	w = ts.do(http.MethodPut, "/api/v1/expenses/1", json.RawMessage(`{"amount":12.5,"description":"Bus","category":"Other"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &view)
	assert.Equal(t, "₹ 12.50", view.FormattedAmount)

	w = ts.do(http.MethodPost, "/api/v1/expenses", json.RawMessage(`{"amount":-3,"description":"Lunch","category":"Food"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var errResp ErrorResponse
	decode(t, w, &errResp)
	assert.Equal(t, []string{validation.MsgInvalidAmount}, errResp.Fields["amount"])
}

func Test_ExpenseErrors(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn(t)

	ts.expense.err = expenses.ErrBusy
	assert.Equal(t, http.StatusConflict, ts.do(http.MethodDelete, "/api/v1/expenses/1", nil).Code)

	ts.expense.err = core.ErrExpenseNotFound
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPut, "/api/v1/expenses/1", models.ExpenseRequest{Amount: "1", Description: "x", Category: "Food"}).Code)

	ts.expense.err = &core.NetworkError{Message: "Network error. Please check your connection and try again."}
	assert.Equal(t, http.StatusBadGateway, ts.do(http.MethodGet, "/api/v1/expenses", nil).Code)

	ts.expense.err = nil
	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, "/api/v1/expenses/1", nil).Code)
}

func Test_ForceLogoutClearsSession(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn(t)
	ts.profile.err = &core.AuthError{Message: "Your session is invalid or expired. Please log out and sign in again.", ForceLogout: true}

	w := ts.do(http.MethodGet, "/api/v1/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp ErrorResponse
	decode(t, w, &resp)
	assert.True(t, resp.ForceLogout)

	_, ok, _ := ts.sessions.Get(context.Background(), testClientID)
	assert.False(t, ok)
}

func Test_Profile(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn(t)

	var resp ProfileResponse
	decode(t, ts.do(http.MethodGet, "/api/v1/profile", nil), &resp)
	assert.Nil(t, resp.Profile)
	assert.False(t, resp.Complete)

	w := ts.do(http.MethodPut, "/api/v1/profile", models.ProfileRequest{DisplayName: "Jane"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, "Jane", resp.Profile.DisplayName)
	assert.Equal(t, "home", string(resp.Screen))
}

func Test_UploadPhoto(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn(t)
	ts.profile.photoURL = "https://firebasestorage.googleapis.com/v0/b/bucket/o/x?alt=media&token=t"

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="photo"; filename="me.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, _ = part.Write([]byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/profile/photo", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(ts.cookie)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp PhotoResponse
	decode(t, w, &resp)
	assert.Equal(t, ts.profile.photoURL, resp.PhotoURL)
}

func Test_ThemeToggle(t *testing.T) {
	ts := newTestServer(t)

	var resp PreferencesResponse
	decode(t, ts.do(http.MethodGet, "/api/v1/preferences", nil), &resp)
	initial := resp.Dark

	decode(t, ts.do(http.MethodPost, "/api/v1/preferences/theme/toggle", nil), &resp)
	assert.Equal(t, !initial, resp.Dark)
	decode(t, ts.do(http.MethodPost, "/api/v1/preferences/theme/toggle", nil), &resp)
	assert.Equal(t, initial, resp.Dark)

	decode(t, ts.do(http.MethodPut, "/api/v1/preferences/theme", models.ThemeRequest{Dark: true}), &resp)
	assert.True(t, resp.Dark)
	dark, err := ts.sessions.Theme(context.Background(), testClientID)
	require.NoError(t, err)
	assert.True(t, dark)
}

func Test_ActivatePremium(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn(t)

	ts.auth.premium = core.ErrPremiumNotEligible
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodPost, "/api/v1/premium/activate", nil).Code)

	ts.auth.premium = nil
	var resp PreferencesResponse
	w := ts.do(http.MethodPost, "/api/v1/premium/activate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.True(t, resp.Premium)
}

func Test_Navigate(t *testing.T) {
	ts := newTestServer(t)

	var resp NavigateResponse
	w := ts.do(http.MethodPost, "/api/v1/view/navigate", models.NavigateRequest{From: "login", Event: "switch_to_signup"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, "signup", string(resp.Screen))

	// Without a session the client is on login, which has no profile link.
	w = ts.do(http.MethodPost, "/api/v1/view/navigate", models.NavigateRequest{From: "home", Event: "complete_profile"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ts.signIn(t)
	w = ts.do(http.MethodPost, "/api/v1/view/navigate", models.NavigateRequest{From: "home", Event: "complete_profile"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, "profile", string(resp.Screen))
}
