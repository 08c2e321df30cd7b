package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	Path string
	Key  string
	Body map[string]interface{}
}

func fakeProvider(t *testing.T, handler func(method string, body map[string]interface{}) (int, interface{})) (*Client, *[]recordedCall) {
	t.Helper()
	calls := &[]recordedCall{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		*calls = append(*calls, recordedCall{Path: r.URL.Path, Key: r.URL.Query().Get("key"), Body: body})

		method := r.URL.Path[len("/v1/accounts:"):]
		status, resp := handler(method, body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/v1", "api-key", 5*time.Second), calls
}

func providerError(message string) map[string]interface{} {
	return map[string]interface{}{"error": map[string]interface{}{"code": 400, "message": message}}
}

func Test_SignIn_ReturnsCredential(t *testing.T) {
	client, calls := fakeProvider(t, func(method string, body map[string]interface{}) (int, interface{}) {
		assert.Equal(t, "signInWithPassword", method)
		return http.StatusOK, map[string]interface{}{"idToken": "tok", "localId": "uid-1", "email": "a@b.co", "expiresIn": "3600"}
	})

	cred, err := client.SignIn(context.Background(), "a@b.co", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", cred.IDToken)
	assert.Equal(t, "uid-1", cred.LocalID)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "api-key", call.Key)
	assert.Equal(t, "a@b.co", call.Body["email"])
	assert.Equal(t, true, call.Body["returnSecureToken"])
}

func Test_SignUp_ProviderErrorCode(t *testing.T) {
	client, _ := fakeProvider(t, func(string, map[string]interface{}) (int, interface{}) {
		return http.StatusBadRequest, providerError("EMAIL_EXISTS")
	})

	_, err := client.SignUp(context.Background(), "a@b.co", "Str0ng!pass")
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "EMAIL_EXISTS", pe.Code)
	assert.Equal(t, "Email is already in use", FriendlyMessage(FlowSignUp, err))
}

func Test_ProviderErrorWithDetail(t *testing.T) {
	client, _ := fakeProvider(t, func(string, map[string]interface{}) (int, interface{}) {
		return http.StatusBadRequest, providerError("WEAK_PASSWORD : Password should be at least 6 characters")
	})

	_, err := client.SignUp(context.Background(), "a@b.co", "x")
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "WEAK_PASSWORD", pe.Code)
	assert.Equal(t, "Password should be at least 6 characters", pe.Detail)
	assert.Equal(t, "Password is too weak", FriendlyMessage(FlowSignUp, err))
}

func Test_Lookup(t *testing.T) {
	client, _ := fakeProvider(t, func(method string, body map[string]interface{}) (int, interface{}) {
		assert.Equal(t, "lookup", method)
		assert.Equal(t, "tok", body["idToken"])
		return http.StatusOK, map[string]interface{}{"users": []map[string]interface{}{
			{"localId": "uid-1", "email": "a@b.co", "emailVerified": true},
		}}
	})

	user, err := client.Lookup(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", user.ID)
	assert.True(t, user.EmailVerified)
}

func Test_Lookup_EmptyUserList(t *testing.T) {
	client, _ := fakeProvider(t, func(string, map[string]interface{}) (int, interface{}) {
		return http.StatusOK, map[string]interface{}{"users": []interface{}{}}
	})

	_, err := client.Lookup(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrNoUser)
}

func Test_Lookup_InvalidToken(t *testing.T) {
	client, _ := fakeProvider(t, func(string, map[string]interface{}) (int, interface{}) {
		return http.StatusBadRequest, providerError("INVALID_ID_TOKEN")
	})

	_, err := client.Lookup(context.Background(), "tok")
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.True(t, pe.InvalidSession())
}

func Test_SendOobCodes(t *testing.T) {
	client, calls := fakeProvider(t, func(method string, _ map[string]interface{}) (int, interface{}) {
		assert.Equal(t, "sendOobCode", method)
		return http.StatusOK, map[string]interface{}{"email": "a@b.co"}
	})

	require.NoError(t, client.SendPasswordReset(context.Background(), "a@b.co"))
	require.NoError(t, client.SendEmailVerification(context.Background(), "tok"))

	require.Len(t, *calls, 2)
	assert.Equal(t, "PASSWORD_RESET", (*calls)[0].Body["requestType"])
	assert.Equal(t, "a@b.co", (*calls)[0].Body["email"])
	assert.Equal(t, "VERIFY_EMAIL", (*calls)[1].Body["requestType"])
	assert.Equal(t, "tok", (*calls)[1].Body["idToken"])
}

func Test_PasswordResetMessages(t *testing.T) {
	client, _ := fakeProvider(t, func(string, map[string]interface{}) (int, interface{}) {
		return http.StatusBadRequest, providerError("EMAIL_NOT_FOUND")
	})

	err := client.SendPasswordReset(context.Background(), "a@b.co")
	assert.Equal(t, "No account found for this email.", FriendlyMessage(FlowPasswordReset, err))
	assert.Equal(t, "No user found with this email", FriendlyMessage(FlowLogin, err))
}

func Test_UpdateAccount_DeletesEmptyPhoto(t *testing.T) {
	client, calls := fakeProvider(t, func(method string, _ map[string]interface{}) (int, interface{}) {
		assert.Equal(t, "update", method)
		return http.StatusOK, map[string]interface{}{"localId": "uid-1"}
	})

	require.NoError(t, client.UpdateAccount(context.Background(), "tok", "Asha", ""))
	body := (*calls)[0].Body
	assert.Equal(t, "Asha", body["displayName"])
	assert.Equal(t, []interface{}{"PHOTO_URL"}, body["deleteAttribute"])
	assert.NotContains(t, body, "photoUrl")
}

func Test_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "k", time.Second).Lookup(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func Test_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, "k", time.Second).Lookup(context.Background(), "tok")
	var ne *NetworkError
	assert.ErrorAs(t, err, &ne)
	assert.Equal(t, "Network error. Please check your connection and try again.", FriendlyMessage(FlowLogin, err))
}

func Test_MissingAPIKey(t *testing.T) {
	_, err := New("", "", time.Second).SignIn(context.Background(), "a@b.co", "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
