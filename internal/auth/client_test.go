package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bilgisen/veritas/internal/apiclient"
	"github.com/bilgisen/veritas/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/login":
			var req models.LoginRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.Password != "secret1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"jwt-token","token_type":"bearer"}`))
		case "/auth/signup":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":9,"nickname":"kim","email":"kim@example.com","created_at":"2025-01-02T03:04:05Z"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginStoresToken(t *testing.T) {
	srv := newAuthServer(t)
	store := NewMemoryStore("")
	c := NewClient(apiclient.New(apiclient.Options{BaseURL: srv.URL, Timeout: time.Second}, store), store)

	tok, err := c.Login(context.Background(), models.LoginRequest{Email: "kim@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", tok.AccessToken)
	assert.Equal(t, "jwt-token", store.Token())

	require.NoError(t, c.Logout())
	assert.False(t, store.IsAuthenticated())
}

func TestLoginRejected(t *testing.T) {
	srv := newAuthServer(t)
	store := NewMemoryStore("")
	c := NewClient(apiclient.New(apiclient.Options{BaseURL: srv.URL, Timeout: time.Second}, store), store)

	_, err := c.Login(context.Background(), models.LoginRequest{Email: "kim@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, store.IsAuthenticated())
}

func TestSignupValidation(t *testing.T) {
	srv := newAuthServer(t)
	store := NewMemoryStore("")
	c := NewClient(apiclient.New(apiclient.Options{BaseURL: srv.URL, Timeout: time.Second}, store), store)

	_, err := c.Signup(context.Background(), models.SignupRequest{
		Name: "kim", Email: "kim@example.com", Password: "secret1", PasswordConfirm: "secret2",
	})
	assert.Error(t, err)

	_, err = c.Signup(context.Background(), models.SignupRequest{
		Name: "kim", Email: "not-an-email", Password: "secret1", PasswordConfirm: "secret1",
	})
	assert.Error(t, err)

	user, err := c.Signup(context.Background(), models.SignupRequest{
		Name: "kim", Email: "kim@example.com", Password: "secret1", PasswordConfirm: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, 9, user.ID)
	assert.False(t, store.IsAuthenticated())
}
