package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bilgisen/veritas/internal/apiclient"
	"github.com/bilgisen/veritas/internal/models"
	"github.com/go-playground/validator/v10"
)

// ErrInvalidCredentials is returned when the backend rejects a login.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Client talks to the backend's /auth endpoints and keeps the issued token in a TokenStore.
type Client struct {
	api      *apiclient.Client
	store    TokenStore
	validate *validator.Validate
}

func NewClient(api *apiclient.Client, store TokenStore) *Client {
	return &Client{
		api:      api,
		store:    store,
		validate: validator.New(),
	}
}

// Signup registers a new account. It does not log the user in.
func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid signup request: %w", err)
	}

	var user models.User
	if _, err := c.api.Do(ctx, apiclient.Call{
		Method: http.MethodPost,
		Path:   "/auth/signup",
		Body:   req,
		Result: &user,
	}); err != nil {
		return nil, fmt.Errorf("signup failed: %w", err)
	}
	return &user, nil
}

// Login exchanges credentials for an access token and stores it.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.Token, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid login request: %w", err)
	}

	var tok models.Token
	if _, err := c.api.Do(ctx, apiclient.Call{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   req,
		Result: &tok,
	}); err != nil {
		if apiclient.IsUnauthorized(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("login failed: empty access token")
	}
	if err := c.store.Set(tok.AccessToken); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Logout drops the stored token.
func (c *Client) Logout() error {
	return c.store.Clear()
}
