package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens string

func (s staticTokens) Token() string         { return string(s) }
func (s staticTokens) IsAuthenticated() bool { return s != "" }

func newTestClient(t *testing.T, h http.HandlerFunc, token string) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL, Timeout: 2 * time.Second}, staticTokens(token)), srv
}

func TestDoSendsBearerAndDecodes(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count":2}`))
	}, "tok-1")

	var out struct {
		Count int `json:"count"`
	}
	status, err := c.Do(context.Background(), Call{
		Method: http.MethodGet,
		Path:   "/bookmarks",
		Query:  url.Values{"limit": {"5"}},
		Auth:   AuthRequired,
		Result: &out,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, out.Count)
}

func TestDoRequiredAuthShortCircuits(t *testing.T) {
	var hits int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}, "")

	_, err := c.Do(context.Background(), Call{Method: http.MethodPost, Path: "/bookmarks", Auth: AuthRequired})
	assert.ErrorIs(t, err, ErrNeedsAuth)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestDoOptionalAuthOmitsMissingToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
	}, "")

	status, err := c.Do(context.Background(), Call{Method: http.MethodPost, Path: "/inquiries", Auth: AuthOptional, Body: map[string]string{"a": "b"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, status)
}

func TestDoReturnsStatusError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"expired"}`))
	}, "tok")

	status, err := c.Do(context.Background(), Call{Method: http.MethodGet, Path: "/bookmarks", Auth: AuthRequired})
	assert.Equal(t, http.StatusUnauthorized, status)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "/bookmarks", se.Path)
	assert.Contains(t, se.Body, "expired")
	assert.True(t, IsUnauthorized(err))
	assert.ErrorIs(t, AuthError(err), ErrNeedsAuth)
}

func TestDoClipsLongErrorBodyOnRuneBoundary(t *testing.T) {
	detail := strings.Repeat("가", 300)
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(detail))
	}, "tok")

	_, err := c.Do(context.Background(), Call{Method: http.MethodGet, Path: "/article"})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.True(t, utf8.ValidString(se.Body))
	assert.Len(t, se.Body, 510)
	assert.True(t, strings.HasPrefix(detail, se.Body))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "ab", clip("ab한", 4))
	assert.Equal(t, "ab한", clip("ab한", 5))
	assert.Equal(t, "", clip("한", 2))
}

func TestDoDecodeFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}, "")

	var out map[string]interface{}
	_, err := c.Do(context.Background(), Call{Method: http.MethodGet, Path: "/x", Result: &out})
	assert.Error(t, err)
	assert.Zero(t, StatusCode(err))
}

func TestDoHonoursDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c := New(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, nil)
	start := time.Now()
	_, err := c.Do(context.Background(), Call{Method: http.MethodGet, Path: "/slow"})
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestAuthErrorForbidden(t *testing.T) {
	err := AuthError(&StatusError{Method: "GET", Path: "/inquiries/1", StatusCode: http.StatusForbidden})
	assert.ErrorIs(t, err, ErrForbidden)

	plain := &StatusError{StatusCode: http.StatusInternalServerError}
	assert.Equal(t, error(plain), AuthError(plain))
}
