package inquiries

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bilgisen/veritas/internal/apiclient"
	"github.com/bilgisen/veritas/internal/auth"
	"github.com/bilgisen/veritas/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	store := auth.NewMemoryStore(token)
	return NewClient(apiclient.New(apiclient.Options{BaseURL: srv.URL, Timeout: 2 * time.Second}, store), store)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestCreate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body models.InquiryCreate
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "제목", body.Title)
		assert.False(t, body.IsPublic)
		writeJSON(w, http.StatusCreated, models.Inquiry{ID: 3, Title: body.Title, Content: body.Content, Status: models.InquiryPending})
	}, "")

	inq, err := c.Create(context.Background(), " 제목 ", "내용")
	require.NoError(t, err)
	assert.Equal(t, 3, inq.ID)
	assert.Equal(t, models.InquiryPending, inq.Status)
}

func TestCreateValidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}, "tok")

	_, err := c.Create(context.Background(), "", "내용")
	assert.Error(t, err)
	_, err = c.Create(context.Background(), strings.Repeat("가", 201), "내용")
	assert.Error(t, err)
}

func TestListPagesAndHandlesLoggedOut(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("mine"))
		assert.Equal(t, "true", q.Get("brief"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "20", q.Get("offset"))
		writeJSON(w, http.StatusOK, models.InquiryList{Count: 21, Items: []models.InquiryBrief{{ID: 1}}})
	}, "tok")

	page, err := c.List(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 21, page.Count)
	assert.Len(t, page.Items, 1)

	anon := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}, "")
	page, err = anon.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestListUnauthorizedIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, "expired")

	page, err := c.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, page.Count)
}

func TestOwnerOnlyErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusForbidden)
		case http.MethodPatch:
			w.WriteHeader(http.StatusUnauthorized)
		case http.MethodDelete:
			assert.Equal(t, "/inquiries/7", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}
	}, "tok")

	_, err := c.Get(context.Background(), 7)
	assert.ErrorIs(t, err, apiclient.ErrForbidden)

	_, err = c.Update(context.Background(), 7, "t", "c")
	assert.ErrorIs(t, err, apiclient.ErrNeedsAuth)

	assert.NoError(t, c.Delete(context.Background(), 7))
}

func TestBrief(t *testing.T) {
	b := Brief(models.Inquiry{ID: 1, Title: "t", Content: strings.Repeat("가", 90)})
	require.NotNil(t, b.Excerpt)
	assert.Equal(t, strings.Repeat("가", 80)+"…", *b.Excerpt)

	b = Brief(models.Inquiry{Content: "짧은 <b>문의</b>"})
	assert.Equal(t, "짧은 문의", *b.Excerpt)
}
