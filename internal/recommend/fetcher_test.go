package recommend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bilgisen/veritas/internal/apiclient"
	"github.com/bilgisen/veritas/internal/auth"
	"github.com/bilgisen/veritas/internal/cache"
	"github.com/bilgisen/veritas/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// recoBackend answers recommendation routes from a table and summaries by link.
type recoBackend struct {
	mu        sync.Mutex
	status    map[string]int // per recommendation path; 0 or missing means 200
	raw       map[string]string
	body      models.RecommendResponse
	badLinks  map[string]bool
	summaries int
	hits      []string
	query     map[string]string
}

func (b *recoBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hits = append(b.hits, r.URL.Path)

	if r.URL.Path == summaryPath {
		b.summaries++
		link := r.URL.Query().Get("link")
		if b.badLinks[link] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.SummaryResponse{Summary: "요약: " + link})
		return
	}

	if code := b.status[r.URL.Path]; code != 0 {
		w.WriteHeader(code)
		return
	}
	b.query = map[string]string{}
	for k := range r.URL.Query() {
		b.query[k] = r.URL.Query().Get(k)
	}
	w.Header().Set("Content-Type", "application/json")
	if raw, ok := b.raw[r.URL.Path]; ok {
		_, _ = w.Write([]byte(raw))
		return
	}
	_ = json.NewEncoder(w).Encode(b.body)
}

func (b *recoBackend) paths() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.hits...)
}

func newFetcher(t *testing.T, b http.Handler, summaries cache.Cache) *Fetcher {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	api := apiclient.New(apiclient.Options{BaseURL: srv.URL, Timeout: 2 * time.Second}, auth.NewMemoryStore(""))
	return NewFetcher(api, summaries)
}

func candidates(scores ...float64) []models.Candidate {
	out := make([]models.Candidate, len(scores))
	for i, s := range scores {
		out[i] = models.Candidate{
			Title: "기사",
			Link:  "https://www.hani.co.kr/arti/" + strings.Repeat("x", i+1),
			Score: s,
		}
	}
	return out
}

func scoresOf(cs []models.Candidate) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Score
	}
	return out
}

func TestTopCandidates(t *testing.T) {
	got := TopCandidates(candidates(0.05, 0.3, 0.9, 0.15, 0.5), MinScore, MaxResults)
	assert.Equal(t, []float64{0.9, 0.5, 0.3}, scoresOf(got))

	got = TopCandidates(candidates(0.1, 0.09), MinScore, MaxResults)
	assert.Equal(t, []float64{0.1}, scoresOf(got))

	ties := candidates(0.4, 0.4)
	ties[0].Title, ties[1].Title = "first", "second"
	got = TopCandidates(ties, MinScore, MaxResults)
	assert.Equal(t, "first", got[0].Title)

	assert.Empty(t, TopCandidates(nil, MinScore, MaxResults))
}

func TestFetchFiltersAndEnriches(t *testing.T) {
	b := &recoBackend{body: models.RecommendResponse{Recommendations: candidates(0.05, 0.3, 0.9, 0.15, 0.5)}}
	b.body.Recommendations[2].Source = strPtr("경향신문")
	f := newFetcher(t, b, nil)

	got, err := f.Fetch(context.Background(), "https://news.example.com/a?x=1&amp;y=2")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []float64{0.9, 0.5, 0.3}, scoresOf(got))
	assert.Equal(t, "경향신문", *got[0].Source)
	assert.Equal(t, "한겨레", *got[1].Source)
	for _, c := range got {
		assert.Equal(t, "요약: "+c.Link, c.Summary)
	}

	assert.Equal(t, "https://news.example.com/a?x=1&y=2", b.query["clicked_link"])
	assert.Equal(t, "48", b.query["hours_window"])
	assert.Equal(t, "8", b.query["topk_return"])
	assert.Equal(t, "0.1", b.query["nli_threshold"])
}

func TestFetchEndpointFallback(t *testing.T) {
	b := &recoBackend{
		status: map[string]int{"/article/recommend": http.StatusNotFound},
		body:   models.RecommendResponse{Recommendations: candidates(0.7)},
	}
	f := newFetcher(t, b, nil)

	got, err := f.Fetch(context.Background(), "https://news.example.com/a")
	require.NoError(t, err)
	require.Len(t, got, 1)

	paths := b.paths()
	assert.Equal(t, []string{"/article/recommend", "/recommend", summaryPath}, paths)
	assert.NotContains(t, paths, "/rec/recommend")
}

func TestFetchUndecodableBodyFallsThrough(t *testing.T) {
	b := &recoBackend{
		raw:  map[string]string{"/article/recommend": "<html>proxy</html>"},
		body: models.RecommendResponse{Recommendations: candidates(0.7)},
	}
	f := newFetcher(t, b, nil)

	got, err := f.Fetch(context.Background(), "https://news.example.com/a")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFetchAllEndpointsFailIsEmpty(t *testing.T) {
	b := &recoBackend{status: map[string]int{
		"/article/recommend": http.StatusNotFound,
		"/recommend":         http.StatusBadGateway,
		"/rec/recommend":     http.StatusInternalServerError,
	}}
	f := newFetcher(t, b, nil)

	got, err := f.Fetch(context.Background(), "https://news.example.com/a")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFetchSummaryFailureIsIsolated(t *testing.T) {
	b := &recoBackend{body: models.RecommendResponse{Recommendations: candidates(0.9, 0.5, 0.3)}}
	b.badLinks = map[string]bool{b.body.Recommendations[1].Link: true}
	f := newFetcher(t, b, nil)

	got, err := f.Fetch(context.Background(), "https://news.example.com/a")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.NotEmpty(t, got[0].Summary)
	assert.Empty(t, got[1].Summary)
	assert.NotEmpty(t, got[2].Summary)
}

func TestFetchUsesSummaryCache(t *testing.T) {
	b := &recoBackend{body: models.RecommendResponse{Recommendations: candidates(0.9, 0.5)}}
	f := newFetcher(t, b, cache.NewMemoryCache())

	_, err := f.Fetch(context.Background(), "https://news.example.com/a")
	require.NoError(t, err)
	got, err := f.Fetch(context.Background(), "https://news.example.com/a")
	require.NoError(t, err)

	b.mu.Lock()
	assert.Equal(t, 2, b.summaries)
	b.mu.Unlock()
	assert.NotEmpty(t, got[1].Summary)
}

func TestFetchEmptyLinkSkipsRequest(t *testing.T) {
	b := &recoBackend{}
	f := newFetcher(t, b, nil)

	got, err := f.Fetch(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, b.paths())
}

func TestFetchReturnsContextError(t *testing.T) {
	b := &recoBackend{body: models.RecommendResponse{Recommendations: candidates(0.9)}}
	f := newFetcher(t, b, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Fetch(ctx, "https://news.example.com/a")
	assert.ErrorIs(t, err, context.Canceled)
}
