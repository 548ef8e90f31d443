// Package recommend fetches articles that argue the other side of the one
// being read, ranked by the backend and enriched with short summaries.
package recommend

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bilgisen/veritas/internal/apiclient"
	"github.com/bilgisen/veritas/internal/articles"
	"github.com/bilgisen/veritas/internal/cache"
	"github.com/bilgisen/veritas/internal/config"
	"github.com/bilgisen/veritas/internal/logger"
	"github.com/bilgisen/veritas/internal/metrics"
	"github.com/bilgisen/veritas/internal/models"
	"github.com/bilgisen/veritas/internal/utils"
	"github.com/rs/zerolog"
)

const (
	// MinScore is the lowest score a candidate may have to be shown.
	MinScore = 0.1
	// MaxResults is the number of candidates returned by Fetch.
	MaxResults = 3

	summaryPath = "/article/summary/by-link"
)

// Params are the tunables sent with every recommendation query.
type Params struct {
	HoursWindow int
	TopK        int
	Threshold   float64
}

var DefaultParams = Params{HoursWindow: 48, TopK: 8, Threshold: 0.1}

// Fetcher queries the recommendation service.
type Fetcher struct {
	api        *apiclient.Client
	summaries  cache.Cache
	params     Params
	endpoints  []string
	summaryTTL time.Duration
	metrics    metrics.Recorder
	log        zerolog.Logger
}

type Option func(*Fetcher)

func WithParams(p Params) Option {
	return func(f *Fetcher) { f.params = p }
}

// WithEndpoints sets the recommendation paths in the order they are tried.
func WithEndpoints(paths ...string) Option {
	return func(f *Fetcher) { f.endpoints = append([]string(nil), paths...) }
}

func WithSummaryTTL(ttl time.Duration) Option {
	return func(f *Fetcher) { f.summaryTTL = ttl }
}

func WithMetrics(r metrics.Recorder) Option {
	return func(f *Fetcher) { f.metrics = r }
}

// NewFetcher builds a Fetcher. summaries may be nil to disable caching.
func NewFetcher(api *apiclient.Client, summaries cache.Cache, opts ...Option) *Fetcher {
	f := &Fetcher{
		api:        api,
		summaries:  summaries,
		params:     DefaultParams,
		endpoints:  append([]string(nil), config.DefaultRecommendEndpoints...),
		summaryTTL: 6 * time.Hour,
		metrics:    metrics.Nop{},
		log:        logger.Component("recommend"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewFetcherFromConfig wires the recommendation settings of cfg.
func NewFetcherFromConfig(cfg *config.Config, api *apiclient.Client, summaries cache.Cache, rec metrics.Recorder) *Fetcher {
	return NewFetcher(api, summaries,
		WithParams(Params{
			HoursWindow: cfg.RecoHoursWindow,
			TopK:        cfg.RecoTopK,
			Threshold:   cfg.RecoThreshold,
		}),
		WithEndpoints(cfg.RecoEndpoints...),
		WithSummaryTTL(cfg.SummaryCacheTTL),
		WithMetrics(rec),
	)
}

// Fetch returns at most MaxResults candidates for link, best score first.
//
// An unreachable recommendation service yields an empty result, not an
// error, and a missing summary leaves that candidate's Summary empty. The only
// error returned is ctx's.
func (f *Fetcher) Fetch(ctx context.Context, link string) ([]models.Candidate, error) {
	link = strings.TrimSpace(articles.UnescapeLink(link))
	if link == "" {
		return []models.Candidate{}, nil
	}

	resp, ok := f.query(ctx, link)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ok {
		f.log.Warn().Str("link", link).Msg("no recommendation endpoint answered")
		return []models.Candidate{}, nil
	}

	picks := TopCandidates(resp.Recommendations, MinScore, MaxResults)
	for i := range picks {
		picks[i].Link = articles.UnescapeLink(picks[i].Link)
		label := articles.SourceLabel(picks[i].Source, picks[i].Link)
		picks[i].Source = &label
	}

	f.attachSummaries(ctx, picks)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return picks, nil
}

// query tries each endpoint in order and stops at the first one that answers
// with a 2xx and a decodable body.
func (f *Fetcher) query(ctx context.Context, link string) (models.RecommendResponse, bool) {
	q := url.Values{
		"clicked_link":  {link},
		"hours_window":  {strconv.Itoa(f.params.HoursWindow)},
		"topk_return":   {strconv.Itoa(f.params.TopK)},
		"nli_threshold": {strconv.FormatFloat(f.params.Threshold, 'f', -1, 64)},
	}

	for _, path := range f.endpoints {
		if ctx.Err() != nil {
			break
		}
		var resp models.RecommendResponse
		_, err := f.api.Do(ctx, apiclient.Call{
			Method: http.MethodGet,
			Path:   path,
			Query:  q,
			Auth:   apiclient.AuthOptional,
			Result: &resp,
		})
		if err == nil {
			return resp, true
		}
		f.metrics.RecordEndpointFallback(path)
		f.log.Debug().Err(err).Str("path", path).Msg("recommendation endpoint failed")
	}
	return models.RecommendResponse{}, false
}

// TopCandidates drops candidates scoring below minScore and returns the best
// n, highest score first. Equal scores keep their server order.
func TopCandidates(in []models.Candidate, minScore float64, n int) []models.Candidate {
	out := make([]models.Candidate, 0, len(in))
	for _, c := range in {
		if c.Score >= minScore {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func (f *Fetcher) attachSummaries(ctx context.Context, picks []models.Candidate) {
	var wg sync.WaitGroup
	for i := range picks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			picks[i].Summary = f.summary(ctx, picks[i].Link)
		}(i)
	}
	wg.Wait()
}

// summary returns the cached or freshly fetched summary of link, or "".
func (f *Fetcher) summary(ctx context.Context, link string) string {
	key := utils.HashLink(link)
	if f.summaries != nil {
		if s, ok, err := f.summaries.Get(ctx, key); err != nil {
			f.log.Warn().Err(err).Msg("summary cache read failed")
		} else if ok {
			return s
		}
	}

	var body models.SummaryResponse
	_, err := f.api.Do(ctx, apiclient.Call{
		Method: http.MethodGet,
		Path:   summaryPath,
		Query:  url.Values{"link": {link}},
		Auth:   apiclient.AuthOptional,
		Result: &body,
	})
	if err != nil {
		f.metrics.RecordSummaryMiss()
		f.log.Warn().Err(err).Str("link", link).Msg("summary unavailable")
		return ""
	}

	s := strings.TrimSpace(body.Summary)
	if s == "" {
		f.metrics.RecordSummaryMiss()
		return ""
	}
	if f.summaries != nil {
		if err := f.summaries.Set(ctx, key, s, f.summaryTTL); err != nil {
			f.log.Warn().Err(err).Msg("summary cache write failed")
		}
	}
	return s
}
