// Package bookmarks keeps a local, optimistically updated view of the signed-in
// user's bookmarked articles, backed by the backend's /bookmarks API.
package bookmarks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync"

	"github.com/bilgisen/veritas/internal/apiclient"
	"github.com/bilgisen/veritas/internal/articles"
	"github.com/bilgisen/veritas/internal/auth"
	"github.com/bilgisen/veritas/internal/logger"
	"github.com/bilgisen/veritas/internal/metrics"
	"github.com/bilgisen/veritas/internal/models"
	"github.com/rs/zerolog"
)

// ErrNeedsAuth is returned by Toggle when the user has to sign in (again).
var ErrNeedsAuth = apiclient.ErrNeedsAuth

const (
	pageSize = 100
	maxPages = 50
)

// Client is the bookmark cache. The id set and list are only changed through
// Load and Toggle.
type Client struct {
	api     *apiclient.Client
	tokens  auth.TokenSource
	metrics metrics.Recorder
	log     zerolog.Logger

	mu   sync.RWMutex
	list []models.Article
	ids  map[int]struct{}

	locks keyedMutex
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics reports rollbacks to r.
func WithMetrics(r metrics.Recorder) Option {
	return func(c *Client) {
		c.metrics = r
	}
}

func New(api *apiclient.Client, tokens auth.TokenSource, opts ...Option) *Client {
	c := &Client{
		api:     api,
		tokens:  tokens,
		metrics: metrics.Nop{},
		log:     logger.Component("bookmarks"),
		ids:     make(map[int]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the cache with the server's bookmark set. Being logged out,
// or having the token rejected, empties the cache without an error.
func (c *Client) Load(ctx context.Context) error {
	if !c.tokens.IsAuthenticated() {
		c.reset()
		return nil
	}

	var all []models.APIArticle
	for page := 0; page < maxPages; page++ {
		var body models.BookmarkList
		_, err := c.api.Do(ctx, apiclient.Call{
			Method: http.MethodGet,
			Path:   "/bookmarks",
			Query: url.Values{
				"limit":  {strconv.Itoa(pageSize)},
				"offset": {strconv.Itoa(len(all))},
			},
			Auth:   apiclient.AuthRequired,
			Result: &body,
		})
		if err != nil {
			if errors.Is(err, apiclient.ErrNeedsAuth) || apiclient.IsUnauthorized(err) {
				c.log.Info().Msg("bookmark token rejected, treating as logged out")
				c.reset()
				return nil
			}
			return fmt.Errorf("failed to load bookmarks: %w", err)
		}

		all = append(all, body.Articles...)
		if len(body.Articles) == 0 || len(all) >= body.Count {
			break
		}
	}

	list := articles.NormalizeAll(all)
	ids := make(map[int]struct{}, len(list))
	for _, a := range list {
		ids[a.ID] = struct{}{}
	}

	c.mu.Lock()
	c.list = list
	c.ids = ids
	c.mu.Unlock()

	c.log.Debug().Int("count", len(list)).Msg("bookmarks loaded")
	return nil
}

// IsSaved reports whether id is in the cached bookmark set.
func (c *Client) IsSaved(id int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.ids[id]
	return ok
}

// List returns a copy of the cached bookmark list, most recent first.
func (c *Client) List() []models.Article {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Article, len(c.list))
	copy(out, c.list)
	return out
}

// IDs returns the cached bookmark ids in ascending order.
func (c *Client) IDs() []int {
	c.mu.RLock()
	out := make([]int, 0, len(c.ids))
	for id := range c.ids {
		out = append(out, id)
	}
	c.mu.RUnlock()
	sort.Ints(out)
	return out
}

// Toggle flips the bookmark state of a and reports the resulting state.
//
// The local change is applied before the request is sent and undone when the
// request fails, in which case the error is returned together with the
// restored state. Adding only touches the id set; the article shows up in
// List after the next Load. Toggles of the same article are serialized.
func (c *Client) Toggle(ctx context.Context, a models.Article) (bool, error) {
	if !c.tokens.IsAuthenticated() {
		return c.IsSaved(a.ID), ErrNeedsAuth
	}

	unlock := c.locks.Lock(a.ID)
	defer unlock()

	if c.IsSaved(a.ID) {
		return c.remove(ctx, a)
	}
	return c.add(ctx, a)
}

func (c *Client) remove(ctx context.Context, a models.Article) (bool, error) {
	removed := a

	c.mu.Lock()
	delete(c.ids, a.ID)
	kept := make([]models.Article, 0, len(c.list))
	for _, item := range c.list {
		if item.ID == a.ID {
			removed = item
			continue
		}
		kept = append(kept, item)
	}
	c.list = kept
	c.mu.Unlock()

	_, err := c.api.Do(ctx, apiclient.Call{
		Method: http.MethodDelete,
		Path:   "/bookmarks/" + strconv.Itoa(a.ID),
		Route:  "/bookmarks/{id}",
		Auth:   apiclient.AuthRequired,
	})
	if err == nil {
		return false, nil
	}

	c.mu.Lock()
	c.ids[a.ID] = struct{}{}
	if !containsID(c.list, a.ID) {
		c.list = append([]models.Article{removed}, c.list...)
	}
	c.mu.Unlock()

	c.metrics.RecordRollback("remove")
	c.log.Error().Err(err).Int("article_id", a.ID).Msg("bookmark removal failed, restored")
	return true, apiclient.AuthError(err)
}

func (c *Client) add(ctx context.Context, a models.Article) (bool, error) {
	c.mu.Lock()
	c.ids[a.ID] = struct{}{}
	c.mu.Unlock()

	_, err := c.api.Do(ctx, apiclient.Call{
		Method: http.MethodPost,
		Path:   "/bookmarks",
		Body:   models.BookmarkCreate{ArticleID: a.ID},
		Auth:   apiclient.AuthRequired,
	})
	if err == nil {
		return true, nil
	}

	c.mu.Lock()
	delete(c.ids, a.ID)
	c.mu.Unlock()

	c.metrics.RecordRollback("add")
	c.log.Error().Err(err).Int("article_id", a.ID).Msg("bookmark add failed, reverted")
	return false, apiclient.AuthError(err)
}

func (c *Client) reset() {
	c.mu.Lock()
	c.list = nil
	c.ids = make(map[int]struct{})
	c.mu.Unlock()
}

func containsID(list []models.Article, id int) bool {
	for _, a := range list {
		if a.ID == id {
			return true
		}
	}
	return false
}
