// Package articles fetches the article feed and turns server articles into
// their display form.
package articles

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bilgisen/veritas/internal/apiclient"
	"github.com/bilgisen/veritas/internal/models"
)

const (
	DefaultPageSize = 18
	MaxPageSize     = 100
)

// Page converts a 1-based page number and page size into the limit and
// offset sent to the backend. The size is clamped first so that pages never
// skip articles.
func Page(page, size int) (limit, offset int) {
	switch {
	case size > MaxPageSize:
		size = MaxPageSize
	case size <= 0:
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	return size, (page - 1) * size
}

// Client reads the public article feed.
type Client struct {
	api *apiclient.Client
}

func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

// List returns one page of the feed, newest first as ordered by the server.
func (c *Client) List(ctx context.Context, limit, offset int) ([]models.Article, error) {
	switch {
	case limit > MaxPageSize:
		limit = MaxPageSize
	case limit <= 0:
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	var body models.ArticleList
	if _, err := c.api.Do(ctx, apiclient.Call{
		Method: http.MethodGet,
		Path:   "/article",
		Query: url.Values{
			"limit":  {strconv.Itoa(limit)},
			"offset": {strconv.Itoa(offset)},
		},
		Result: &body,
	}); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return NormalizeAll(body.Entries()), nil
}
