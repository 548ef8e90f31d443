// Package inquiries is the client for user support inquiries.
package inquiries

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bilgisen/veritas/internal/apiclient"
	"github.com/bilgisen/veritas/internal/articles"
	"github.com/bilgisen/veritas/internal/auth"
	"github.com/bilgisen/veritas/internal/models"
	"github.com/go-playground/validator/v10"
)

const (
	// PageSize is the number of inquiries per list page.
	PageSize = 10
	// ExcerptRunes is the excerpt budget of list entries.
	ExcerptRunes = 80
)

type Client struct {
	api      *apiclient.Client
	tokens   auth.TokenSource
	validate *validator.Validate
}

func NewClient(api *apiclient.Client, tokens auth.TokenSource) *Client {
	return &Client{
		api:      api,
		tokens:   tokens,
		validate: validator.New(),
	}
}

// Create submits a private inquiry. Anonymous submissions are accepted by
// the backend, so a missing token is not an error here.
func (c *Client) Create(ctx context.Context, title, content string) (*models.Inquiry, error) {
	req := models.InquiryCreate{
		Title:   strings.TrimSpace(title),
		Content: strings.TrimSpace(content),
	}
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid inquiry: %w", err)
	}

	var out models.Inquiry
	if _, err := c.api.Do(ctx, apiclient.Call{
		Method: http.MethodPost,
		Path:   "/inquiries",
		Body:   req,
		Auth:   apiclient.AuthOptional,
		Result: &out,
	}); err != nil {
		return nil, fmt.Errorf("failed to create inquiry: %w", apiclient.AuthError(err))
	}
	return &out, nil
}

// List returns the caller's inquiries, page 1 being the newest. Without a
// valid token the page is empty.
func (c *Client) List(ctx context.Context, page int) (*models.InquiryList, error) {
	empty := &models.InquiryList{Items: []models.InquiryBrief{}}
	if !c.tokens.IsAuthenticated() {
		return empty, nil
	}
	if page < 1 {
		page = 1
	}

	var out models.InquiryList
	_, err := c.api.Do(ctx, apiclient.Call{
		Method: http.MethodGet,
		Path:   "/inquiries",
		Query: url.Values{
			"mine":   {"true"},
			"brief":  {"true"},
			"limit":  {strconv.Itoa(PageSize)},
			"offset": {strconv.Itoa((page - 1) * PageSize)},
		},
		Auth:   apiclient.AuthRequired,
		Result: &out,
	})
	if err != nil {
		if errors.Is(err, apiclient.ErrNeedsAuth) || apiclient.IsUnauthorized(err) {
			return empty, nil
		}
		return nil, fmt.Errorf("failed to list inquiries: %w", err)
	}
	if out.Items == nil {
		out.Items = []models.InquiryBrief{}
	}
	return &out, nil
}

func (c *Client) Get(ctx context.Context, id int) (*models.Inquiry, error) {
	var out models.Inquiry
	if _, err := c.api.Do(ctx, apiclient.Call{
		Method: http.MethodGet,
		Path:   itemPath(id),
		Route:  "/inquiries/{id}",
		Auth:   apiclient.AuthRequired,
		Result: &out,
	}); err != nil {
		return nil, fmt.Errorf("failed to get inquiry %d: %w", id, apiclient.AuthError(err))
	}
	return &out, nil
}

// Update replaces title and content of an inquiry the caller owns.
func (c *Client) Update(ctx context.Context, id int, title, content string) (*models.Inquiry, error) {
	req := models.InquiryUpdate{
		Title:   strings.TrimSpace(title),
		Content: strings.TrimSpace(content),
	}
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid inquiry: %w", err)
	}

	var out models.Inquiry
	if _, err := c.api.Do(ctx, apiclient.Call{
		Method: http.MethodPatch,
		Path:   itemPath(id),
		Route:  "/inquiries/{id}",
		Body:   req,
		Auth:   apiclient.AuthRequired,
		Result: &out,
	}); err != nil {
		return nil, fmt.Errorf("failed to update inquiry %d: %w", id, apiclient.AuthError(err))
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, id int) error {
	if _, err := c.api.Do(ctx, apiclient.Call{
		Method: http.MethodDelete,
		Path:   itemPath(id),
		Route:  "/inquiries/{id}",
		Auth:   apiclient.AuthRequired,
	}); err != nil {
		return fmt.Errorf("failed to delete inquiry %d: %w", id, apiclient.AuthError(err))
	}
	return nil
}

// Brief projects a full inquiry into its list form, e.g. to refresh a list
// entry after Update.
func Brief(in models.Inquiry) models.InquiryBrief {
	excerpt := articles.Truncate(articles.CleanText(in.Content), ExcerptRunes)
	return models.InquiryBrief{
		ID:        in.ID,
		Title:     in.Title,
		Status:    in.Status,
		CreatedAt: in.CreatedAt,
		UpdatedAt: in.UpdatedAt,
		Excerpt:   &excerpt,
	}
}

func itemPath(id int) string {
	return "/inquiries/" + strconv.Itoa(id)
}
