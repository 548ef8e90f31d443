// Package api serves the bookmark cache and the backend clients to a local UI.
package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/bilgisen/veritas/internal/articles"
	"github.com/bilgisen/veritas/internal/auth"
	"github.com/bilgisen/veritas/internal/bookmarks"
	"github.com/bilgisen/veritas/internal/inquiries"
	"github.com/bilgisen/veritas/internal/logger"
	"github.com/bilgisen/veritas/internal/middleware"
	"github.com/bilgisen/veritas/internal/models"
	"github.com/bilgisen/veritas/internal/recommend"
	"github.com/bilgisen/veritas/internal/storage"
	"github.com/gofiber/fiber/v2"
)

// Version is reported by the health check.
var Version = "dev"

type Handlers struct {
	tokens    auth.TokenSource
	articles  *articles.Client
	bookmarks *bookmarks.Client
	tracker   *recommend.Tracker
	inquiries *inquiries.Client
	sink      storage.Sink
	started   time.Time
}

// Deps are the clients the handlers delegate to. Sink may be nil, which
// disables exports.
type Deps struct {
	Tokens    auth.TokenSource
	Articles  *articles.Client
	Bookmarks *bookmarks.Client
	Tracker   *recommend.Tracker
	Inquiries *inquiries.Client
	Sink      storage.Sink
}

func NewHandlers(d Deps) *Handlers {
	return &Handlers{
		tokens:    d.Tokens,
		articles:  d.Articles,
		bookmarks: d.Bookmarks,
		tracker:   d.Tracker,
		inquiries: d.Inquiries,
		sink:      d.Sink,
		started:   time.Now(),
	}
}

// ToggleRequest is the body of POST /bookmarks/toggle.
type ToggleRequest struct {
	ID      int    `json:"id" validate:"required,gt=0"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Time    string `json:"time"`
	Press   string `json:"press"`
	Link    string `json:"link"`
}

func (r ToggleRequest) article() models.Article {
	return models.Article{
		ID:      r.ID,
		Title:   r.Title,
		Excerpt: r.Excerpt,
		Time:    r.Time,
		Press:   r.Press,
		Link:    articles.UnescapeLink(r.Link),
	}
}

type RecommendQuery struct {
	Link string `query:"link" validate:"required"`
}

// InquiryRequest is the body of POST /inquiries.
type InquiryRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}

// ArticleView is a feed entry together with its bookmark state.
type ArticleView struct {
	models.Article
	Saved bool `json:"saved"`
}

// HealthCheck handles the /health endpoint
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	resp := fiber.Map{
		"status":        "ok",
		"version":       Version,
		"authenticated": h.tokens.IsAuthenticated(),
		"bookmarks":     len(h.bookmarks.IDs()),
		"uptime":        time.Since(h.started).Round(time.Second).String(),
		"time":          time.Now().Format(time.RFC3339),
	}
	if token := h.tokens.Token(); token != "" {
		if id, err := auth.Inspect(token); err == nil {
			resp["user"] = id
			resp["token_expired"] = id.Expired(time.Now())
		}
	}
	return c.JSON(resp)
}

// GetArticles handles GET /api/v1/articles
func (h *Handlers) GetArticles(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", ""))
	limit, offset := articles.Page(page, pageSize)

	list, err := h.articles.List(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}

	items := make([]ArticleView, len(list))
	for i, a := range list {
		items[i] = ArticleView{Article: a, Saved: h.bookmarks.IsSaved(a.ID)}
	}

	return c.JSON(fiber.Map{
		"page":      offset/limit + 1,
		"page_size": limit,
		"count":     len(items),
		"items":     items,
	})
}

// GetBookmarks handles GET /api/v1/bookmarks
func (h *Handlers) GetBookmarks(c *fiber.Ctx) error {
	list := h.bookmarks.List()
	return c.JSON(fiber.Map{
		"count": len(list),
		"ids":   h.bookmarks.IDs(),
		"items": list,
	})
}

// GetBookmarkByID handles GET /api/v1/bookmarks/:id
func (h *Handlers) GetBookmarkByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Article ID must be a positive integer")
	}
	return c.JSON(fiber.Map{
		"id":    id,
		"saved": h.bookmarks.IsSaved(id),
	})
}

// ToggleBookmark handles POST /api/v1/bookmarks/toggle
func (h *Handlers) ToggleBookmark(c *fiber.Ctx) error {
	req := middleware.Validated[ToggleRequest](c)

	saved, err := h.bookmarks.Toggle(c.UserContext(), req.article())
	if err != nil {
		logger.Get().Warn().Err(err).Int("article_id", req.ID).Msg("Bookmark toggle failed")
		return c.Status(middleware.StatusFor(err)).JSON(fiber.Map{
			"error":      err.Error(),
			"needs_auth": errors.Is(err, bookmarks.ErrNeedsAuth),
			"id":         req.ID,
			"saved":      saved,
		})
	}

	return c.JSON(fiber.Map{
		"id":    req.ID,
		"saved": saved,
	})
}

// ReloadBookmarks handles POST /api/v1/bookmarks/reload
func (h *Handlers) ReloadBookmarks(c *fiber.Ctx) error {
	if err := h.bookmarks.Load(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status": "reloaded",
		"count":  len(h.bookmarks.IDs()),
	})
}

// ExportBookmarks handles POST /api/v1/bookmarks/export
func (h *Handlers) ExportBookmarks(c *fiber.Ctx) error {
	if h.sink == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Export is not configured")
	}

	list := h.bookmarks.List()
	loc, err := storage.ExportBookmarks(c.UserContext(), h.sink, list)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"location": loc,
		"count":    len(list),
	})
}

// GetRecommendations handles GET /api/v1/recommendations?link=
func (h *Handlers) GetRecommendations(c *fiber.Ctx) error {
	q := middleware.Validated[RecommendQuery](c)

	items, err := h.tracker.Resolve(c.UserContext(), q.Link)
	if errors.Is(err, recommend.ErrSuperseded) {
		return fiber.NewError(fiber.StatusConflict, "A newer article is being resolved")
	}
	if err != nil {
		return err
	}
	if items == nil {
		items = []models.Candidate{}
	}

	return c.JSON(fiber.Map{
		"link":  articles.UnescapeLink(q.Link),
		"count": len(items),
		"items": items,
	})
}

// CreateInquiry handles POST /api/v1/inquiries
func (h *Handlers) CreateInquiry(c *fiber.Ctx) error {
	req := middleware.Validated[InquiryRequest](c)

	inq, err := h.inquiries.Create(c.UserContext(), req.Title, req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(inq)
}
