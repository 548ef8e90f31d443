package articles

import (
	"html"
	"strings"

	"github.com/bilgisen/veritas/internal/models"
	"github.com/microcosm-cc/bluemonday"
)

const (
	// FeedExcerptRunes is the excerpt budget of article cards.
	FeedExcerptRunes = 50
	ellipsis         = "…"
)

var (
	strict        = bluemonday.StrictPolicy()
	quoteReplacer = strings.NewReplacer(`"`, "", "“", "", "”", "")
)

// CleanText strips markup, decodes entities and collapses whitespace.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	// The strict policy re-escapes text, so entities are decoded afterwards.
	cleaned := html.UnescapeString(strict.Sanitize(s))
	return strings.Join(strings.Fields(cleaned), " ")
}

// CleanTitle is CleanText with double quotes removed.
func CleanTitle(s string) string {
	return strings.TrimSpace(quoteReplacer.Replace(CleanText(s)))
}

// UnescapeLink undoes the HTML ampersand escaping feeds leave in URLs.
func UnescapeLink(link string) string {
	return strings.TrimSpace(strings.ReplaceAll(link, "&amp;", "&"))
}

// Truncate cuts s to at most n runes, appending an ellipsis when it was cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + ellipsis
}

// Excerpt builds the card preview from the summary, falling back to the body.
func Excerpt(summary, content *string, n int) string {
	base := ""
	if summary != nil && strings.TrimSpace(*summary) != "" {
		base = *summary
	} else if content != nil {
		base = *content
	}
	return Truncate(CleanText(base), n)
}

// Normalize maps a server article onto its display projection.
func Normalize(a models.APIArticle) models.Article {
	link := ""
	if a.Link != nil {
		link = UnescapeLink(*a.Link)
	}
	t := ""
	if a.Date != nil {
		t = strings.TrimSpace(*a.Date)
	}

	out := models.Article{
		ID:      a.ID,
		Title:   CleanTitle(a.Title),
		Excerpt: Excerpt(a.Summary, a.Content, FeedExcerptRunes),
		Time:    t,
		Press:   SourceLabel(a.Source, link),
		Link:    link,
	}
	if a.Content != nil {
		content := *a.Content
		out.Content = &content
	}
	return out
}

// NormalizeAll maps a slice of server articles, preserving order.
func NormalizeAll(in []models.APIArticle) []models.Article {
	out := make([]models.Article, 0, len(in))
	for _, a := range in {
		out = append(out, Normalize(a))
	}
	return out
}
