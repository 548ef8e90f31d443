package articles

import (
	"testing"

	"github.com/bilgisen/veritas/internal/models"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "尹 '나눠먹기식 재검토하라' 예산 & 심사", CleanTitle(`&quot;尹 '나눠먹기식 재검토하라'&quot; <b>예산</b> &amp;   심사`))
	assert.Equal(t, "인용 제목", CleanTitle("“인용 제목”"))
	assert.Equal(t, "", CleanTitle(""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab…", Truncate("abc", 2))
	assert.Equal(t, "가나…", Truncate("가나다", 2), "counts runes, not bytes")
}

func TestExcerptPrefersSummary(t *testing.T) {
	assert.Equal(t, "short summary", Excerpt(strPtr(" short\n summary "), strPtr("body"), 50))
	assert.Equal(t, "body text", Excerpt(strPtr("   "), strPtr("<p>body</p> text"), 50))
	assert.Equal(t, "", Excerpt(nil, nil, 50))
}

func TestNormalize(t *testing.T) {
	content := "본문 "
	a := Normalize(models.APIArticle{
		ID:      42,
		Title:   "&quot;Budget&quot; talks",
		Content: strPtr(content),
		Date:    strPtr("2025-09-01T10:00:00"),
		Link:    strPtr("https://news.example.com/a?x=1&amp;y=2"),
	})

	assert.Equal(t, 42, a.ID)
	assert.Equal(t, "Budget talks", a.Title)
	assert.Equal(t, "https://news.example.com/a?x=1&y=2", a.Link)
	assert.Equal(t, "2025-09-01T10:00:00", a.Time)
	assert.Equal(t, "news.example.com", a.Press)
	assert.Equal(t, "본문", a.Excerpt)
	if assert.NotNil(t, a.Content) {
		assert.Equal(t, content, *a.Content)
	}
}

func TestNormalizeMissingFields(t *testing.T) {
	a := Normalize(models.APIArticle{ID: 1, Title: "t"})
	assert.Equal(t, "", a.Link)
	assert.Equal(t, "", a.Time)
	assert.Equal(t, UnknownPress, a.Press)
	assert.Nil(t, a.Content)
}

func TestSourceLabel(t *testing.T) {
	assert.Equal(t, "한겨레", SourceLabel(strPtr(" 한겨레 "), "https://example.com"))
	assert.Equal(t, "조선일보", SourceLabel(nil, "https://www.chosun.com/politics/2025/01/01/"))
	assert.Equal(t, "한겨레", SourceLabel(strPtr(""), "https://m.hani.co.kr/arti/politics/1.html"))
	assert.Equal(t, "네이버 뉴스", SourceLabel(nil, "https://n.news.naver.com/article/001/0001"))
	assert.Equal(t, "example.org", SourceLabel(nil, "https://www.example.org/x"))
	assert.Equal(t, UnknownPress, SourceLabel(nil, "not a url"))
	assert.Equal(t, UnknownPress, SourceLabel(nil, ""))
}
