package models

// Article is the display projection of a news article shown in feeds and bookmark lists.
type Article struct {
	ID      int     `json:"id"`
	Title   string  `json:"title"`
	Excerpt string  `json:"excerpt"`
	Time    string  `json:"time"`
	Press   string  `json:"press"`
	Link    string  `json:"link"`
	Content *string `json:"content,omitempty"`
}

// APIArticle is the article shape returned by the backend list endpoints.
type APIArticle struct {
	ID      int     `json:"id"`
	Title   string  `json:"title"`
	Content *string `json:"content"`
	Summary *string `json:"summary"`
	Date    *string `json:"date"`
	Link    *string `json:"link"`
	Source  *string `json:"source,omitempty"`
}

// BookmarkList is the body of GET /bookmarks.
type BookmarkList struct {
	Count    int          `json:"count"`
	Articles []APIArticle `json:"articles"`
}

// BookmarkCreate is the body of POST /bookmarks.
type BookmarkCreate struct {
	ArticleID int `json:"article_id"`
}

// ArticleList is the body of GET /article. Older deployments answer with
// "articles" instead of "items".
type ArticleList struct {
	Count    int          `json:"count"`
	Items    []APIArticle `json:"items"`
	Articles []APIArticle `json:"articles"`
}

// Entries returns whichever article slice the server populated.
func (l ArticleList) Entries() []APIArticle {
	if len(l.Items) > 0 {
		return l.Items
	}
	return l.Articles
}
