package models

// Candidate is one opposing-viewpoint recommendation for a clicked article.
type Candidate struct {
	Title   string   `json:"title"`
	Link    string   `json:"link"`
	Source  *string  `json:"source"`
	Date    *string  `json:"date"`
	Lean    *string  `json:"lean,omitempty"`
	Stance  *float64 `json:"stance,omitempty"`
	Score   float64  `json:"score"`
	Summary string   `json:"summary"`
}

// RecommendResponse is the body returned by the recommendation service.
type RecommendResponse struct {
	Clicked         string      `json:"clicked"`
	Recommendations []Candidate `json:"recommendations"`
}

// SummaryResponse is the body of GET /article/summary/by-link.
type SummaryResponse struct {
	Summary string `json:"summary"`
}
