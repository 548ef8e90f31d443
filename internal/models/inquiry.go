package models

// InquiryStatus is the processing state of a user inquiry.
type InquiryStatus string

const (
	InquiryPending  InquiryStatus = "pending"
	InquiryAnswered InquiryStatus = "answered"
	InquiryClosed   InquiryStatus = "closed"
)

// Inquiry is a full inquiry record owned by a user.
type Inquiry struct {
	ID        int           `json:"id"`
	UserID    int           `json:"user_id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Status    InquiryStatus `json:"status"`
	IsPublic  bool          `json:"is_public"`
	CreatedAt *string       `json:"created_at"`
	UpdatedAt *string       `json:"updated_at"`
}

// InquiryBrief is the list projection of an inquiry.
type InquiryBrief struct {
	ID        int           `json:"id"`
	Title     string        `json:"title"`
	Status    InquiryStatus `json:"status"`
	CreatedAt *string       `json:"created_at"`
	UpdatedAt *string       `json:"updated_at"`
	Excerpt   *string       `json:"excerpt"`
}

// InquiryList is one page of the caller's inquiries.
type InquiryList struct {
	Count int            `json:"count"`
	Items []InquiryBrief `json:"items"`
}

// InquiryCreate is the body of POST /inquiries.
type InquiryCreate struct {
	Title    string `json:"title" validate:"required,max=200"`
	Content  string `json:"content" validate:"required"`
	IsPublic bool   `json:"is_public"`
}

// InquiryUpdate is the body of PATCH /inquiries/{id}.
type InquiryUpdate struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}
