package types

// Achievement is a user-authored accomplishment log entry. It is unrelated to
// system-awarded milestones.
type Achievement struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date,omitempty"` // YYYY-MM-DD
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt,omitempty"`
}

// DocumentID returns the achievement id.
func (a Achievement) DocumentID() string { return a.ID }

// Validate checks the id and the optional date.
func (a Achievement) Validate() error {
	if a.ID == "" {
		return ErrInvalidID
	}
	if a.Date != "" && !validDate(a.Date) {
		return ErrInvalidDate
	}
	return nil
}

// FeedbackItem is a feedback message queued for sending.
type FeedbackItem struct {
	ID        string `json:"id"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	CreatedAt int64  `json:"createdAt"`
}

// DocumentID returns the feedback id.
func (f FeedbackItem) DocumentID() string { return f.ID }

// Validate checks the id.
func (f FeedbackItem) Validate() error {
	if f.ID == "" {
		return ErrInvalidID
	}
	return nil
}
