package types

import "sort"

// TimelineEvent is one dated entry on a timeline.
type TimelineEvent struct {
	ID          string `json:"id"`
	Date        string `json:"date"` // YYYY-MM-DD
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Timeline is a named list of events. Events are stored in insertion order.
type Timeline struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id,omitempty"`
	Name      string          `json:"name"`
	Events    []TimelineEvent `json:"events"`
	CreatedAt int64           `json:"createdAt"`
	UpdatedAt int64           `json:"updatedAt,omitempty"`
}

// DocumentID returns the timeline id.
func (t Timeline) DocumentID() string { return t.ID }

// Validate checks the id and every event date.
func (t Timeline) Validate() error {
	if t.ID == "" {
		return ErrInvalidID
	}
	for _, e := range t.Events {
		if !validDate(e.Date) {
			return ErrInvalidDate
		}
	}
	return nil
}

// SortedEvents returns a copy of the events ordered by date, oldest first.
// Events on the same date keep their stored order.
func (t Timeline) SortedEvents() []TimelineEvent {
	events := make([]TimelineEvent, len(t.Events))
	copy(events, t.Events)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date < events[j].Date
	})
	return events
}
