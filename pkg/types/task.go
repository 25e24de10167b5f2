package types

// Task priorities. Higher is more urgent.
const (
	PriorityNone   = 0
	PriorityLow    = 1
	PriorityMedium = 2
	PriorityHigh   = 3
)

// Recurrence describes how a task repeats.
type Recurrence struct {
	Frequency string `json:"frequency"` // daily, weekly or monthly.
}

// Task is a to-do item. Subtasks point at their parent through ParentID; the
// parent relation forms a forest.
type Task struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id,omitempty"`
	Text      string      `json:"text"`
	Completed bool        `json:"completed"`
	Priority  int         `json:"priority"`
	DueDate   string      `json:"dueDate,omitempty"` // YYYY-MM-DD
	ParentID  string      `json:"parentId,omitempty"`
	Recurring *Recurrence `json:"recurring,omitempty"`
	CreatedAt int64       `json:"createdAt"`
	UpdatedAt int64       `json:"updatedAt,omitempty"`
}

// DocumentID returns the task id.
func (t Task) DocumentID() string { return t.ID }

// Validate checks the fields of a single task. Parent references are checked
// against the whole collection by CheckTaskParent.
func (t Task) Validate() error {
	if t.ID == "" {
		return ErrInvalidID
	}
	if t.Priority < PriorityNone || t.Priority > PriorityHigh {
		return ErrInvalidPriority
	}
	if t.DueDate != "" && !validDate(t.DueDate) {
		return ErrInvalidDate
	}
	return nil
}

// CheckTaskParent reports ErrInvalidParent when candidate's ParentID does not
// name a task in existing, names candidate itself, or would close a cycle.
// existing may or may not contain candidate; its stored copy is ignored.
func CheckTaskParent(existing []Task, candidate Task) error {
	if candidate.ParentID == "" {
		return nil
	}
	if candidate.ParentID == candidate.ID {
		return ErrInvalidParent
	}
	parents := make(map[string]string, len(existing))
	for _, t := range existing {
		parents[t.ID] = t.ParentID
	}
	if _, ok := parents[candidate.ParentID]; !ok {
		return ErrInvalidParent
	}
	parents[candidate.ID] = candidate.ParentID

	seen := map[string]bool{candidate.ID: true}
	for id := candidate.ParentID; id != ""; id = parents[id] {
		if seen[id] {
			return ErrInvalidParent
		}
		seen[id] = true
	}
	return nil
}
