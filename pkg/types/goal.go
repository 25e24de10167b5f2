package types

// Goal types. The type tag selects which fields of Goal are meaningful and
// cannot change after creation.
const (
	GoalTypeHabit  = "habit"
	GoalTypeTarget = "target"
)

// Goal is a discriminated union of a habit (streak tracking) and a target
// (measurable progress toward a value).
type Goal struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id,omitempty"`
	Text      string `json:"text"`
	Type      string `json:"type"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt,omitempty"`

	// Habit fields.
	CompletedDates []string `json:"completedDates,omitempty"`
	CurrentStreak  int      `json:"currentStreak,omitempty"`
	LongestStreak  int      `json:"longestStreak,omitempty"`
	TargetType     string   `json:"targetType,omitempty"` // completions or streak

	// Target fields. TargetValue is shared with habits that set a target.
	CurrentValue float64 `json:"currentValue,omitempty"`
	TargetValue  float64 `json:"targetValue,omitempty"`
	Unit         string  `json:"unit,omitempty"`
}

// DocumentID returns the goal id.
func (g Goal) DocumentID() string { return g.ID }

// IsHabit reports whether the goal is a habit.
func (g Goal) IsHabit() bool { return g.Type == GoalTypeHabit }

// IsTarget reports whether the goal is a measurable target.
func (g Goal) IsTarget() bool { return g.Type == GoalTypeTarget }

// Validate checks the id, the union tag and the habit completion dates.
func (g Goal) Validate() error {
	if g.ID == "" {
		return ErrInvalidID
	}
	switch g.Type {
	case GoalTypeHabit:
		for _, d := range g.CompletedDates {
			if !validDate(d) {
				return ErrInvalidDate
			}
		}
	case GoalTypeTarget:
	default:
		return ErrInvalidGoalType
	}
	return nil
}
