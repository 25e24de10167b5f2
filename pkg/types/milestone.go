package types

// MilestoneID identifies a system-awarded badge. The set of identifiers is
// closed; identifiers are never generated.
type MilestoneID string

// Milestone identifiers.
const (
	MilestoneFirstSteps  MilestoneID = "first-steps"
	MilestoneTaskStarter MilestoneID = "task-starter"
	MilestoneTaskMaster  MilestoneID = "task-master"
	MilestoneNoteTaker   MilestoneID = "note-taker"
	MilestoneDiarist     MilestoneID = "diarist"
	MilestoneWeekStreak  MilestoneID = "7-day-streak"
	MilestoneMonthStreak MilestoneID = "30-day-streak"
	MilestoneOrganizer   MilestoneID = "organizer"
	MilestoneGoalSetter  MilestoneID = "goal-setter"
)

// MilestoneDefinition is the catalogue entry of a milestone.
type MilestoneDefinition struct {
	ID          MilestoneID
	Name        string
	Description string
}

// MilestoneCatalog lists every milestone in display order.
var MilestoneCatalog = []MilestoneDefinition{
	{MilestoneFirstSteps, "First Steps", "Complete your very first task."},
	{MilestoneTaskStarter, "Task Starter", "Complete your first 10 tasks."},
	{MilestoneTaskMaster, "Task Master", "Complete 100 tasks."},
	{MilestoneNoteTaker, "Note Taker", "Create your first 5 notes."},
	{MilestoneDiarist, "Diarist", "Write 10 journal entries."},
	{MilestoneWeekStreak, "7-Day Streak", "Maintain a 7-day streak on any habit."},
	{MilestoneMonthStreak, "30-Day Streak", "Maintain a 30-day streak on any habit."},
	{MilestoneOrganizer, "Organizer", "Create your first folder (in Notes or Journal)."},
	{MilestoneGoalSetter, "Goal Setter", "Create your first long-term, measurable goal."},
}

// LookupMilestone returns the catalogue entry for id.
func LookupMilestone(id MilestoneID) (MilestoneDefinition, bool) {
	for _, def := range MilestoneCatalog {
		if def.ID == id {
			return def, true
		}
	}
	return MilestoneDefinition{}, false
}

// Milestone is an awarded badge. At most one record exists per identifier.
type Milestone struct {
	ID          MilestoneID `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	AchievedOn  int64       `json:"achievedOn,omitempty"`
}

// DocumentID returns the milestone identifier.
func (m Milestone) DocumentID() string { return string(m.ID) }

// Validate rejects identifiers outside the catalogue.
func (m Milestone) Validate() error {
	if m.ID == "" {
		return ErrInvalidID
	}
	if _, ok := LookupMilestone(m.ID); !ok {
		return ErrUnknownMilestone
	}
	return nil
}

// NewMilestone builds the record awarded for def at achievedOn (epoch millis).
func NewMilestone(def MilestoneDefinition, achievedOn int64) Milestone {
	return Milestone{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
		AchievedOn:  achievedOn,
	}
}
