// Package milestone derives system-awarded milestones from the user's data.
// Check is pure; Service loads the data, persists new awards and reports
// them through a Notifier.
package milestone

import "github.com/mesh-intelligence/focusflow/pkg/types"

// Snapshot is the data the rules look at.
type Snapshot struct {
	Tasks   []types.Task
	Notes   []types.Note
	Journal []types.JournalEntry
	Folders []types.Folder
	Goals   []types.Goal
}

// All is the milestone catalogue in display order.
var All = types.MilestoneCatalog

// Order lists milestone ids in the order rules are evaluated.
var Order = func() []types.MilestoneID {
	ids := make([]types.MilestoneID, len(All))
	for i, def := range All {
		ids[i] = def.ID
	}
	return ids
}()

// Thresholds.
const (
	taskStarterCount = 10
	taskMasterCount  = 100
	noteTakerCount   = 5
	diaristCount     = 10
	weekStreakDays   = 7
	monthStreakDays  = 30
)

type rule struct {
	id  types.MilestoneID
	met func(s Snapshot, completed int) bool
}

var rules = []rule{
	{types.MilestoneFirstSteps, func(_ Snapshot, completed int) bool { return completed >= 1 }},
	{types.MilestoneTaskStarter, func(_ Snapshot, completed int) bool { return completed >= taskStarterCount }},
	{types.MilestoneTaskMaster, func(_ Snapshot, completed int) bool { return completed >= taskMasterCount }},
	{types.MilestoneNoteTaker, func(s Snapshot, _ int) bool { return len(s.Notes) >= noteTakerCount }},
	{types.MilestoneDiarist, func(s Snapshot, _ int) bool { return len(s.Journal) >= diaristCount }},
	{types.MilestoneWeekStreak, func(s Snapshot, _ int) bool { return habitStreakAtLeast(s.Goals, weekStreakDays) }},
	{types.MilestoneMonthStreak, func(s Snapshot, _ int) bool { return habitStreakAtLeast(s.Goals, monthStreakDays) }},
	{types.MilestoneOrganizer, func(s Snapshot, _ int) bool { return len(s.Folders) >= 1 }},
	{types.MilestoneGoalSetter, func(s Snapshot, _ int) bool { return anyTarget(s.Goals) }},
}

// Check returns the ids whose condition holds in s and that are not already
// unlocked, in catalogue order. It never returns an unlocked id.
func Check(s Snapshot, unlocked []types.Milestone) []types.MilestoneID {
	have := make(map[types.MilestoneID]bool, len(unlocked))
	for _, m := range unlocked {
		have[m.ID] = true
	}

	completed := 0
	for _, t := range s.Tasks {
		if t.Completed {
			completed++
		}
	}

	var out []types.MilestoneID
	for _, r := range rules {
		if !have[r.id] && r.met(s, completed) {
			out = append(out, r.id)
		}
	}
	return out
}

func habitStreakAtLeast(goals []types.Goal, days int) bool {
	for _, g := range goals {
		if g.IsHabit() && g.CurrentStreak >= days {
			return true
		}
	}
	return false
}

func anyTarget(goals []types.Goal) bool {
	for _, g := range goals {
		if g.IsTarget() {
			return true
		}
	}
	return false
}
