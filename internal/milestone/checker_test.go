package milestone

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/focusflow/pkg/types"
)

func completedTasks(n int) []types.Task {
	tasks := make([]types.Task, n)
	for i := range tasks {
		tasks[i] = types.Task{ID: string(rune('a' + i%26)), Completed: true}
	}
	return tasks
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		snapshot Snapshot
		unlocked []types.Milestone
		want     []types.MilestoneID
	}{
		{
			name: "empty data",
			want: nil,
		},
		{
			name:     "eleven completed tasks",
			snapshot: Snapshot{Tasks: completedTasks(11)},
			want:     []types.MilestoneID{types.MilestoneFirstSteps, types.MilestoneTaskStarter},
		},
		{
			name:     "open tasks do not count",
			snapshot: Snapshot{Tasks: []types.Task{{ID: "t", Completed: false}}},
			want:     nil,
		},
		{
			name:     "already unlocked are skipped",
			snapshot: Snapshot{Tasks: completedTasks(11)},
			unlocked: []types.Milestone{{ID: types.MilestoneFirstSteps}},
			want:     []types.MilestoneID{types.MilestoneTaskStarter},
		},
		{
			name: "notes journal and folders",
			snapshot: Snapshot{
				Notes:   make([]types.Note, 5),
				Journal: make([]types.JournalEntry, 10),
				Folders: make([]types.Folder, 1),
			},
			want: []types.MilestoneID{types.MilestoneNoteTaker, types.MilestoneDiarist, types.MilestoneOrganizer},
		},
		{
			name:     "below thresholds",
			snapshot: Snapshot{Notes: make([]types.Note, 4), Journal: make([]types.JournalEntry, 9)},
			want:     nil,
		},
		{
			name: "habit streaks",
			snapshot: Snapshot{Goals: []types.Goal{
				{ID: "g1", Type: types.GoalTypeHabit, CurrentStreak: 30},
			}},
			want: []types.MilestoneID{types.MilestoneWeekStreak, types.MilestoneMonthStreak},
		},
		{
			name: "target goals do not count toward streaks",
			snapshot: Snapshot{Goals: []types.Goal{
				{ID: "g1", Type: types.GoalTypeTarget, CurrentStreak: 40},
			}},
			want: []types.MilestoneID{types.MilestoneGoalSetter},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Check(tt.snapshot, tt.unlocked))
		})
	}
}

func TestCheckIsIdempotent(t *testing.T) {
	snap := Snapshot{Tasks: completedTasks(100), Folders: make([]types.Folder, 2)}
	first := Check(snap, nil)

	var unlocked []types.Milestone
	for _, id := range first {
		unlocked = append(unlocked, types.Milestone{ID: id})
	}
	assert.Empty(t, Check(snap, unlocked))
}

func TestOrderMatchesCatalogue(t *testing.T) {
	assert.Len(t, Order, len(rules))
	for i, r := range rules {
		assert.Equal(t, Order[i], r.id)
	}
}
