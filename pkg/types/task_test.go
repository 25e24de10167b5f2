package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskValidate(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr error
	}{
		{name: "minimal task", task: Task{ID: "t1"}},
		{name: "missing id", task: Task{Text: "x"}, wantErr: ErrInvalidID},
		{name: "priority above range", task: Task{ID: "t1", Priority: 4}, wantErr: ErrInvalidPriority},
		{name: "negative priority", task: Task{ID: "t1", Priority: -1}, wantErr: ErrInvalidPriority},
		{name: "valid due date", task: Task{ID: "t1", DueDate: "2024-02-29"}},
		{name: "malformed due date", task: Task{ID: "t1", DueDate: "29/02/2024"}, wantErr: ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheckTaskParent(t *testing.T) {
	existing := []Task{
		{ID: "root"},
		{ID: "child", ParentID: "root"},
		{ID: "grandchild", ParentID: "child"},
	}

	tests := []struct {
		name      string
		candidate Task
		wantErr   bool
	}{
		{name: "no parent", candidate: Task{ID: "new"}},
		{name: "existing parent", candidate: Task{ID: "new", ParentID: "grandchild"}},
		{name: "unknown parent", candidate: Task{ID: "new", ParentID: "ghost"}, wantErr: true},
		{name: "self parent", candidate: Task{ID: "root", ParentID: "root"}, wantErr: true},
		{name: "reparent root under its grandchild", candidate: Task{ID: "root", ParentID: "grandchild"}, wantErr: true},
		{name: "move grandchild to root", candidate: Task{ID: "grandchild", ParentID: "root"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTaskParent(existing, tt.candidate)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidParent)
				return
			}
			assert.NoError(t, err)
		})
	}
}
