package progress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress_Update(t *testing.T) {
	var changes []Progress
	ctx, tracker := WithNewTracker(context.Background(), "r1", "transform", func(p Progress) {
		changes = append(changes, p)
	})
	UpdateCtx(ctx, Delta{Workflows: 2, SkippedWorkflows: 1})
	UpdateCtx(ctx, Delta{Tasks: 3})
	UpdateCtx(ctx, Delta{CompletedTasks: 2, FailedTasks: 1})

	snapshot := tracker.Snapshot()
	assert.Equal(t, "r1", snapshot.RequestID)
	assert.Equal(t, 2, snapshot.Workflows)
	assert.Equal(t, 1, snapshot.SkippedWorkflows)
	assert.Equal(t, 3, snapshot.Tasks)
	assert.Equal(t, 2, snapshot.CompletedTasks)
	assert.Equal(t, 1, snapshot.FailedTasks)
	require.Len(t, changes, 3)
	assert.Equal(t, 3, changes[1].Tasks)

	v := tracker.Value()
	assert.Equal(t, []string{"workflows", "skipped_workflows", "tasks", "completed_tasks", "failed_tasks"}, v.Mapping().Keys())
	assert.Equal(t, "2", v.Field("completed_tasks").String())
}

func TestProgress_NoTracker(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
	UpdateCtx(context.Background(), Delta{Tasks: 1})
	var p *Progress
	p.Update(Delta{Tasks: 1})
	assert.Equal(t, 0, p.Snapshot().Tasks)
}
