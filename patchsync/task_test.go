package patchsync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		want     string
		terminal bool
	}{
		{StateIdle, "idle", false},
		{StateRunning, "running", false},
		{StateDone, "done", true},
		{StateFailed, "failed", true},
		{State(42), "unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.String())
			assert.Equal(t, tt.terminal, tt.state.Terminal())
		})
	}
}

func TestTaskLifecycle(t *testing.T) {
	task := newTask(7, WorkflowDelete)
	assert.Equal(t, uint64(7), task.ID())
	assert.Equal(t, WorkflowDelete, task.Workflow())
	assert.Equal(t, StateIdle, task.State())

	_, finished := task.Result()
	assert.False(t, finished)

	task.start()
	assert.Equal(t, StateRunning, task.State())

	require.True(t, task.finish(Result{Key: "k"}))
	assert.Equal(t, StateDone, task.State())

	assert.False(t, task.finish(Result{Err: errors.New("late")}), "terminal state is final")
	assert.Equal(t, StateDone, task.State())

	res, finished := task.Result()
	assert.True(t, finished)
	assert.Equal(t, "k", res.Key)
	assert.NoError(t, res.Err)
}

func TestTaskFailed(t *testing.T) {
	task := newTask(1, WorkflowListAvailable)
	task.start()
	boom := errors.New("boom")
	require.True(t, task.finish(Result{Err: boom}))
	close(task.done)

	res, err := task.Wait(context.Background())
	assert.Equal(t, StateFailed, task.State())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, res.Err, boom)
}

func TestTaskWaitContext(t *testing.T) {
	task := newTask(1, WorkflowListAvailable)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := task.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateIdle, task.State())
}
