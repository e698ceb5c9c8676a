package patchsync

import (
	"context"
	"sync"
	"time"
)

// Workflow names a user-facing operation.
type Workflow string

const (
	WorkflowCreateAndUpload  Workflow = "create-and-upload"
	WorkflowListAvailable    Workflow = "list-available"
	WorkflowDownloadAndApply Workflow = "download-and-apply"
	WorkflowDelete           Workflow = "delete"
	WorkflowListChanges      Workflow = "list-changes"
)

// State is the lifecycle state of a Task.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateDone
	StateFailed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is Done or Failed.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Result is the outcome of a finished Task. Only the fields relevant to the
// workflow are set.
type Result struct {
	// Key is the object key written, read or deleted.
	Key string

	// PatchPath is the local patch file built or downloaded.
	PatchPath string

	// Keys is the listing returned by ListAvailable.
	Keys []string

	// Paths is the changed path list returned by ListChanges.
	Paths []string

	// Err is the failure of a Failed task.
	Err error

	// Duration is how long the task ran.
	Duration time.Duration
}

// Task tracks one workflow invocation from Idle to Done or Failed. A Task
// moves to a terminal state exactly once.
type Task struct {
	id       uint64
	workflow Workflow

	mu     sync.Mutex
	state  State
	result Result
	done   chan struct{}
}

func newTask(id uint64, w Workflow) *Task {
	return &Task{
		id:       id,
		workflow: w,
		state:    StateIdle,
		done:     make(chan struct{}),
	}
}

// ID returns the orchestrator-unique task number.
func (t *Task) ID() uint64 {
	return t.id
}

// Workflow returns the workflow the task runs.
func (t *Task) Workflow() Workflow {
	return t.workflow
}

// State returns the current state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Done returns a channel closed once the task reaches a terminal state.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Result returns the result and whether the task has finished.
func (t *Task) Result() (Result, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.state.Terminal()
}

// Wait blocks until the task finishes or ctx is done. It returns the
// task's result together with its failure, or ctx's error if ctx ended first.
func (t *Task) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		r, _ := t.Result()
		return r, r.Err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (t *Task) start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateIdle {
		t.state = StateRunning
	}
}

// finish records the result and reports whether this call made the
// transition.
func (t *Task) finish(r Result) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Terminal() {
		return false
	}
	t.result = r
	if r.Err != nil {
		t.state = StateFailed
	} else {
		t.state = StateDone
	}
	return true
}
