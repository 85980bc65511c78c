package game

import "fmt"

// timeEpsilon absorbs float accumulation error in simulation time.
const timeEpsilon = 1e-9

type waitKind uint8

const (
	waitNone  waitKind = iota // resume on the next poll
	waitDelay                 // resume once the clock reaches a time
	waitUntil                 // resume once a predicate holds
	waitDone                  // task finished
)

// Wait is the suspension condition a task step returns.
type Wait struct {
	kind  waitKind
	delay float64
	pred  func() bool
}

// Yield resumes the task on the next poll.
func Yield() Wait { return Wait{kind: waitNone} }

// Sleep resumes the task after d seconds of simulation time.
func Sleep(d float64) Wait {
	if d < 0 {
		d = 0
	}
	return Wait{kind: waitDelay, delay: d}
}

// Until resumes the task on the first poll where pred returns true.
func Until(pred func() bool) Wait { return Wait{kind: waitUntil, pred: pred} }

// Done finishes the task.
func Done() Wait { return Wait{kind: waitDone} }

// Step advances a task by one resume and returns its next suspension.
// A step owns its own progress cursor.
type Step interface {
	Resume(now float64) Wait
}

// StepFunc adapts a function to Step.
type StepFunc func(now float64) Wait

func (f StepFunc) Resume(now float64) Wait { return f(now) }

// Task is a resumable unit of work registered with a TaskRunner.
type Task struct {
	id        uint64
	name      string
	step      Step
	wait      Wait
	resumeAt  float64
	cancelled bool
	done      bool
}

// Name returns the label given at spawn.
func (t *Task) Name() string { return t.name }

// Cancelled reports whether the task was cancelled before finishing.
func (t *Task) Cancelled() bool { return t.cancelled }

// Finished reports whether the task ran to completion.
func (t *Task) Finished() bool { return t.done }

// Active reports whether the task is still pending.
func (t *Task) Active() bool { return t != nil && !t.cancelled && !t.done }

func (t *Task) ready(now float64) bool {
	switch t.wait.kind {
	case waitDelay:
		return now+timeEpsilon >= t.resumeAt
	case waitUntil:
		return t.wait.pred == nil || t.wait.pred()
	case waitDone:
		return false
	default:
		return true
	}
}

// TaskRunner polls resumable tasks once per tick in registration order.
// It is not safe for concurrent use.
type TaskRunner struct {
	tasks  []*Task
	nextID uint64
	now    float64

	// Debug makes resuming a cancelled task panic instead of no-op.
	Debug bool
}

// NewTaskRunner creates an empty runner.
func NewTaskRunner(debug bool) *TaskRunner {
	return &TaskRunner{Debug: debug}
}

// Spawn registers a task. Its first resume happens on the next Tick.
func (r *TaskRunner) Spawn(name string, step Step) *Task {
	r.nextID++
	t := &Task{id: r.nextID, name: name, step: step, wait: Yield()}
	r.tasks = append(r.tasks, t)
	return t
}

// Go is Spawn for a plain function.
func (r *TaskRunner) Go(name string, fn func(now float64) Wait) *Task {
	return r.Spawn(name, StepFunc(fn))
}

// Tick resumes every ready task once. Tasks spawned during this tick are
// first polled on the next one.
func (r *TaskRunner) Tick(now float64) {
	r.now = now
	n := len(r.tasks)
	for i := 0; i < n; i++ {
		t := r.tasks[i]
		if !t.Active() || !t.ready(now) {
			continue
		}
		r.resume(t, now)
	}
	r.compact()
}

// Resume forces one resume of t regardless of its wait condition.
// Resuming a cancelled task panics in debug mode and is ignored otherwise.
func (r *TaskRunner) Resume(t *Task) {
	if t.cancelled {
		if r.Debug {
			panic(fmt.Sprintf("game: resume of cancelled task %q (#%d)", t.name, t.id))
		}
		return
	}
	if t.done {
		return
	}
	r.resume(t, r.now)
}

func (r *TaskRunner) resume(t *Task, now float64) {
	w := t.step.Resume(now)
	if t.cancelled {
		// The step cancelled itself (or was cancelled by a callee).
		return
	}
	t.wait = w
	switch w.kind {
	case waitDone:
		t.done = true
	case waitDelay:
		t.resumeAt = now + w.delay
	}
}

// Cancel removes t before its next resume. Cancelling twice is a no-op.
func (r *TaskRunner) Cancel(t *Task) {
	if t == nil || t.done {
		return
	}
	t.cancelled = true
}

// CancelAll cancels every pending task.
func (r *TaskRunner) CancelAll() {
	for _, t := range r.tasks {
		r.Cancel(t)
	}
}

// Pending returns the number of tasks still waiting to resume.
func (r *TaskRunner) Pending() int {
	count := 0
	for _, t := range r.tasks {
		if t.Active() {
			count++
		}
	}
	return count
}

// Now returns the clock value of the last Tick.
func (r *TaskRunner) Now() float64 { return r.now }

// compact drops finished and cancelled tasks in place.
func (r *TaskRunner) compact() {
	kept := r.tasks[:0]
	for _, t := range r.tasks {
		if t.Active() {
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(r.tasks); i++ {
		r.tasks[i] = nil
	}
	r.tasks = kept
}
