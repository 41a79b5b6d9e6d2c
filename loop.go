package trail

import "context"

// Loop runs a task once per frame until its context is cancelled. A new Loop
// is disarmed: Tick does nothing until Start is called. The host (normally
// ebiten's Update) drives it by calling Tick every frame.
type Loop struct {
	ctx    context.Context
	cancel context.CancelFunc
	task   func()
	armed  bool
	frames uint64
}

// NewLoop returns a disarmed loop bound to a child of parent.
func NewLoop(parent context.Context, task func()) *Loop {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Loop{ctx: ctx, cancel: cancel, task: task}
}

// Start arms the loop. The task runs from the next Tick onward.
func (l *Loop) Start() {
	l.armed = true
}

// Armed reports whether Start has been called.
func (l *Loop) Armed() bool {
	return l.armed
}

// Tick runs the task once if the loop is armed. It returns false once the
// loop's context is done; the task never runs after that.
func (l *Loop) Tick() bool {
	if l.ctx.Err() != nil {
		return false
	}
	if !l.armed {
		return true
	}
	l.frames++
	l.task()
	return true
}

// Stop cancels the loop. Idempotent.
func (l *Loop) Stop() {
	l.cancel()
}

// Done is closed when the loop stops, either through Stop or its parent context.
func (l *Loop) Done() <-chan struct{} {
	return l.ctx.Done()
}

// Err returns the cancellation cause, or nil while the loop is live.
func (l *Loop) Err() error {
	return l.ctx.Err()
}

// Frames returns how many times the task has run.
func (l *Loop) Frames() uint64 {
	return l.frames
}
