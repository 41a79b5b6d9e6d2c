package trail

import "context"

// Controller reveals pooled sprites along the pointer's path. Every frame it
// measures how far the pointer travelled since the last reveal; past the
// threshold it takes the next sprite from a fixed ring, cancels whatever that
// sprite was doing and hands a fresh timeline to the Scheduler.
//
// The controller does nothing until the pointer first moves. That first move
// seeds the reference and smoothed positions and arms the frame loop.
type Controller struct {
	cfg     Config
	pointer *Pointer
	sched   Scheduler
	pool    []*Sprite
	loop    *Loop

	cursor      int // next slot to reveal
	zOrder      int
	activeCount int
	idle        bool

	lastTrigger Vec2
	smoothed    Vec2
	smoothedSet bool

	firstMove ListenerHandle
	reveals   uint64
	debug     bool
}

// NewController builds a controller over sprites, in order. The pool is fixed
// for the controller's lifetime. A nil pointer gets a fresh Pointer and a nil
// scheduler drops every timeline. Cancelling ctx stops the frame loop.
func NewController(ctx context.Context, pointer *Pointer, sched Scheduler, sprites []*Sprite, cfg Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if pointer == nil {
		pointer = NewPointer()
	}
	if sched == nil {
		sched = nopScheduler{}
	}
	c := &Controller{
		cfg:     cfg,
		pointer: pointer,
		sched:   sched,
		pool:    append([]*Sprite(nil), sprites...),
		zOrder:  1,
		idle:    true,
	}
	c.loop = NewLoop(ctx, c.tick)
	c.firstMove = pointer.OnFirstMove(c.seed)
	return c, nil
}

// seed runs on the first pointer move only.
func (c *Controller) seed(pos Vec2) {
	c.lastTrigger = pos
	c.smoothed = pos
	c.smoothedSet = true
	c.loop.Start()
}

// Update runs one frame of the trigger loop. It returns false once the
// controller has been closed or its context cancelled.
func (c *Controller) Update() bool {
	return c.loop.Tick()
}

func (c *Controller) tick() {
	cur := c.pointer.Position()

	if Distance(cur, c.lastTrigger) > c.cfg.Threshold {
		c.reveal()
		c.lastTrigger = cur
	}

	if !c.smoothedSet {
		c.smoothed = cur
		c.smoothedSet = true
	}
	c.smoothed.X = Lerp(c.smoothed.X, cur.X, c.cfg.Smoothing)
	c.smoothed.Y = Lerp(c.smoothed.Y, cur.Y, c.cfg.Smoothing)

	// Keep z-indices from growing without bound across long sessions.
	if c.idle && c.zOrder != 1 {
		c.zOrder = 1
	}
}

func (c *Controller) reveal() {
	if len(c.pool) == 0 {
		return
	}

	c.zOrder++
	slot := c.cursor
	c.cursor = (c.cursor + 1) % len(c.pool)
	sp := c.pool[slot]

	if h := sp.anim; h != NoHandle {
		sp.anim = NoHandle
		c.sched.Cancel(h)
	}

	cur := c.pointer.Position()
	dir := cur.Sub(c.smoothed)
	if d := dir.Len(); d != 0 {
		scale := d / c.cfg.DirectionDamping
		dir.X = dir.X / d * scale
		dir.Y = dir.Y / d * scale
	}

	w, h := sp.Size()
	spawn := Vec2{X: c.smoothed.X - w/2, Y: c.smoothed.Y - h/2}

	tl := c.timeline(sp, spawn, dir)
	var handle Handle
	tl.OnStart = c.onActivated
	tl.OnComplete = func() {
		if sp.anim == handle {
			sp.anim = NoHandle
		}
		c.onDeactivated()
	}
	handle = c.sched.Submit(tl)
	sp.anim = handle
	c.reveals++

	if c.debug {
		c.debugReveal(slot, sp, dir)
	}
}

// timeline describes the scale-in, drift and fade of one reveal.
func (c *Controller) timeline(sp *Sprite, spawn, dir Vec2) Timeline {
	r, d, f := c.cfg.Reveal, c.cfg.Drift, c.cfg.Fade
	amp := c.cfg.DriftAmplification
	return Timeline{
		Target: sp,
		Phases: []Phase{
			{
				Offset: r.Offset, Duration: r.Duration, Ease: r.Ease,
				From: Props{
					X: Abs(spawn.X), Y: Abs(spawn.Y),
					Scale: Abs(0), Alpha: Abs(1),
					Z: Abs(float64(c.zOrder)),
				},
				To: Props{X: Abs(spawn.X), Y: Abs(spawn.Y), Scale: Abs(1)},
			},
			{
				Offset: d.Offset, Duration: d.Duration, Ease: d.Ease,
				To: Props{X: Rel(dir.X * amp), Y: Rel(dir.Y * amp)},
			},
			{
				Offset: f.Offset, Duration: f.Duration, Ease: f.Ease,
				To: Props{Alpha: Abs(0)},
			},
		},
	}
}

func (c *Controller) onActivated() {
	c.activeCount++
	c.idle = false
}

func (c *Controller) onDeactivated() {
	if c.activeCount > 0 {
		c.activeCount--
	}
	if c.activeCount == 0 {
		c.idle = true
	}
}

// Close stops the frame loop, detaches from the pointer and cancels every
// running timeline. Deactivations fire for timelines that had started, so the
// controller ends idle.
func (c *Controller) Close() {
	c.loop.Stop()
	c.firstMove.Remove()
	for _, sp := range c.pool {
		if h := sp.anim; h != NoHandle {
			sp.anim = NoHandle
			c.sched.Cancel(h)
		}
	}
}

// Done is closed once the controller stops.
func (c *Controller) Done() <-chan struct{} { return c.loop.Done() }

// Running reports whether the first pointer move has armed the frame loop and
// the controller has not stopped.
func (c *Controller) Running() bool { return c.loop.Armed() && c.loop.Err() == nil }

// Pointer returns the pointer the controller follows.
func (c *Controller) Pointer() *Pointer { return c.pointer }

// Sprites returns the pool in slot order. The returned slice MUST NOT be mutated.
func (c *Controller) Sprites() []*Sprite { return c.pool }

// PoolSize returns the number of slots.
func (c *Controller) PoolSize() int { return len(c.pool) }

// Cursor returns the slot the next reveal will use.
func (c *Controller) Cursor() int { return c.cursor }

// ZOrder returns the z-index counter.
func (c *Controller) ZOrder() int { return c.zOrder }

// ActiveCount returns how many sprites are mid-animation.
func (c *Controller) ActiveCount() int { return c.activeCount }

// Idle reports whether no sprite is animating.
func (c *Controller) Idle() bool { return c.idle }

// Reveals returns how many reveals have been issued.
func (c *Controller) Reveals() uint64 { return c.reveals }

// LastTrigger returns the pointer position at the most recent reveal.
func (c *Controller) LastTrigger() Vec2 { return c.lastTrigger }

// Smoothed returns the trailing position new sprites spawn around.
func (c *Controller) Smoothed() Vec2 { return c.smoothed }

// Threshold returns the reveal distance in pixels.
func (c *Controller) Threshold() float64 { return c.cfg.Threshold }
