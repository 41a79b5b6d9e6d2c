package trail

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"
)

// recordingScheduler records submissions and cancellations. Callbacks only
// fire when a test calls start or complete.
type recordingScheduler struct {
	submitted []Timeline
	handles   []Handle
	cancelled []Handle
	started   map[Handle]bool
	finished  map[Handle]bool
	next      Handle
}

func newRecordingScheduler() *recordingScheduler {
	return &recordingScheduler{started: map[Handle]bool{}, finished: map[Handle]bool{}}
}

func (r *recordingScheduler) Submit(tl Timeline) Handle {
	r.next++
	r.submitted = append(r.submitted, tl)
	r.handles = append(r.handles, r.next)
	return r.next
}

func (r *recordingScheduler) Cancel(h Handle) {
	r.cancelled = append(r.cancelled, h)
	if r.started[h] && !r.finished[h] {
		r.finished[h] = true
		r.timeline(h).OnComplete()
	}
}

func (r *recordingScheduler) timeline(h Handle) Timeline {
	return r.submitted[h-1]
}

func (r *recordingScheduler) start(h Handle) {
	r.started[h] = true
	r.timeline(h).OnStart()
}

func (r *recordingScheduler) complete(h Handle) {
	r.finished[h] = true
	r.timeline(h).OnComplete()
}

// countingScheduler wraps a TweenScheduler and logs every lifecycle callback.
type countingScheduler struct {
	*TweenScheduler
	activations   int
	deactivations int
	events        []string
}

func newCountingScheduler() *countingScheduler {
	return &countingScheduler{TweenScheduler: NewTweenScheduler()}
}

func (c *countingScheduler) Submit(tl Timeline) Handle {
	n := len(c.events)
	onStart, onComplete := tl.OnStart, tl.OnComplete
	tl.OnStart = func() {
		c.activations++
		c.events = append(c.events, fmt.Sprintf("start %s #%d", tl.Target.Name, n))
		onStart()
	}
	tl.OnComplete = func() {
		c.deactivations++
		c.events = append(c.events, fmt.Sprintf("complete %s #%d", tl.Target.Name, n))
		onComplete()
	}
	return c.TweenScheduler.Submit(tl)
}

func testSprites(n int, w, h float64) []*Sprite {
	sprites := make([]*Sprite, n)
	for i := range sprites {
		sprites[i] = NewSizedSprite(fmt.Sprintf("img%d", i), nil, w, h)
	}
	return sprites
}

func slotOf(t *testing.T, sprites []*Sprite, sp *Sprite) int {
	t.Helper()
	for i, s := range sprites {
		if s == sp {
			return i
		}
	}
	t.Fatalf("sprite %q not in pool", sp.Name)
	return -1
}

func newTestController(t *testing.T, p *Pointer, sched Scheduler, sprites []*Sprite, threshold float64) *Controller {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Threshold = threshold
	c, err := NewController(context.Background(), p, sched, sprites, cfg)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return c
}

func TestControllerInitialState(t *testing.T) {
	c := newTestController(t, nil, nil, testSprites(3, 10, 10), 380)
	if c.PoolSize() != 3 {
		t.Errorf("PoolSize = %d, want 3", c.PoolSize())
	}
	if c.Cursor() != 0 || c.ZOrder() != 1 || c.ActiveCount() != 0 || !c.Idle() {
		t.Errorf("cursor=%d z=%d active=%d idle=%v", c.Cursor(), c.ZOrder(), c.ActiveCount(), c.Idle())
	}
	if c.Running() {
		t.Error("controller should not run before the first pointer move")
	}
}

func TestControllerInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Smoothing = 0
	_, err := NewController(context.Background(), nil, nil, nil, cfg)
	if !errors.Is(err, errInvalidConfig) {
		t.Fatalf("err = %v, want errInvalidConfig", err)
	}
}

func TestControllerWaitsForFirstMove(t *testing.T) {
	p := NewPointer()
	rec := newRecordingScheduler()
	c := newTestController(t, p, rec, testSprites(2, 10, 10), 10)

	for range 5 {
		if !c.Update() {
			t.Fatal("Update returned false on a live controller")
		}
	}
	if c.loop.Frames() != 0 {
		t.Errorf("frames = %d before any move, want 0", c.loop.Frames())
	}

	// The first move seeds the reference point, so a far first position
	// never causes a reveal.
	p.Move(500, 500)
	c.Update()
	if len(rec.submitted) != 0 {
		t.Errorf("reveals after first move = %d, want 0", len(rec.submitted))
	}
	if c.LastTrigger() != (Vec2{500, 500}) || Distance(c.Smoothed(), Vec2{500, 500}) > 1e-9 {
		t.Errorf("seeded lastTrigger=%v smoothed=%v", c.LastTrigger(), c.Smoothed())
	}
	if !c.Running() {
		t.Error("controller should run after the first move")
	}
}

func TestControllerEndToEnd(t *testing.T) {
	p := NewPointer()
	rec := newRecordingScheduler()
	sprites := testSprites(3, 40, 20)
	c := newTestController(t, p, rec, sprites, 100)

	p.Move(0, 0)
	c.Update()

	p.Move(150, 0)
	c.Update()
	if len(rec.submitted) != 1 {
		t.Fatalf("reveals = %d, want 1", len(rec.submitted))
	}
	if got := slotOf(t, sprites, rec.submitted[0].Target); got != 0 {
		t.Errorf("reveal #1 slot = %d, want 0", got)
	}
	if c.LastTrigger() != (Vec2{150, 0}) {
		t.Errorf("lastTrigger = %v, want {150 0}", c.LastTrigger())
	}

	p.Move(310, 0)
	c.Update()
	if len(rec.submitted) != 2 {
		t.Fatalf("reveals = %d, want 2", len(rec.submitted))
	}
	if got := slotOf(t, sprites, rec.submitted[1].Target); got != 1 {
		t.Errorf("reveal #2 slot = %d, want 1", got)
	}
	if c.LastTrigger() != (Vec2{310, 0}) {
		t.Errorf("lastTrigger = %v, want {310 0}", c.LastTrigger())
	}

	p.Move(350, 0)
	c.Update()
	if len(rec.submitted) != 2 {
		t.Errorf("reveals = %d after a 40px move, want 2", len(rec.submitted))
	}
}

func TestControllerThresholdIsStrict(t *testing.T) {
	p := NewPointer()
	rec := newRecordingScheduler()
	c := newTestController(t, p, rec, testSprites(4, 10, 10), 380)

	p.Move(0, 0)
	c.Update()
	for x := 20.0; x <= 380; x += 20 {
		p.Move(x, 0)
		c.Update()
	}
	if len(rec.submitted) != 0 {
		t.Fatalf("reveals within threshold = %d, want 0", len(rec.submitted))
	}

	p.Move(381, 0)
	c.Update()
	if len(rec.submitted) != 1 {
		t.Fatalf("reveals = %d, want 1", len(rec.submitted))
	}
	if c.LastTrigger() != (Vec2{381, 0}) {
		t.Errorf("lastTrigger = %v, want {381 0}", c.LastTrigger())
	}

	// Distance is measured from the new reference point.
	p.Move(381, 380)
	c.Update()
	if len(rec.submitted) != 1 {
		t.Errorf("reveals = %d at exactly the threshold, want 1", len(rec.submitted))
	}
}

func TestControllerRoundRobin(t *testing.T) {
	const pool = 4
	p := NewPointer()
	rec := newRecordingScheduler()
	sprites := testSprites(pool, 10, 10)
	c := newTestController(t, p, rec, sprites, 10)

	p.Move(0, 0)
	c.Update()
	for i := 1; i <= 10; i++ {
		p.Move(float64(i*50), 0)
		c.Update()
	}

	if len(rec.submitted) != 10 {
		t.Fatalf("reveals = %d, want 10", len(rec.submitted))
	}
	for i, tl := range rec.submitted {
		if got := slotOf(t, sprites, tl.Target); got != i%pool {
			t.Errorf("reveal %d slot = %d, want %d", i, got, i%pool)
		}
	}
	if c.Cursor() != 10%pool {
		t.Errorf("cursor = %d, want %d", c.Cursor(), 10%pool)
	}
}

func TestControllerEmptyPool(t *testing.T) {
	p := NewPointer()
	rec := newRecordingScheduler()
	c := newTestController(t, p, rec, nil, 10)

	p.Move(0, 0)
	for i := 1; i <= 20; i++ {
		p.Move(float64(i*100), 0)
		if !c.Update() {
			t.Fatal("Update returned false")
		}
	}
	if len(rec.submitted) != 0 || c.Reveals() != 0 {
		t.Errorf("empty pool submitted %d timelines", len(rec.submitted))
	}
	if c.Cursor() != 0 {
		t.Errorf("cursor = %d, want 0", c.Cursor())
	}
}

func TestControllerNilScheduler(t *testing.T) {
	p := NewPointer()
	c := newTestController(t, p, nil, testSprites(2, 10, 10), 10)
	p.Move(0, 0)
	p.Move(100, 0)
	c.Update()
	if c.Reveals() != 1 {
		t.Errorf("reveals = %d, want 1", c.Reveals())
	}
	if c.Sprites()[0].Animation() != NoHandle {
		t.Error("nop scheduler should hand out NoHandle")
	}
}

func TestControllerTimelineShape(t *testing.T) {
	p := NewPointer()
	rec := newRecordingScheduler()
	sprites := testSprites(1, 40, 20)
	c := newTestController(t, p, rec, sprites, 1000)

	p.Move(200, 100)
	p.Move(300, 100)
	c.reveal()

	if len(rec.submitted) != 1 {
		t.Fatalf("submitted = %d, want 1", len(rec.submitted))
	}
	tl := rec.submitted[0]
	if len(tl.Phases) != 3 {
		t.Fatalf("phases = %d, want 3", len(tl.Phases))
	}
	reveal, drift, fade := tl.Phases[0], tl.Phases[1], tl.Phases[2]

	// Spawn is centered on the smoothed point, not the pointer.
	if reveal.From.X != Abs(180) || reveal.From.Y != Abs(90) {
		t.Errorf("spawn = (%v, %v), want (180, 90)", reveal.From.X, reveal.From.Y)
	}
	if reveal.From.Scale != Abs(0) || reveal.To.Scale != Abs(1) || reveal.From.Alpha != Abs(1) {
		t.Errorf("reveal props from=%+v to=%+v", reveal.From, reveal.To)
	}
	if reveal.From.Z != Abs(2) {
		t.Errorf("z = %v, want 2", reveal.From.Z)
	}
	if reveal.Offset != 0 || reveal.Duration != 0.3 || reveal.Ease != EasePower1Out {
		t.Errorf("reveal timing %+v", reveal)
	}

	// 100px of lag: unit (1, 0) scaled by 100/100, amplified by 110.
	if drift.To.X != Rel(110) || drift.To.Y != Rel(0) {
		t.Errorf("drift = (%v, %v), want (+110, +0)", drift.To.X, drift.To.Y)
	}
	if drift.Offset != 0.05 || drift.Duration != 1.5 || drift.Ease != EasePower4Out {
		t.Errorf("drift timing %+v", drift)
	}

	if fade.To.Alpha != Abs(0) || fade.Offset != 3 || fade.Duration != 0.3 || fade.Ease != EasePower3Out {
		t.Errorf("fade %+v", fade)
	}
}

func TestControllerStationaryPointer(t *testing.T) {
	p := NewPointer()
	rec := newRecordingScheduler()
	c := newTestController(t, p, rec, testSprites(2, 10, 10), 1000)

	p.Move(0, 0)
	p.Move(100, 100)
	prev := c.Smoothed()
	for range 300 {
		c.Update()
		s := c.Smoothed()
		if s.X < prev.X-1e-9 || s.X > 100+1e-9 {
			t.Fatalf("smoothed.X moved away from target: %v -> %v", prev.X, s.X)
		}
		prev = s
	}
	if math.Abs(prev.X-100) > 1e-6 || math.Abs(prev.Y-100) > 1e-6 {
		t.Fatalf("smoothed = %v, want ~(100, 100)", prev)
	}

	// Fully converged: the direction vector is exactly zero.
	c.smoothed = Vec2{100, 100}
	c.reveal()
	drift := rec.submitted[0].Phases[1].To
	if drift.X.V != 0 || drift.Y.V != 0 || math.IsNaN(drift.X.V) || math.IsNaN(drift.Y.V) {
		t.Errorf("drift = (%v, %v), want zero", drift.X.V, drift.Y.V)
	}
}

func TestControllerCancelsReusedSlot(t *testing.T) {
	p := NewPointer()
	rec := newRecordingScheduler()
	sprites := testSprites(1, 10, 10)
	c := newTestController(t, p, rec, sprites, 10)

	p.Move(0, 0)
	p.Move(100, 0)
	c.Update()
	first := rec.handles[0]
	rec.start(first)
	if c.ActiveCount() != 1 || c.Idle() {
		t.Fatalf("after start: active=%d idle=%v", c.ActiveCount(), c.Idle())
	}

	p.Move(200, 0)
	c.Update()
	if len(rec.cancelled) != 1 || rec.cancelled[0] != first {
		t.Fatalf("cancelled = %v, want [%d]", rec.cancelled, first)
	}
	// Forced deactivation fired during the cancel.
	if c.ActiveCount() != 0 || !c.Idle() {
		t.Errorf("after cancel: active=%d idle=%v", c.ActiveCount(), c.Idle())
	}
	second := rec.handles[1]
	if sprites[0].Animation() != second {
		t.Errorf("sprite handle = %d, want %d", sprites[0].Animation(), second)
	}

	rec.start(second)
	rec.complete(second)
	if c.ActiveCount() != 0 || !c.Idle() {
		t.Errorf("after complete: active=%d idle=%v", c.ActiveCount(), c.Idle())
	}
	if sprites[0].Animation() != NoHandle {
		t.Error("completed timeline should clear the sprite's handle")
	}
}

func TestControllerDeactivationOrder(t *testing.T) {
	p := NewPointer()
	sched := newCountingScheduler()
	c := newTestController(t, p, sched, testSprites(1, 10, 10), 10)

	p.Move(0, 0)
	p.Move(100, 0)
	c.Update()
	sched.Update(1.0 / 60)
	p.Move(200, 0)
	c.Update()
	sched.Update(1.0 / 60)

	want := []string{"start img0 #0", "complete img0 #0", "start img0 #2"}
	if len(sched.events) != len(want) {
		t.Fatalf("events = %v, want %v", sched.events, want)
	}
	for i := range want {
		if sched.events[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, sched.events[i], want[i])
		}
	}
	if c.ActiveCount() != 1 {
		t.Errorf("active = %d, want 1", c.ActiveCount())
	}
}

func TestControllerActiveCountInvariant(t *testing.T) {
	const pool = 5
	p := NewPointer()
	sched := newCountingScheduler()
	c := newTestController(t, p, sched, testSprites(pool, 30, 30), 60)
	rng := rand.New(rand.NewPCG(7, 11))

	check := func(frame int) {
		t.Helper()
		active := c.ActiveCount()
		if active != sched.activations-sched.deactivations {
			t.Fatalf("frame %d: active = %d, activations-deactivations = %d",
				frame, active, sched.activations-sched.deactivations)
		}
		if active < 0 || active > pool {
			t.Fatalf("frame %d: active = %d out of [0, %d]", frame, active, pool)
		}
		if c.Idle() != (active == 0) {
			t.Fatalf("frame %d: idle = %v with active = %d", frame, c.Idle(), active)
		}
	}

	x, y := 400.0, 300.0
	p.Move(x, y)
	for frame := range 1200 {
		x += rng.Float64()*80 - 40
		y += rng.Float64()*80 - 40
		p.Move(x, y)
		c.Update()
		check(frame)
		sched.Update(1.0 / 60)
		check(frame)
	}
	if c.Reveals() == 0 {
		t.Fatal("random walk produced no reveals")
	}

	// Let everything finish; the next frame resets the z counter.
	for range 400 {
		sched.Update(1.0 / 60)
	}
	c.Update()
	check(-1)
	if !c.Idle() || c.ZOrder() != 1 {
		t.Errorf("after drain: idle=%v z=%d", c.Idle(), c.ZOrder())
	}
}

func TestControllerZOrderGrowsWhileActive(t *testing.T) {
	p := NewPointer()
	sched := newCountingScheduler()
	sprites := testSprites(4, 10, 10)
	c := newTestController(t, p, sched, sprites, 10)

	p.Move(0, 0)
	for i := 1; i <= 3; i++ {
		p.Move(float64(i*100), 0)
		c.Update()
		sched.Update(1.0 / 60)
	}
	if c.ZOrder() != 3 {
		t.Errorf("z = %d, want 3", c.ZOrder())
	}
	if sprites[2].ZIndex <= sprites[0].ZIndex {
		t.Errorf("newest sprite z %d not above oldest %d", sprites[2].ZIndex, sprites[0].ZIndex)
	}
}

func TestControllerClose(t *testing.T) {
	p := NewPointer()
	sched := newCountingScheduler()
	c := newTestController(t, p, sched, testSprites(3, 10, 10), 10)

	p.Move(0, 0)
	p.Move(100, 0)
	c.Update()
	sched.Update(1.0 / 60)
	p.Move(200, 0)
	c.Update() // submitted, not started

	c.Close()
	if c.ActiveCount() != 0 || !c.Idle() {
		t.Errorf("after Close: active=%d idle=%v", c.ActiveCount(), c.Idle())
	}
	if sched.Running() != 0 {
		t.Errorf("running timelines = %d, want 0", sched.Running())
	}
	if sched.activations != sched.deactivations {
		t.Errorf("activations %d != deactivations %d", sched.activations, sched.deactivations)
	}
	if c.Update() {
		t.Error("Update should return false after Close")
	}
	select {
	case <-c.Done():
	default:
		t.Error("Done should be closed after Close")
	}
}

func TestControllerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPointer()
	rec := newRecordingScheduler()
	c, err := NewController(ctx, p, rec, testSprites(2, 10, 10), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	p.Move(0, 0)
	cancel()
	p.Move(1000, 0)
	if c.Update() {
		t.Error("Update should return false after the context is cancelled")
	}
	if len(rec.submitted) != 0 {
		t.Error("no reveal should happen after cancellation")
	}
}
