package trail

import (
	"cmp"
	"slices"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenScheduler is the default Scheduler. Each phase becomes a group of
// gween tweens, one per animated property, created when the phase begins so
// relative targets resolve against the sprite's values at that moment.
//
// There is no global clock: call Update(dt) once per frame. Timelines are
// independent; cancelling one never touches the others.
type TweenScheduler struct {
	running []*timelineState
	byID    map[Handle]*timelineState
	scratch []*timelineState
	nextID  Handle
}

type timelineState struct {
	id       Handle
	tl       Timeline
	phases   []phaseState
	elapsed  float64
	duration float64
	started  bool
	done     bool
}

type phaseState struct {
	Phase
	fn     ease.TweenFunc
	begun  bool
	tweens [4]propTween
	count  int
}

type propTween struct {
	tw    *gween.Tween
	field *float64
	to    float64
}

// NewTweenScheduler returns an empty scheduler.
func NewTweenScheduler() *TweenScheduler {
	return &TweenScheduler{byID: make(map[Handle]*timelineState)}
}

// Submit queues tl and applies every phase's From values immediately, so the
// sprite is in its starting state before the next draw. A timeline without a
// target is ignored.
func (s *TweenScheduler) Submit(tl Timeline) Handle {
	if tl.Target == nil {
		return NoHandle
	}
	s.nextID++
	st := &timelineState{
		id:       s.nextID,
		tl:       tl,
		phases:   make([]phaseState, len(tl.Phases)),
		duration: tl.Duration(),
	}
	for i, ph := range tl.Phases {
		fn, err := EaseFunc(ph.Ease)
		if err != nil {
			fn = ease.Linear
		}
		st.phases[i] = phaseState{Phase: ph, fn: fn}
		applyProps(tl.Target, ph.From)
	}
	// Later phases write after earlier ones, so overlapping phases on the
	// same property resolve in favour of the one that started last.
	slices.SortStableFunc(st.phases, func(a, b phaseState) int {
		return cmp.Compare(a.Offset, b.Offset)
	})
	s.running = append(s.running, st)
	s.byID[st.id] = st
	return st.id
}

// Cancel stops the timeline identified by h. A started timeline gets its
// OnComplete callback before Cancel returns; the sprite keeps whatever values
// it had reached.
func (s *TweenScheduler) Cancel(h Handle) {
	st, ok := s.byID[h]
	if !ok || st.done {
		return
	}
	st.done = true
	s.remove(st)
	if st.started && st.tl.OnComplete != nil {
		st.tl.OnComplete()
	}
}

// Running reports how many timelines are queued or playing.
func (s *TweenScheduler) Running() int {
	return len(s.running)
}

// Update advances every timeline by dt seconds.
func (s *TweenScheduler) Update(dt float32) {
	if len(s.running) == 0 {
		return
	}
	// Callbacks may submit or cancel, so walk a snapshot.
	s.scratch = append(s.scratch[:0], s.running...)
	for _, st := range s.scratch {
		if st.done {
			continue
		}
		s.advance(st, float64(dt))
	}
	clear(s.scratch)
}

func (s *TweenScheduler) advance(st *timelineState, dt float64) {
	if !st.started {
		st.started = true
		if st.tl.OnStart != nil {
			st.tl.OnStart()
		}
		// OnStart may have cancelled us.
		if st.done {
			return
		}
	}

	prev := st.elapsed
	st.elapsed += dt
	target := st.tl.Target

	for i := range st.phases {
		ph := &st.phases[i]
		if st.elapsed < ph.Offset {
			continue
		}
		local := dt
		if !ph.begun {
			ph.begin(target)
			local = st.elapsed - max(prev, ph.Offset)
		}
		ph.update(float32(local))
	}

	if st.elapsed >= st.duration {
		for i := range st.phases {
			st.phases[i].finish()
		}
		st.done = true
		s.remove(st)
		if st.tl.OnComplete != nil {
			st.tl.OnComplete()
		}
	}
}

func (s *TweenScheduler) remove(st *timelineState) {
	delete(s.byID, st.id)
	for i, r := range s.running {
		if r == st {
			s.running = append(s.running[:i], s.running[i+1:]...)
			return
		}
	}
}

// begin creates the phase's tweens from the sprite's current values.
func (ph *phaseState) begin(sp *Sprite) {
	ph.begun = true
	if ph.To.Z.Set {
		sp.ZIndex = int(ph.To.Z.resolve(float64(sp.ZIndex)))
	}
	ph.add(&sp.X, ph.To.X)
	ph.add(&sp.Y, ph.To.Y)
	ph.add(&sp.Scale, ph.To.Scale)
	ph.add(&sp.Alpha, ph.To.Alpha)
}

func (ph *phaseState) add(field *float64, v Value) {
	if !v.Set {
		return
	}
	from := *field
	to := v.resolve(from)
	ph.tweens[ph.count] = propTween{
		tw:    gween.New(float32(from), float32(to), float32(ph.Duration), ph.fn),
		field: field,
		to:    to,
	}
	ph.count++
}

func (ph *phaseState) update(dt float32) {
	for i := 0; i < ph.count; i++ {
		pt := &ph.tweens[i]
		if ph.Duration <= 0 {
			*pt.field = pt.to
			continue
		}
		val, finished := pt.tw.Update(dt)
		if finished {
			*pt.field = pt.to
			continue
		}
		*pt.field = float64(val)
	}
}

// finish snaps every property to its target. float32 accumulation inside
// gween can leave a tween a hair short of its end value.
func (ph *phaseState) finish() {
	for i := 0; i < ph.count; i++ {
		*ph.tweens[i].field = ph.tweens[i].to
	}
}

// applyProps writes absolute values immediately. Relative values resolve
// against the current value.
func applyProps(sp *Sprite, p Props) {
	if p.X.Set {
		sp.X = p.X.resolve(sp.X)
	}
	if p.Y.Set {
		sp.Y = p.Y.resolve(sp.Y)
	}
	if p.Scale.Set {
		sp.Scale = p.Scale.resolve(sp.Scale)
	}
	if p.Alpha.Set {
		sp.Alpha = p.Alpha.resolve(sp.Alpha)
	}
	if p.Z.Set {
		sp.ZIndex = int(p.Z.resolve(float64(sp.ZIndex)))
	}
}
