package trail

import (
	"fmt"

	"github.com/tanema/gween/ease"
)

// Handle identifies a submitted timeline. The zero value, NoHandle, never
// refers to a timeline.
type Handle uint64

// NoHandle is the zero Handle.
const NoHandle Handle = 0

// Scheduler plays timelines. Implementations must fire OnStart once when the
// first phase begins and OnComplete once when the last phase ends. Cancel
// stops a timeline; if it had started and not completed, OnComplete fires
// synchronously before Cancel returns. Cancelling an unknown, finished or
// already cancelled handle is a no-op.
type Scheduler interface {
	Submit(tl Timeline) Handle
	Cancel(h Handle)
}

// Timeline is a set of phases played against one sprite. Phase offsets are
// relative to the moment the timeline starts.
type Timeline struct {
	Target     *Sprite
	Phases     []Phase
	OnStart    func()
	OnComplete func()
}

// Duration returns the time at which the last phase ends.
func (tl Timeline) Duration() float64 {
	var end float64
	for _, ph := range tl.Phases {
		end = max(end, ph.Offset+ph.Duration)
	}
	return end
}

// Phase animates a set of sprite properties from From (optional) to To over
// Duration seconds, starting Offset seconds into the timeline.
type Phase struct {
	Offset   float64
	Duration float64
	Ease     string
	From     Props
	To       Props
}

// Props is a set of sprite property targets. Unset values are left alone.
type Props struct {
	X, Y  Value
	Scale Value
	Alpha Value
	Z     Value
}

// Value is one optional property target. Relative values are added to the
// property's value at the moment the owning phase begins.
type Value struct {
	V        float64
	Set      bool
	Relative bool
}

// Abs returns an absolute property target.
func Abs(v float64) Value { return Value{V: v, Set: true} }

// Rel returns a property target relative to the current value ("+=").
func Rel(dv float64) Value { return Value{V: dv, Set: true, Relative: true} }

// resolve returns the target for a property currently at cur.
func (v Value) resolve(cur float64) float64 {
	if v.Relative {
		return cur + v.V
	}
	return v.V
}

// Ease names understood by the tween scheduler. "powerN" follows the common
// naming where power1 is quadratic and power4 is quintic.
const (
	EaseLinear      = "linear"
	EasePower1Out   = "power1-out"
	EasePower2Out   = "power2-out"
	EasePower3Out   = "power3-out"
	EasePower4Out   = "power4-out"
	EasePower1In    = "power1-in"
	EasePower2In    = "power2-in"
	EasePower3In    = "power3-in"
	EasePower4In    = "power4-in"
	EasePower1InOut = "power1-inout"
	EasePower2InOut = "power2-inout"
	EasePower3InOut = "power3-inout"
	EasePower4InOut = "power4-inout"
)

var easeFuncs = map[string]ease.TweenFunc{
	EaseLinear:      ease.Linear,
	EasePower1Out:   ease.OutQuad,
	EasePower2Out:   ease.OutCubic,
	EasePower3Out:   ease.OutQuart,
	EasePower4Out:   ease.OutQuint,
	EasePower1In:    ease.InQuad,
	EasePower2In:    ease.InCubic,
	EasePower3In:    ease.InQuart,
	EasePower4In:    ease.InQuint,
	EasePower1InOut: ease.InOutQuad,
	EasePower2InOut: ease.InOutCubic,
	EasePower3InOut: ease.InOutQuart,
	EasePower4InOut: ease.InOutQuint,
	// Bare names default to the "out" flavour.
	"power1": ease.OutQuad,
	"power2": ease.OutCubic,
	"power3": ease.OutQuart,
	"power4": ease.OutQuint,
}

// EaseFunc looks up an easing function by name. The empty name is linear.
func EaseFunc(name string) (ease.TweenFunc, error) {
	if name == "" {
		return ease.Linear, nil
	}
	fn, ok := easeFuncs[name]
	if !ok {
		return nil, fmt.Errorf("unknown ease %q", name)
	}
	return fn, nil
}

// nopScheduler drops every timeline. Used when no scheduler is supplied so
// the controller still runs without producing output.
type nopScheduler struct{}

func (nopScheduler) Submit(Timeline) Handle { return NoHandle }
func (nopScheduler) Cancel(Handle)          {}
