package trail

import "github.com/hajimehoshi/ebiten/v2"

// Pointer holds the latest pointer position. Mouse and touch input are
// unified: whichever moved last wins, and touch input only ever reports the
// first contact point.
//
// A Pointer has a single writer (the input poller or the inject queue) and
// any number of readers. Everything runs on the ebiten update goroutine, so
// there is no locking.
type Pointer struct {
	pos   Vec2
	moved bool

	firstMove []firstMoveListener
	nextID    uint32
}

type firstMoveListener struct {
	id uint32
	fn func(Vec2)
}

// ListenerHandle identifies a registered first-move listener. Call Remove to
// unregister it before it fires.
type ListenerHandle struct {
	p  *Pointer
	id uint32
}

// Remove unregisters the listener. Safe to call more than once and after the
// listener has already fired.
func (h ListenerHandle) Remove() {
	if h.p == nil {
		return
	}
	for i, l := range h.p.firstMove {
		if l.id == h.id {
			h.p.firstMove = append(h.p.firstMove[:i], h.p.firstMove[i+1:]...)
			return
		}
	}
}

// NewPointer returns a Pointer at the origin that has not moved yet.
func NewPointer() *Pointer {
	return &Pointer{}
}

// Position returns the latest pointer position.
func (p *Pointer) Position() Vec2 {
	return p.pos
}

// Moved reports whether at least one move has been observed.
func (p *Pointer) Moved() bool {
	return p.moved
}

// Move records a new pointer position and fires any pending first-move
// listeners. Each listener is removed before it runs, so it fires exactly once.
func (p *Pointer) Move(x, y float64) {
	p.pos = Vec2{X: x, Y: y}
	p.moved = true

	if len(p.firstMove) == 0 {
		return
	}
	pending := p.firstMove
	p.firstMove = nil
	for _, l := range pending {
		l.fn(p.pos)
	}
}

// OnFirstMove registers fn to run on the next Move call only.
func (p *Pointer) OnFirstMove(fn func(Vec2)) ListenerHandle {
	p.nextID++
	p.firstMove = append(p.firstMove, firstMoveListener{id: p.nextID, fn: fn})
	return ListenerHandle{p: p, id: p.nextID}
}

// PointerSource reports the current hardware pointer position. ok is false
// when no pointer moved this frame.
type PointerSource interface {
	Poll() (x, y float64, ok bool)
}

// EbitenInput is a PointerSource backed by ebiten's mouse cursor and touch
// APIs. The cursor only counts when it actually moves; an active touch always
// reports its first contact.
//
// The zero value is ready to use.
type EbitenInput struct {
	lastX, lastY int
	seen         bool
	touchIDs     []ebiten.TouchID
}

// Poll implements PointerSource.
func (in *EbitenInput) Poll() (float64, float64, bool) {
	in.touchIDs = ebiten.AppendTouchIDs(in.touchIDs[:0])
	if len(in.touchIDs) > 0 {
		tx, ty := ebiten.TouchPosition(in.touchIDs[0])
		return float64(tx), float64(ty), true
	}

	// The first sample only establishes a baseline: a cursor resting where
	// the window opened is not a move.
	mx, my := ebiten.CursorPosition()
	if !in.seen || (mx == in.lastX && my == in.lastY) {
		in.lastX, in.lastY = mx, my
		in.seen = true
		return 0, 0, false
	}
	in.lastX, in.lastY = mx, my
	return float64(mx), float64(my), true
}
