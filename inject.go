package trail

// InjectMove queues a synthetic pointer move at the given window coordinates.
// One queued move is consumed per frame; while the queue is non-empty, real
// input is ignored.
func (g *Game) InjectMove(x, y float64) {
	g.injectQueue = append(g.injectQueue, Vec2{X: x, Y: y})
}

// InjectPath queues a straight pointer path from (fromX, fromY) to (toX, toY)
// spread over frames moves, both endpoints included. Minimum frames is 2.
func (g *Game) InjectPath(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	last := float64(frames - 1)
	for i := 0; i < frames; i++ {
		k := float64(i)
		g.InjectMove(fromX+(toX-fromX)*k/last, fromY+(toY-fromY)*k/last)
	}
}

// Pending returns how many injected moves are still queued.
func (g *Game) Pending() int {
	return len(g.injectQueue)
}

// processInjected pops one queued move and applies it to the pointer.
// Returns true if a move was consumed.
func (g *Game) processInjected() bool {
	if len(g.injectQueue) == 0 {
		return false
	}
	pos := g.injectQueue[0]
	copy(g.injectQueue, g.injectQueue[1:])
	g.injectQueue = g.injectQueue[:len(g.injectQueue)-1]

	g.ctl.Pointer().Move(pos.X, pos.Y)
	return true
}
