package trail

import (
	"fmt"
	"io"
	"os"
	"time"
)

// debugOutput receives all debug lines. Tests swap it for a buffer.
var debugOutput io.Writer = os.Stderr

// SetDebugMode enables or disables debug logging. When enabled, every reveal
// prints the chosen slot, z-index, drift direction and active count to stderr.
func (c *Controller) SetDebugMode(enabled bool) {
	c.debug = enabled
}

func (c *Controller) debugReveal(slot int, sp *Sprite, dir Vec2) {
	_, _ = fmt.Fprintf(debugOutput,
		"[trail] reveal #%d slot %d (%s) z %d dir (%.2f, %.2f) active %d\n",
		c.reveals, slot, sp.Name, c.zOrder, dir.X, dir.Y, c.activeCount)
}

// drawStats holds per-frame draw metrics. Only populated in debug mode.
type drawStats struct {
	sortTime  time.Duration
	drawTime  time.Duration
	visible   int
	poolSize  int
	timelines int
}

func debugLogDraw(stats drawStats) {
	_, _ = fmt.Fprintf(debugOutput,
		"[trail] sort: %v | draw: %v | visible: %d/%d | timelines: %d\n",
		stats.sortTime, stats.drawTime, stats.visible, stats.poolSize, stats.timelines)
}
