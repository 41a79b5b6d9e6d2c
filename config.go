package trail

import (
	"errors"
	"fmt"
)

// PhaseTiming is the offset, duration and ease of one timeline phase.
type PhaseTiming struct {
	Offset   float64
	Duration float64
	Ease     string
}

// Config tunes a Controller. Start from DefaultConfig and override fields.
type Config struct {
	// Threshold is the pointer travel in pixels since the last reveal that
	// triggers the next one. Travel exactly equal to Threshold does not.
	Threshold float64

	// Smoothing is the per-frame interpolation factor pulling the smoothed
	// position toward the pointer.
	Smoothing float64

	// DirectionDamping divides the pointer speed to get the drift vector.
	DirectionDamping float64

	// DriftAmplification multiplies the drift vector into pixels.
	DriftAmplification float64

	// Phase timings: reveal (scale in), drift and fade out.
	Reveal PhaseTiming
	Drift  PhaseTiming
	Fade   PhaseTiming
}

// DefaultConfig returns the stock trail look.
func DefaultConfig() Config {
	return Config{
		Threshold:          380,
		Smoothing:          0.1,
		DirectionDamping:   100,
		DriftAmplification: 110,
		Reveal:             PhaseTiming{Offset: 0, Duration: 0.3, Ease: EasePower1Out},
		Drift:              PhaseTiming{Offset: 0.05, Duration: 1.5, Ease: EasePower4Out},
		Fade:               PhaseTiming{Offset: 3, Duration: 0.3, Ease: EasePower3Out},
	}
}

var errInvalidConfig = errors.New("invalid trail config")

// Validate reports the first out-of-range field.
func (c Config) Validate() error {
	switch {
	case c.Threshold < 0:
		return fmt.Errorf("%w: threshold %v is negative", errInvalidConfig, c.Threshold)
	case c.Smoothing <= 0 || c.Smoothing > 1:
		return fmt.Errorf("%w: smoothing %v not in (0, 1]", errInvalidConfig, c.Smoothing)
	case c.DirectionDamping <= 0:
		return fmt.Errorf("%w: direction damping %v must be positive", errInvalidConfig, c.DirectionDamping)
	}
	for _, p := range []struct {
		name string
		t    PhaseTiming
	}{{"reveal", c.Reveal}, {"drift", c.Drift}, {"fade", c.Fade}} {
		if p.t.Offset < 0 || p.t.Duration < 0 {
			return fmt.Errorf("%w: %s phase has negative timing", errInvalidConfig, p.name)
		}
		if _, err := EaseFunc(p.t.Ease); err != nil {
			return fmt.Errorf("%w: %s phase: %w", errInvalidConfig, p.name, err)
		}
	}
	return nil
}

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title      string
	Width      int
	Height     int
	ShowFPS    bool
	Fullscreen bool
	ClearColor Color
}
