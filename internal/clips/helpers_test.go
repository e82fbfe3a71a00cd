package clips

import (
	"math"
	"testing"

	"github.com/kikiluvv/lazyclip/internal/frame"
)

const tol = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) <= tol
}

// ramp is a 3x2 RGB clip whose first channel holds the source time, so that
// tests can read back which source instant a derived clip resolved to.
func ramp(t *testing.T, duration float64) *Clip {
	t.Helper()
	c, err := FromFunc(func(ts float64) (frame.Frame, error) {
		return frame.Solid(2, 3, ts, 2*ts, 7), nil
	}, duration)
	if err != nil {
		t.Fatalf("FromFunc() error = %v", err)
	}
	return c
}

// tone is a mono audio clip whose sample equals the time.
func tone(t *testing.T, duration float64) *Clip {
	t.Helper()
	a, err := AudioFromFunc(func(ts float64) []float64 { return []float64{ts} }, duration, 44100)
	if err != nil {
		t.Fatalf("AudioFromFunc() error = %v", err)
	}
	return a
}

// rampMask is a mask whose opacity equals time/100.
func rampMask(t *testing.T, duration float64) *Clip {
	t.Helper()
	m, err := NewMask(SourceFunc(func(ts float64) (frame.Frame, error) {
		return frame.Solid(2, 3, ts/100), nil
	}), duration)
	if err != nil {
		t.Fatalf("NewMask() error = %v", err)
	}
	return m
}

func sourceTime(t *testing.T, c *Clip, at float64) float64 {
	t.Helper()
	f, err := c.GetFrame(at)
	if err != nil {
		t.Fatalf("GetFrame(%v) error = %v", at, err)
	}
	return f.Pix[0]
}

// mustClip panics on err so it can wrap multi-value calls.
func mustClip(c *Clip, err error) *Clip {
	if err != nil {
		panic(err)
	}
	return c
}
