package clips

import (
	"math"

	"github.com/kikiluvv/lazyclip/internal/frame"
)

// Scale stretches the time axis of c by factor without touching its pixels:
// the result lasts c.Duration()*factor and shows c's frame at t/factor.
func Scale(c *Clip, factor float64) (*Clip, error) {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return nil, &ParameterError{Op: "scale", Name: "factor", Value: factor, Reason: "must be positive and finite"}
	}
	return Apply(c, Transform{Rate: 1 / factor, Direction: Forward})
}

// Mul is the * operator, see Scale.
func (c *Clip) Mul(factor float64) (*Clip, error) {
	return Scale(c, factor)
}

// loopSource replays src with period src.duration.
type loopSource struct {
	src *Clip
}

func (l loopSource) Frame(t float64) (frame.Frame, error) {
	return l.src.GetFrame(clampTime(math.Mod(t, l.src.duration), l.src.duration))
}

// Loop repeats c n times; a fractional n cuts the last repetition short. The
// mask loops with the frames and the audio track is fitted to the clip length
// before looping so that every repetition sounds the same.
func Loop(c *Clip, n float64) (*Clip, error) {
	if !(n > 0) || math.IsInf(n, 0) {
		return nil, &ParameterError{Op: "loop", Name: "count", Value: n, Reason: "must be positive and finite"}
	}

	d := c.duration * n
	out := loopTrack(c, d)
	if c.mask != nil {
		out.mask = loopTrack(c.mask, d)
	}
	if c.audio != nil {
		out.audio = loopTrack(fitAudio(c.audio, c.duration), d)
	}
	return out, nil
}

func loopTrack(track *Clip, duration float64) *Clip {
	return track.derive(loopSource{src: track}, duration)
}

// Loop repeats the clip n times, see Loop.
func (c *Clip) Loop(n float64) (*Clip, error) {
	return Loop(c, n)
}
