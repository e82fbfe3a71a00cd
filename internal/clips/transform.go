package clips

import (
	"fmt"
	"math"

	"github.com/kikiluvv/lazyclip/internal/frame"
)

// Direction selects the playback direction of a Transform.
type Direction int

const (
	Forward Direction = 1
	Reverse Direction = -1
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Bound is an optional slice bound. The zero value is Open.
type Bound struct {
	value float64
	set   bool
}

// Open is the missing bound: the clip start for a lower bound, the clip end
// for an upper one.
var Open = Bound{}

// At returns a bound fixed at t seconds.
func At(t float64) Bound { return Bound{value: t, set: true} }

// IsOpen reports whether b is missing.
func (b Bound) IsOpen() bool { return !b.set }

// Value returns the bound and whether it is set.
func (b Bound) Value() (float64, bool) { return b.value, b.set }

func (b Bound) or(def float64) float64 {
	if !b.set {
		return def
	}
	return b.value
}

func (b Bound) String() string {
	if !b.set {
		return ""
	}
	return fmt.Sprintf("%g", b.value)
}

// Transform describes how a derived clip's time axis maps onto its source:
//
//	forward: source_t = start + rate*t
//	reverse: source_t = end - rate*t
//
// over a derived duration of (end-start)/rate.
type Transform struct {
	Start     Bound
	End       Bound
	Rate      float64
	Direction Direction
}

// Window is a forward, unit-rate transform over [start, end).
func Window(start, end Bound) Transform {
	return Transform{Start: start, End: end, Rate: 1, Direction: Forward}
}

// span is a Transform with defaults substituted and validated against a
// source duration.
type span struct {
	start, end float64
	rate       float64
	dir        Direction
}

func (s span) duration() float64 { return (s.end - s.start) / s.rate }

func (s span) sourceTime(t float64) float64 {
	if s.dir == Reverse {
		return s.end - s.rate*t
	}
	return s.start + s.rate*t
}

func resolve(op string, duration float64, tr Transform) (span, error) {
	if !(tr.Rate > 0) || math.IsInf(tr.Rate, 0) {
		return span{}, &ParameterError{Op: op, Name: "rate", Value: tr.Rate, Reason: "must be positive and finite"}
	}

	dir := tr.Direction
	switch dir {
	case 0:
		dir = Forward
	case Forward, Reverse:
	default:
		return span{}, &ParameterError{Op: op, Name: "direction", Value: int(dir), Reason: "must be forward or reverse"}
	}

	start := tr.Start.or(0)
	end := tr.End.or(duration)
	if math.IsNaN(start) || math.IsNaN(end) {
		return span{}, &ParameterError{Op: op, Name: "bounds", Value: [2]float64{start, end}, Reason: "must be numbers"}
	}
	// A negative upper bound counts back from the clip end.
	if !tr.End.IsOpen() && end < 0 {
		end += duration
	}

	if start < 0 {
		return span{}, &OutOfBoundsError{Op: op, T: start, Duration: duration}
	}
	if end > duration {
		return span{}, &OutOfBoundsError{Op: op, T: end, Duration: duration}
	}
	if start >= end {
		return span{}, &RangeError{Op: op, Start: start, End: end}
	}

	return span{start: start, end: end, rate: tr.Rate, dir: dir}, nil
}

// clampTime pulls t into [0, duration). Derived times are validated before
// mapping, so this only absorbs rounding at the exact end boundary.
func clampTime(t, duration float64) float64 {
	if t < 0 {
		return 0
	}
	if t >= duration {
		return math.Nextafter(duration, 0)
	}
	return t
}

// timeMap evaluates its source through a span.
type timeMap struct {
	src  *Clip
	span span
}

func (m timeMap) Frame(t float64) (frame.Frame, error) {
	return m.src.GetFrame(clampTime(m.span.sourceTime(t), m.src.duration))
}

// Apply returns a clip playing src through tr. The mask and audio of src are
// transformed identically so that they stay aligned with the frames.
func Apply(src *Clip, tr Transform) (*Clip, error) {
	sp, err := resolve("transform", src.duration, tr)
	if err != nil {
		return nil, err
	}
	return applySpan(src, sp), nil
}

func applySpan(src *Clip, sp span) *Clip {
	out := mapTrack(src, sp)
	if src.mask != nil {
		out.mask = mapTrack(src.mask, sp)
	}
	if src.audio != nil {
		out.audio = alignAudio(src.audio, sp)
	}
	return out
}

func mapTrack(track *Clip, sp span) *Clip {
	return track.derive(timeMap{src: track, span: sp}, sp.duration())
}

// alignAudio maps an audio track through the parent's span. The track has its
// own duration; when it ends before the span does, it is padded with silence
// so the mapping stays identical to the parent's. Tracks ending before the
// span starts carry nothing and are dropped.
func alignAudio(a *Clip, sp span) *Clip {
	if a.duration <= sp.start {
		return nil
	}
	if a.duration < sp.end {
		a = padAudio(a, sp.end)
	}
	return mapTrack(a, sp)
}

// Subclip returns the part of c between start and end seconds. A negative end
// counts back from the clip end.
func (c *Clip) Subclip(start, end float64) (*Clip, error) {
	return Apply(c, Window(At(start), At(end)))
}

// Speed plays the whole clip rate times faster.
func (c *Clip) Speed(rate float64) (*Clip, error) {
	return Apply(c, Transform{Rate: rate, Direction: Forward})
}

// Reverse plays the whole clip backwards.
func (c *Clip) Reverse() (*Clip, error) {
	return Apply(c, Transform{Rate: 1, Direction: Reverse})
}
