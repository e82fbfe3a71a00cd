package clips

import (
	"github.com/kikiluvv/lazyclip/internal/frame"
)

// silentSource yields zero samples with the channel count of like.
type silentSource struct {
	like *Clip
}

func (s silentSource) Frame(float64) (frame.Frame, error) {
	n, err := s.like.Channels()
	if err != nil {
		return frame.Frame{}, err
	}
	return frame.New(1, 1, n), nil
}

func silence(like *Clip, duration float64) *Clip {
	return &Clip{src: silentSource{like: like}, duration: duration, fps: like.fps, kind: kindAudio, shape: &shapeCache{}}
}

// paddedSource plays a and then silence.
type paddedSource struct {
	a *Clip
}

func (p paddedSource) Frame(t float64) (frame.Frame, error) {
	if t < p.a.duration {
		return p.a.GetFrame(t)
	}
	return silentSource{like: p.a}.Frame(t)
}

func padAudio(a *Clip, duration float64) *Clip {
	return a.derive(paddedSource{a: a}, duration)
}

// fitAudio trims or pads a to exactly duration seconds.
func fitAudio(a *Clip, duration float64) *Clip {
	switch {
	case a.duration > duration:
		return mapTrack(a, span{start: 0, end: duration, rate: 1, dir: Forward})
	case a.duration < duration:
		return padAudio(a, duration)
	default:
		return a
	}
}

// mixSource sums the tracks that are playing at t.
type mixSource struct {
	tracks []*Clip
}

func (m mixSource) Frame(t float64) (frame.Frame, error) {
	var out frame.Frame
	for _, tr := range m.tracks {
		if t >= tr.duration {
			continue
		}
		f, err := tr.GetFrame(t)
		if err != nil {
			return frame.Frame{}, err
		}
		if out.Empty() {
			out = f
			continue
		}
		if out, err = frame.Add(out, f); err != nil {
			return frame.Frame{}, err
		}
	}
	return out, nil
}

// MixAudio plays audio tracks on the same time axis by summing their samples.
// The result lasts as long as the longest track.
func MixAudio(tracks ...*Clip) (*Clip, error) {
	if len(tracks) == 0 {
		return nil, &ParameterError{Op: "mix audio", Name: "tracks", Value: 0, Reason: "need at least one track"}
	}
	longest := tracks[0]
	for i, tr := range tracks {
		if tr == nil || !tr.IsAudio() {
			return nil, &ParameterError{Op: "mix audio", Name: "track", Value: i, Reason: "not an audio clip"}
		}
		if tr.duration > longest.duration {
			longest = tr
		}
	}

	out := longest.derive(mixSource{tracks: append([]*Clip(nil), tracks...)}, longest.duration)
	out.fps = commonFPS(tracks)
	if out.fps == 0 {
		out.fps = longest.fps
	}
	return out, nil
}
