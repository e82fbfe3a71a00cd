package clips

import (
	"fmt"

	"github.com/kikiluvv/lazyclip/internal/frame"
)

type overlaySource struct {
	base, top *Clip
	x, y      int
}

func (o overlaySource) Frame(t float64) (frame.Frame, error) {
	bg, err := o.base.GetFrame(t)
	if err != nil {
		return frame.Frame{}, err
	}
	if t >= o.top.duration {
		return bg, nil
	}

	fg, err := o.top.GetFrame(t)
	if err != nil {
		return frame.Frame{}, err
	}
	var alpha frame.Frame
	if o.top.mask != nil {
		if alpha, err = o.top.mask.GetFrame(t); err != nil {
			return frame.Frame{}, err
		}
	}
	return frame.Blend(bg, fg, alpha, o.x, o.y)
}

// Overlay draws top over base on the same time axis with its top-left corner
// at (x, y), using top's mask as opacity. The result has base's duration,
// frame rate and mask; top is only drawn while it is playing. Audio tracks of
// both clips are mixed and fitted to base's duration.
func Overlay(base, top *Clip, x, y int) (*Clip, error) {
	if base == nil || top == nil {
		return nil, &ParameterError{Op: "overlay", Name: "clip", Value: nil, Reason: "must not be nil"}
	}
	if base.kind != kindVideo || top.kind != kindVideo {
		return nil, &ParameterError{Op: "overlay", Name: "clip", Value: fmt.Sprintf("%s over %s", top.kindName(), base.kindName()), Reason: "only video clips can be overlaid"}
	}

	out := base.derive(overlaySource{base: base, top: top, x: x, y: y}, base.duration)
	out.mask = base.mask

	var tracks []*Clip
	for _, c := range []*Clip{base, top} {
		if c.audio != nil {
			tracks = append(tracks, c.audio)
		}
	}
	if len(tracks) > 0 {
		mixed, err := MixAudio(tracks...)
		if err != nil {
			return nil, err
		}
		out.audio = fitAudio(mixed, base.duration)
	}
	return out, nil
}
