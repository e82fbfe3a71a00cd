package clips

import (
	"fmt"

	"github.com/kikiluvv/lazyclip/internal/frame"
)

type stillSource struct {
	f frame.Frame
}

// Frame returns a copy so callers cannot write into the still.
func (s stillSource) Frame(float64) (frame.Frame, error) { return s.f.Clone(), nil }

// Image shows f for duration seconds. A 4-channel frame is split into an RGB
// clip and a mask from its alpha channel, scaled from 0..255 to 0..1.
func Image(f frame.Frame, duration float64) (*Clip, error) {
	if f.Empty() {
		return nil, &ParameterError{Op: "image", Name: "frame", Value: f.String(), Reason: "is empty"}
	}
	if f.Channels != 4 {
		return New(stillSource{f: f}, duration)
	}

	rgb := frame.New(f.Height, f.Width, 3)
	alpha := frame.New(f.Height, f.Width, 1)
	for i := 0; i < f.Height*f.Width; i++ {
		copy(rgb.Pix[i*3:i*3+3], f.Pix[i*4:i*4+3])
		alpha.Pix[i] = f.Pix[i*4+3] / 255
	}

	c, err := New(stillSource{f: rgb}, duration)
	if err != nil {
		return nil, err
	}
	m, err := NewMask(stillSource{f: alpha}, duration)
	if err != nil {
		return nil, err
	}
	return c.WithMask(m)
}

// Color is a solid RGB clip.
func Color(width, height int, rgb [3]float64, duration float64) (*Clip, error) {
	if width <= 0 || height <= 0 {
		return nil, &ParameterError{Op: "color", Name: "size", Value: fmt.Sprintf("%dx%d", width, height), Reason: "must be positive"}
	}
	return New(stillSource{f: frame.Solid(height, width, rgb[0], rgb[1], rgb[2])}, duration)
}

// ColorMask is a mask with constant opacity.
func ColorMask(width, height int, opacity, duration float64) (*Clip, error) {
	if width <= 0 || height <= 0 {
		return nil, &ParameterError{Op: "color mask", Name: "size", Value: fmt.Sprintf("%dx%d", width, height), Reason: "must be positive"}
	}
	if opacity < 0 || opacity > 1 {
		return nil, &ParameterError{Op: "color mask", Name: "opacity", Value: opacity, Reason: "must be within [0, 1]"}
	}
	return NewMask(stillSource{f: frame.Solid(height, width, opacity)}, duration)
}

// FromFunc is a video clip computed by fn.
func FromFunc(fn func(t float64) (frame.Frame, error), duration float64) (*Clip, error) {
	return New(SourceFunc(fn), duration)
}

// AudioFromFunc is an audio clip computed by fn, which returns one sample per
// channel for time t.
func AudioFromFunc(fn func(t float64) []float64, duration, sampleRate float64) (*Clip, error) {
	return NewAudio(SourceFunc(func(t float64) (frame.Frame, error) {
		return frame.Samples(fn(t)...), nil
	}), duration, sampleRate)
}

// ToImage freezes the frame (and mask) at t into a still clip lasting
// duration. The frame is decoded immediately; audio is dropped.
func (c *Clip) ToImage(t, duration float64) (*Clip, error) {
	f, err := c.GetFrame(t)
	if err != nil {
		return nil, err
	}
	out, err := newClip(stillSource{f: f}, duration, c.kind)
	if err != nil {
		return nil, err
	}
	if c.mask == nil {
		return out, nil
	}

	mf, err := c.mask.GetFrame(t)
	if err != nil {
		return nil, err
	}
	m, err := NewMask(stillSource{f: mf}, duration)
	if err != nil {
		return nil, err
	}
	return out.WithMask(m)
}
