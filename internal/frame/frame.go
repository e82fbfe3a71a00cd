package frame

import (
	"fmt"
	"math"
)

// Frame is a Height x Width x Channels array of samples stored row-major.
//
// Color frames hold 0..255 values in 3 (RGB) or 4 (RGBA) channels, mask frames
// hold 0..1 opacities in a single channel, and audio frames are 1x1xN sample
// vectors. Frames are treated as immutable: every operation returns a new Frame
// and never writes into Pix of its receiver.
type Frame struct {
	Height   int
	Width    int
	Channels int
	Pix      []float64
}

// New allocates a zero-valued frame.
func New(height, width, channels int) Frame {
	return Frame{
		Height:   height,
		Width:    width,
		Channels: channels,
		Pix:      make([]float64, height*width*channels),
	}
}

// Solid returns a frame where every pixel holds values. The channel count is
// len(values).
func Solid(height, width int, values ...float64) Frame {
	f := New(height, width, len(values))
	for i := 0; i < len(f.Pix); i += len(values) {
		copy(f.Pix[i:], values)
	}
	return f
}

// Samples returns a 1x1xN audio frame holding a copy of s.
func Samples(s ...float64) Frame {
	f := New(1, 1, len(s))
	copy(f.Pix, s)
	return f
}

// Empty reports whether the frame has no pixels.
func (f Frame) Empty() bool {
	return f.Height == 0 || f.Width == 0 || f.Channels == 0
}

// Offset returns the index into Pix of channel c at row y, column x.
func (f Frame) Offset(y, x, c int) int {
	return (y*f.Width+x)*f.Channels + c
}

// At returns the sample at row y, column x, channel c.
func (f Frame) At(y, x, c int) float64 {
	return f.Pix[f.Offset(y, x, c)]
}

// Clone returns a deep copy.
func (f Frame) Clone() Frame {
	out := f
	out.Pix = make([]float64, len(f.Pix))
	copy(out.Pix, f.Pix)
	return out
}

// SameShape reports whether both frames share height, width and channel count.
func (f Frame) SameShape(g Frame) bool {
	return f.Height == g.Height && f.Width == g.Width && f.Channels == g.Channels
}

// Equal reports whether both frames have the same shape and samples.
func (f Frame) Equal(g Frame) bool {
	return f.EqualWithin(g, 0)
}

// EqualWithin is Equal with an absolute per-sample tolerance.
func (f Frame) EqualWithin(g Frame, tol float64) bool {
	if !f.SameShape(g) || len(f.Pix) != len(g.Pix) {
		return false
	}
	for i := range f.Pix {
		if math.Abs(f.Pix[i]-g.Pix[i]) > tol {
			return false
		}
	}
	return true
}

// Crop returns the half-open region [x0, x1) x [y0, y1).
func (f Frame) Crop(x0, y0, x1, y1 int) (Frame, error) {
	if x0 < 0 || y0 < 0 || x1 > f.Width || y1 > f.Height || x0 >= x1 || y0 >= y1 {
		return Frame{}, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside %dx%d frame", x0, y0, x1, y1, f.Width, f.Height)
	}

	out := New(y1-y0, x1-x0, f.Channels)
	rowLen := out.Width * f.Channels
	for y := y0; y < y1; y++ {
		src := f.Pix[f.Offset(y, x0, 0) : f.Offset(y, x0, 0)+rowLen]
		copy(out.Pix[(y-y0)*rowLen:], src)
	}
	return out, nil
}

// Channel returns a single-channel frame holding channel c.
func (f Frame) Channel(c int) Frame {
	out := New(f.Height, f.Width, 1)
	for i := range out.Pix {
		out.Pix[i] = f.Pix[i*f.Channels+c]
	}
	return out
}

// String describes the frame shape.
func (f Frame) String() string {
	return fmt.Sprintf("frame(%dx%dx%d)", f.Height, f.Width, f.Channels)
}
