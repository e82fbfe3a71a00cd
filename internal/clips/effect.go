package clips

import (
	"github.com/kikiluvv/lazyclip/internal/frame"
)

// PixelFunc transforms one frame. It must not modify its argument and must
// return the same result for the same input.
type PixelFunc func(frame.Frame) (frame.Frame, error)

// Effect is a structural clip transform, such as resizing or setting opacity.
type Effect func(*Clip) (*Clip, error)

type pixelMap struct {
	src *Clip
	fn  PixelFunc
}

func (p pixelMap) Frame(t float64) (frame.Frame, error) {
	f, err := p.src.GetFrame(t)
	if err != nil {
		return frame.Frame{}, err
	}
	return p.fn(f)
}

// Map returns a clip whose frames are fn applied to c's frames. When maskSafe
// is set and c has a mask, fn is applied to the mask as well, which keeps
// frame and mask geometry identical for cropping or resizing functions. Errors
// returned by fn reach the caller of GetFrame unchanged.
func (c *Clip) Map(fn PixelFunc, maskSafe bool) *Clip {
	var maskFn PixelFunc
	if maskSafe {
		maskFn = fn
	}
	return c.MapMask(fn, maskFn)
}

// MapMask is Map with a separate function for the mask. A nil maskFn leaves
// the mask untouched.
func (c *Clip) MapMask(fn, maskFn PixelFunc) *Clip {
	out := c.derive(pixelMap{src: c, fn: fn}, c.duration)
	out.audio = c.audio
	out.mask = c.mask
	if maskFn != nil && c.mask != nil {
		out.mask = c.mask.derive(pixelMap{src: c.mask, fn: maskFn}, c.mask.duration)
	}
	return out
}

// With applies effects in order.
func (c *Clip) With(effects ...Effect) (*Clip, error) {
	out := c
	for _, fx := range effects {
		next, err := fx(out)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}

// Subfx applies fx to the [start, end) part of c only and splices the result
// back between the untouched head and tail.
func Subfx(c *Clip, fx Effect, start, end Bound) (*Clip, error) {
	sp, err := resolve("subfx", c.duration, Window(start, end))
	if err != nil {
		return nil, err
	}

	middle, err := fx(applySpan(c, sp))
	if err != nil {
		return nil, err
	}

	parts := make([]*Clip, 0, 3)
	if sp.start > 0 {
		parts = append(parts, applySpan(c, span{start: 0, end: sp.start, rate: 1, dir: Forward}))
	}
	parts = append(parts, middle)
	if sp.end < c.duration {
		parts = append(parts, applySpan(c, span{start: sp.end, end: c.duration, rate: 1, dir: Forward}))
	}
	return Concat(parts...)
}
