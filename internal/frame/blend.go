package frame

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"
)

// Scale multiplies every sample by k.
func Scale(f Frame, k float64) Frame {
	out := f
	out.Pix = make([]float64, len(f.Pix))
	coeffs := make([]float64, len(f.Pix))
	for i := range coeffs {
		coeffs[i] = k
	}
	vecmath.MulBlock(out.Pix, f.Pix, coeffs)
	return out
}

// Multiply returns the element-wise product of two same-shape frames.
func Multiply(a, b Frame) (Frame, error) {
	if !a.SameShape(b) {
		return Frame{}, fmt.Errorf("multiply %s by %s: shape mismatch", a, b)
	}
	out := a
	out.Pix = make([]float64, len(a.Pix))
	vecmath.MulBlock(out.Pix, a.Pix, b.Pix)
	return out, nil
}

// Add returns the element-wise sum of two same-shape frames.
func Add(a, b Frame) (Frame, error) {
	if !a.SameShape(b) {
		return Frame{}, fmt.Errorf("add %s to %s: shape mismatch", a, b)
	}
	out := a.Clone()
	for i, v := range b.Pix {
		out.Pix[i] += v
	}
	return out, nil
}

// Blend composites top over base with its top-left corner at (x, y):
// out = top*alpha + base*(1-alpha). alpha is a single-channel frame with the
// dimensions of top; the zero Frame means fully opaque. Parts of top falling
// outside base are dropped. base and top must share a channel count.
func Blend(base, top, alpha Frame, x, y int) (Frame, error) {
	if base.Channels != top.Channels {
		return Frame{}, fmt.Errorf("blend %s over %s: channel mismatch", top, base)
	}
	if alpha.Empty() {
		alpha = Solid(top.Height, top.Width, 1)
	}
	if alpha.Channels != 1 || alpha.Height != top.Height || alpha.Width != top.Width {
		return Frame{}, fmt.Errorf("blend mask %s does not match %s", alpha, top)
	}

	out := base.Clone()

	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+top.Width, base.Width), min(y+top.Height, base.Height)
	if x0 >= x1 || y0 >= y1 {
		return out, nil
	}

	c := base.Channels
	n := (x1 - x0) * c
	weights := make([]float64, n)
	inverse := make([]float64, n)
	fg := make([]float64, n)

	for row := y0; row < y1; row++ {
		ty := row - y
		for i := 0; i < x1-x0; i++ {
			a := alpha.At(ty, x0-x+i, 0)
			for ch := 0; ch < c; ch++ {
				weights[i*c+ch] = a
				inverse[i*c+ch] = 1 - a
			}
		}

		topStart := top.Offset(ty, x0-x, 0)
		vecmath.MulBlock(fg, top.Pix[topStart:topStart+n], weights)

		dst := out.Pix[out.Offset(row, x0, 0) : out.Offset(row, x0, 0)+n]
		vecmath.MulBlockInPlace(dst, inverse)
		for i, v := range fg {
			dst[i] += v
		}
	}

	return out, nil
}
