// Package fx holds concrete clip effects. Geometry effects are mask-safe:
// whatever they do to the frames they do to the mask as well.
package fx

import (
	"fmt"
	"image"
	"math"

	"github.com/nfnt/resize"

	"github.com/kikiluvv/lazyclip/internal/clips"
	"github.com/kikiluvv/lazyclip/internal/frame"
)

func cropFunc(x0, y0, x1, y1 int) clips.PixelFunc {
	return func(f frame.Frame) (frame.Frame, error) {
		return f.Crop(x0, y0, x1, y1)
	}
}

// Crop keeps the region [x0, x1) x [y0, y1) of every frame. The region is
// checked against the clip size when the effect is applied.
func Crop(x0, y0, x1, y1 int) clips.Effect {
	return func(c *clips.Clip) (*clips.Clip, error) {
		w, h, err := c.Size()
		if err != nil {
			return nil, fmt.Errorf("crop: %w", err)
		}
		if x0 < 0 || y0 < 0 || x1 > w || y1 > h || x0 >= x1 || y0 >= y1 {
			return nil, &clips.ParameterError{
				Op:     "crop",
				Name:   "region",
				Value:  fmt.Sprintf("(%d,%d)-(%d,%d)", x0, y0, x1, y1),
				Reason: fmt.Sprintf("must be a non-empty part of the %dx%d frame", w, h),
			}
		}
		return c.Map(cropFunc(x0, y0, x1, y1), true), nil
	}
}

// EvenSize drops the last column and/or row of frames with odd dimensions,
// which most video encoders reject. The crop is decided once from the clip
// size and applied unchanged to every frame and to the mask.
func EvenSize() clips.Effect {
	return func(c *clips.Clip) (*clips.Clip, error) {
		w, h, err := c.Size()
		if err != nil {
			return nil, fmt.Errorf("even size: %w", err)
		}
		if w%2 == 0 && h%2 == 0 {
			return c, nil
		}
		if w < 2 || h < 2 {
			return nil, &clips.ParameterError{Op: "even size", Name: "size", Value: fmt.Sprintf("%dx%d", w, h), Reason: "too small to crop"}
		}
		return c.Map(cropFunc(0, 0, w-w%2, h-h%2), true), nil
	}
}

// Resize scales frames to width x height with bilinear interpolation. Color
// frames come back as RGB; masks are resized on their own luminance image.
func Resize(width, height int) clips.Effect {
	return func(c *clips.Clip) (*clips.Clip, error) {
		if width <= 0 || height <= 0 {
			return nil, &clips.ParameterError{Op: "resize", Name: "size", Value: fmt.Sprintf("%dx%d", width, height), Reason: "must be positive"}
		}
		return c.MapMask(resizeFunc(width, height, frame.FromImage), resizeFunc(width, height, frame.MaskFromImage)), nil
	}
}

func resizeFunc(width, height int, back func(image.Image) frame.Frame) clips.PixelFunc {
	return func(f frame.Frame) (frame.Frame, error) {
		if f.Width == width && f.Height == height {
			return f, nil
		}
		img, err := f.ToImage()
		if err != nil {
			return frame.Frame{}, fmt.Errorf("resize: %w", err)
		}
		return back(resize.Resize(uint(width), uint(height), img, resize.Bilinear)), nil
	}
}

// Opacity multiplies the clip mask by op, creating a uniform mask first when
// the clip has none.
func Opacity(op float64) clips.Effect {
	return func(c *clips.Clip) (*clips.Clip, error) {
		if !(op >= 0 && op <= 1) {
			return nil, &clips.ParameterError{Op: "opacity", Name: "opacity", Value: op, Reason: "must be within [0, 1]"}
		}
		if m := c.Mask(); m != nil {
			return c.WithMask(m.Map(func(f frame.Frame) (frame.Frame, error) {
				return frame.Scale(f, op), nil
			}, false))
		}

		w, h, err := c.Size()
		if err != nil {
			return nil, fmt.Errorf("opacity: %w", err)
		}
		m, err := clips.ColorMask(w, h, op, c.Duration())
		if err != nil {
			return nil, err
		}
		return c.WithMask(m)
	}
}

// OnColor places the clip centered on a width x height background of the given
// color. The background itself is drawn with opacity bgOpacity; the clip keeps
// its own mask.
func OnColor(width, height int, rgb [3]float64, bgOpacity float64) clips.Effect {
	return func(c *clips.Clip) (*clips.Clip, error) {
		bg, err := clips.Color(width, height, rgb, c.Duration())
		if err != nil {
			return nil, err
		}
		if fps, ok := c.FPS(); ok {
			bg = bg.WithFPS(fps)
		}
		if bgOpacity < 1 {
			if bg, err = Opacity(bgOpacity)(bg); err != nil {
				return nil, err
			}
		}

		w, h, err := c.Size()
		if err != nil {
			return nil, fmt.Errorf("on color: %w", err)
		}
		return clips.Overlay(bg, c, (width-w)/2, (height-h)/2)
	}
}

// Volume multiplies audio samples by gain. It applies to audio clips directly
// and to the audio track of video clips; clips without audio are returned as
// they are.
func Volume(gain float64) clips.Effect {
	return func(c *clips.Clip) (*clips.Clip, error) {
		if !(gain >= 0) || math.IsInf(gain, 0) {
			return nil, &clips.ParameterError{Op: "volume", Name: "gain", Value: gain, Reason: "must be non-negative and finite"}
		}
		scale := func(f frame.Frame) (frame.Frame, error) { return frame.Scale(f, gain), nil }
		if c.IsAudio() {
			return c.Map(scale, false), nil
		}
		if c.Audio() == nil {
			return c, nil
		}
		return c.WithAudio(c.Audio().Map(scale, false))
	}
}
