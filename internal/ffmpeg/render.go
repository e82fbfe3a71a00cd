package ffmpeg

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/kikiluvv/lazyclip/internal/clips"
	"github.com/kikiluvv/lazyclip/internal/frame"
)

// FrameTimes returns the sample times of a clip of the given duration at fps:
// t_i = i/fps for n = ceil(duration*fps) frames, with the last time clamped
// below duration.
func FrameTimes(duration, fps float64) []float64 {
	if !(duration > 0) || !(fps > 0) {
		return nil
	}
	n := int(math.Ceil(duration*fps - 1e-9))
	if n < 1 {
		n = 1
	}
	last := math.Nextafter(duration, 0)
	times := make([]float64, n)
	for i := range times {
		t := float64(i) / fps
		if t > last {
			t = last
		}
		times[i] = t
	}
	return times
}

// frameSink receives rendered frames in time order.
type frameSink func(i int, f frame.Frame) error

// evalFunc produces the frame written at time t.
type evalFunc func(t float64) (frame.Frame, error)

// rgbFrames evaluates the clip's own frames.
func rgbFrames(c *clips.Clip) evalFunc {
	return c.GetFrame
}

// rgbaFrames folds the clip's mask in as a fourth channel. Clips without a mask
// fall back to opaque RGB frames.
func rgbaFrames(c *clips.Clip) evalFunc {
	m := c.Mask()
	if m == nil {
		return c.GetFrame
	}
	return func(t float64) (frame.Frame, error) {
		f, err := c.GetFrame(t)
		if err != nil {
			return frame.Frame{}, err
		}
		a, err := m.GetFrame(t)
		if err != nil {
			return frame.Frame{}, fmt.Errorf("mask: %w", err)
		}
		return frame.WithAlpha(f, a)
	}
}

// renderFrames evaluates every time in times, at most concurrency frames at
// once, and hands the frames to sink in order. Frames are rendered in windows
// so memory stays bounded by the window size.
func renderFrames(ctx context.Context, times []float64, concurrency int, eval evalFunc, sink frameSink) error {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	window := concurrency * 2

	for start := 0; start < len(times); start += window {
		end := min(start+window, len(times))
		frames := make([]frame.Frame, end-start)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for i := start; i < end; i++ {
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				f, err := eval(times[i])
				if err != nil {
					return fmt.Errorf("frame %d (t=%gs): %w", i, times[i], err)
				}
				frames[i-start] = f
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for j, f := range frames {
			if err := sink(start+j, f); err != nil {
				return err
			}
		}
	}
	return nil
}
