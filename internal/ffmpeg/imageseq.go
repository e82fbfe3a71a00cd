package ffmpeg

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/kikiluvv/lazyclip/internal/clips"
	"github.com/kikiluvv/lazyclip/internal/frame"
	"github.com/kikiluvv/lazyclip/pkg/util"
)

// SequenceOptions configures WriteImageSequence.
type SequenceOptions struct {
	// FPS falls back to the clip frame rate.
	FPS float64
	// WithMask writes the mask as the alpha channel.
	WithMask    bool
	Concurrency int
}

// WriteImageSequence writes one image per frame. pattern is a printf format
// taking the frame index, e.g. "out/frame%04d.png". The written paths are
// returned in frame order.
func WriteImageSequence(ctx context.Context, c *clips.Clip, pattern string, opts SequenceOptions) ([]string, error) {
	fps, err := resolveFPS(c, opts.FPS)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(pattern); dir != "." {
		if err := util.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("image sequence: %w", err)
		}
	}

	eval := rgbFrames(c)
	if opts.WithMask {
		eval = rgbaFrames(c)
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	times := FrameTimes(c.Duration(), fps)
	paths := make([]string, len(times))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, t := range times {
		paths[i] = fmt.Sprintf(pattern, i)
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			f, err := eval(t)
			if err != nil {
				return fmt.Errorf("frame %d (t=%gs): %w", i, t, err)
			}
			if err := saveImage(f, paths[i]); err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// SaveFrame writes the frame at time t to path as PNG or JPEG, chosen by
// extension. With withMask the clip's mask becomes the alpha channel (PNG
// only).
func SaveFrame(c *clips.Clip, t float64, path string, withMask bool) error {
	eval := rgbFrames(c)
	if withMask {
		eval = rgbaFrames(c)
	}
	f, err := eval(t)
	if err != nil {
		return fmt.Errorf("save frame at %gs: %w", t, err)
	}
	if err := saveImage(f, path); err != nil {
		return fmt.Errorf("save frame at %gs: %w", t, err)
	}
	return nil
}

func saveImage(f frame.Frame, path string) error {
	img, err := f.ToImage()
	if err != nil {
		return err
	}

	var encode func(*os.File, image.Image) error
	switch ext := util.GetExtension(path); ext {
	case ".png":
		encode = func(w *os.File, img image.Image) error { return png.Encode(w, img) }
	case ".jpg", ".jpeg":
		encode = func(w *os.File, img image.Image) error { return jpeg.Encode(w, img, &jpeg.Options{Quality: 95}) }
	default:
		return fmt.Errorf("unsupported image extension %q", ext)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(out, img); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
