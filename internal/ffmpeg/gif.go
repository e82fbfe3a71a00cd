package ffmpeg

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/kikiluvv/lazyclip/internal/clips"
	"github.com/kikiluvv/lazyclip/internal/config"
	"github.com/kikiluvv/lazyclip/pkg/util"
)

const gifFramePattern = "frame%06d.png"

// WriteGIF renders c as an animated GIF. With the ffmpeg program frames are
// piped (or written to temporary PNGs when TempFiles is set) and quantised
// with a generated palette. The imagemagick program always goes through PNGs
// and the convert tool.
func (e *Executor) WriteGIF(ctx context.Context, c *clips.Clip, output string, opts GIFOptions) error {
	if c.IsMask() || c.IsAudio() {
		return fmt.Errorf("write gif: clip is not a video clip")
	}
	fps, err := resolveFPS(c, opts.FPS)
	if err != nil {
		return err
	}
	program := orDefault(opts.Program, config.GIFProgramFFmpeg)

	e.logger.Info().
		Str("output", output).
		Str("program", program).
		Float64("fps", fps).
		Bool("temp_files", opts.TempFiles).
		Msg("writing gif")

	switch program {
	case config.GIFProgramFFmpeg:
		if opts.TempFiles {
			err = e.gifFromFiles(ctx, c, output, fps, opts)
		} else {
			err = e.gifFromPipe(ctx, c, output, fps, opts)
		}
	case config.GIFProgramImageMagick:
		err = e.gifWithImageMagick(ctx, c, output, fps, opts)
	default:
		return fmt.Errorf("write gif: %w %q", ErrUnknownProgram, program)
	}
	if err != nil {
		return fmt.Errorf("write gif %s: %w", output, err)
	}

	e.logger.Info().Str("output", output).Msg("gif written")
	return nil
}

// gifArgs returns the ffmpeg output arguments shared by both ffmpeg modes.
func gifArgs(output string, fps float64, loop int) []string {
	return []string{
		"-vf", NewFilterBuilder().FPS(fps).Palette().Build(),
		"-loop", strconv.Itoa(loop),
		output,
	}
}

func (e *Executor) gifFromPipe(ctx context.Context, c *clips.Clip, output string, fps float64, opts GIFOptions) error {
	w, h, err := c.Size()
	if err != nil {
		return err
	}
	args := []string{
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", w, h),
		"-r", formatRate(fps),
		"-i", "pipe:0",
	}
	args = append(args, gifArgs(output, fps, opts.Loop)...)
	times := FrameTimes(c.Duration(), fps)
	return e.pipeFrames(ctx, args, w, h, times, opts.Concurrency, rgbFrames(c), nil)
}

func (e *Executor) gifFromFiles(ctx context.Context, c *clips.Clip, output string, fps float64, opts GIFOptions) error {
	dir, _, err := writeTempFrames(ctx, c, fps, opts)
	if err != nil {
		return err
	}
	defer util.CleanupDir(dir)

	args := []string{
		"-framerate", formatRate(fps),
		"-i", filepath.Join(dir, gifFramePattern),
	}
	args = append(args, gifArgs(output, fps, opts.Loop)...)
	return e.Run(ctx, RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Trace().Str("ffmpeg", line).Msg("gif output")
		},
	})
}

func (e *Executor) gifWithImageMagick(ctx context.Context, c *clips.Clip, output string, fps float64, opts GIFOptions) error {
	convert, err := exec.LookPath("convert")
	if err != nil {
		return fmt.Errorf("imagemagick not found: %w", err)
	}

	dir, frames, err := writeTempFrames(ctx, c, fps, opts)
	if err != nil {
		return err
	}
	defer util.CleanupDir(dir)

	_, err = e.capture(ctx, convert, imageMagickArgs(frames, output, fps, opts.Loop)...)
	return err
}

// imageMagickArgs builds a convert invocation. -delay is in hundredths of a
// second per frame.
func imageMagickArgs(frames []string, output string, fps float64, loop int) []string {
	delay := int(math.Round(100 / fps))
	args := []string{
		"-delay", strconv.Itoa(delay),
		"-dispose", "2",
		"-loop", strconv.Itoa(loop),
	}
	args = append(args, frames...)
	return append(args, output)
}

func writeTempFrames(ctx context.Context, c *clips.Clip, fps float64, opts GIFOptions) (string, []string, error) {
	dir, err := util.TempDir(opts.TempDir, "lazyclip-gif-")
	if err != nil {
		return "", nil, fmt.Errorf("temp dir: %w", err)
	}
	frames, err := WriteImageSequence(ctx, c, filepath.Join(dir, gifFramePattern), SequenceOptions{
		FPS:         fps,
		Concurrency: opts.Concurrency,
	})
	if err != nil {
		util.CleanupDir(dir)
		return "", nil, err
	}
	return dir, frames, nil
}
