package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/kikiluvv/lazyclip/internal/clips"
	"github.com/kikiluvv/lazyclip/internal/frame"
	"github.com/kikiluvv/lazyclip/pkg/util"
)

// encodeJob is a fully resolved WriteVideo invocation.
type encodeJob struct {
	output        string
	width, height int
	fps           float64
	codec         string
	preset        string
	crf           int
	pixFmt        string
	audioCodec    string
	// audioPath is a raw f32le file; empty means no audio track.
	audioPath  string
	sampleRate int
	channels   int
	extra      []string
}

// args returns the ffmpeg arguments reading rgb24 frames from stdin.
func (j encodeJob) args() []string {
	args := []string{
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", j.width, j.height),
		"-r", formatRate(j.fps),
		"-i", "pipe:0",
	}
	if j.audioPath != "" {
		args = append(args,
			"-f", "f32le",
			"-ar", strconv.Itoa(j.sampleRate),
			"-ac", strconv.Itoa(j.channels),
			"-i", j.audioPath,
		)
	}
	args = append(args, codecArgs(j.codec, j.preset, j.crf, j.pixFmt)...)
	if j.audioPath != "" {
		args = append(args, "-c:a", j.audioCodec)
	} else {
		args = append(args, "-an")
	}
	args = append(args, j.extra...)
	return append(args, j.output)
}

func formatRate(fps float64) string {
	return strconv.FormatFloat(fps, 'f', -1, 64)
}

// resolveFPS picks the write frame rate: options first, then the clip.
func resolveFPS(c *clips.Clip, fps float64) (float64, error) {
	if fps > 0 {
		return fps, nil
	}
	if f, ok := c.FPS(); ok {
		return f, nil
	}
	return 0, ErrNoFPS
}

func (e *Executor) resolveJob(c *clips.Clip, output string, opts WriteOptions) (encodeJob, error) {
	if c.IsMask() || c.IsAudio() {
		return encodeJob{}, fmt.Errorf("write video: clip is not a video clip")
	}

	fps, err := resolveFPS(c, opts.FPS)
	if err != nil {
		return encodeJob{}, err
	}

	codec := orDefault(opts.Codec, e.defaults.Codec)
	if codec == "" {
		if codec, err = CodecForPath(output); err != nil {
			return encodeJob{}, err
		}
	}

	w, h, err := c.Size()
	if err != nil {
		return encodeJob{}, fmt.Errorf("write video: %w", err)
	}

	crf := opts.CRF
	if crf == 0 {
		crf = e.defaults.CRF
	}
	if crf == 0 {
		crf = DefaultCRF
	}

	sampleRate := opts.AudioSampleRate
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	return encodeJob{
		output:     output,
		width:      w,
		height:     h,
		fps:        fps,
		codec:      codec,
		preset:     orDefault(opts.Preset, orDefault(e.defaults.Preset, DefaultPreset)),
		crf:        crf,
		pixFmt:     orDefault(opts.PixelFormat, orDefault(e.defaults.PixelFormat, DefaultPixelFormat)),
		audioCodec: orDefault(opts.AudioCodec, orDefault(e.defaults.AudioCodec, DefaultAudioCodec)),
		sampleRate: sampleRate,
		extra:      opts.ExtraArgs,
	}, nil
}

// WriteVideo renders c at the resolved frame rate and encodes it to output.
// The codec is taken from the options, the configuration or the output
// extension, in that order. The clip's audio is encoded unless NoAudio is set.
func (e *Executor) WriteVideo(ctx context.Context, c *clips.Clip, output string, opts WriteOptions) error {
	job, err := e.resolveJob(c, output, opts)
	if err != nil {
		return err
	}

	times := FrameTimes(c.Duration(), job.fps)

	e.logger.Info().
		Str("output", output).
		Str("codec", job.codec).
		Float64("fps", job.fps).
		Int("frames", len(times)).
		Msg("writing video")

	if a := c.Audio(); a != nil && !opts.NoAudio {
		path, channels, err := writeAudioFile(ctx, a, c.Duration(), opts.TempDir, job.sampleRate)
		if err != nil {
			return fmt.Errorf("write video: %w", err)
		}
		defer util.CleanupFiles(path)
		job.audioPath = path
		job.channels = channels
	}

	if err := e.pipeFrames(ctx, job.args(), job.width, job.height, times, opts.Concurrency, rgbFrames(c), opts.ProgressFunc); err != nil {
		return fmt.Errorf("write video %s: %w", output, err)
	}

	e.logger.Info().Str("output", output).Msg("video written")
	return nil
}

// pipeFrames renders width x height frames into ffmpeg's stdin while ffmpeg
// runs with args. A rendering error takes precedence over the encoder error it
// causes.
func (e *Executor) pipeFrames(ctx context.Context, args []string, width, height int, times []float64, concurrency int, eval evalFunc, progress ProgressFunc) error {
	pr, pw := io.Pipe()

	produced := make(chan error, 1)
	go func() {
		bw := bufio.NewWriterSize(pw, 1<<20)
		err := renderFrames(ctx, times, concurrency, eval, rawSink(bw, width, height))
		if err == nil {
			err = bw.Flush()
		}
		pw.CloseWithError(err)
		produced <- err
	}()

	runErr := e.Run(ctx, RunOptions{
		Args:            args,
		Stdin:           pr,
		ProgressHandler: percentOf(progress, len(times)),
		LogHandler: func(line string) {
			e.logger.Trace().Str("ffmpeg", line).Msg("encoder output")
		},
	})
	// Unblock the producer if ffmpeg stopped reading early.
	pr.CloseWithError(errEncoderExited)
	prodErr := <-produced

	if prodErr != nil && !errors.Is(prodErr, errEncoderExited) {
		return prodErr
	}
	return runErr
}

var errEncoderExited = errors.New("encoder exited")

// rawSink writes frames to w as packed rgb24. The raw stream carries no
// header, so a frame of any other size is an error.
func rawSink(w io.Writer, width, height int) frameSink {
	return func(i int, f frame.Frame) error {
		if f.Width != width || f.Height != height {
			return fmt.Errorf("frame %d is %dx%d, want %dx%d", i, f.Width, f.Height, width, height)
		}
		data, err := f.RGB24()
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
}

// percentOf wraps fn so each update carries the completed percentage.
func percentOf(fn ProgressFunc, total int) func(*Progress) {
	if fn == nil {
		return nil
	}
	return func(p *Progress) {
		if total > 0 {
			p.Percentage = min(100, float64(p.Frame)*100/float64(total))
		}
		fn(p)
	}
}

// writeAudioFile samples the audio clip a at sampleRate into a temporary raw
// f32le file and returns its path and channel count. Audio past duration is
// dropped so the track never outlasts the video.
func writeAudioFile(ctx context.Context, a *clips.Clip, duration float64, dir string, sampleRate int) (string, int, error) {
	channels, err := a.Channels()
	if err != nil {
		return "", 0, fmt.Errorf("audio: %w", err)
	}

	f, err := util.TempFile(dir, "lazyclip-audio-", ".f32")
	if err != nil {
		return "", 0, fmt.Errorf("audio temp file: %w", err)
	}
	path := f.Name()

	err = writeSamples(ctx, bufio.NewWriter(f), a, math.Min(a.Duration(), duration), sampleRate, channels)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		util.CleanupFiles(path)
		return "", 0, fmt.Errorf("audio: %w", err)
	}
	return path, channels, nil
}

func writeSamples(ctx context.Context, bw *bufio.Writer, a *clips.Clip, duration float64, sampleRate, channels int) error {
	buf := make([]byte, 0, channels*4)
	for i, t := range FrameTimes(duration, float64(sampleRate)) {
		if i%sampleRate == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		s, err := a.GetFrame(t)
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		if s.Channels != channels {
			return fmt.Errorf("sample %d has %d channels, want %d", i, s.Channels, channels)
		}
		buf = encodeF32LE(buf[:0], s.Pix)
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}
