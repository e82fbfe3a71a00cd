package ffmpeg

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/kikiluvv/lazyclip/internal/clips"
	"github.com/kikiluvv/lazyclip/internal/frame"
)

// videoSource decodes single frames on demand by seeking into the file.
type videoSource struct {
	e             *Executor
	path          string
	width, height int
}

func (v videoSource) Frame(t float64) (frame.Frame, error) {
	// The FrameSource contract has no context; a frame decode is one short
	// ffmpeg run.
	data, err := v.e.capture(context.Background(), v.e.ffmpegPath,
		"-hide_banner", "-loglevel", "error",
		"-ss", strconv.FormatFloat(t, 'f', 6, 64),
		"-i", v.path,
		"-frames:v", "1",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)
	if err != nil {
		return frame.Frame{}, fmt.Errorf("decode %s at %gs: %w", v.path, t, err)
	}
	if len(data) == 0 {
		return frame.Frame{}, fmt.Errorf("decode %s at %gs: no frame", v.path, t)
	}
	return frame.FromRGB24(v.height, v.width, data)
}

// OpenVideo returns a clip reading frames from the video file at path. The
// file is probed here, so unreadable files fail at construction; frames are
// decoded lazily, one ffmpeg run per GetFrame.
func (e *Executor) OpenVideo(ctx context.Context, path string, opts OpenOptions) (*clips.Clip, error) {
	info, err := e.ProbeVideo(ctx, path)
	if err != nil {
		return nil, err
	}
	if !info.HasVideo || info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("open %s: no video stream", path)
	}
	if info.Duration <= 0 {
		return nil, fmt.Errorf("open %s: unknown duration", path)
	}

	c, err := clips.New(videoSource{e: e, path: path, width: info.Width, height: info.Height}, info.Seconds())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	c = c.WithFPS(info.FPS)

	e.logger.Debug().
		Str("path", path).
		Int("width", info.Width).
		Int("height", info.Height).
		Float64("fps", info.FPS).
		Dur("duration", info.Duration).
		Msg("opened video")

	if !opts.Audio || !info.HasAudio {
		return c, nil
	}
	a, err := e.decodeAudio(ctx, path, info, opts.SampleRate)
	if err != nil {
		return nil, err
	}
	return c.WithAudio(a)
}

// audioSource serves samples from a fully decoded interleaved buffer.
type audioSource struct {
	samples  []float32
	channels int
	rate     float64
}

func (a audioSource) Frame(t float64) (frame.Frame, error) {
	n := len(a.samples) / a.channels
	i := int(t * a.rate)
	if i >= n {
		i = n - 1
	}
	out := frame.New(1, 1, a.channels)
	for c := 0; c < a.channels; c++ {
		out.Pix[c] = float64(a.samples[i*a.channels+c])
	}
	return out, nil
}

// OpenAudio decodes the audio stream of path into memory, resampled to
// sampleRate (DefaultSampleRate when 0).
func (e *Executor) OpenAudio(ctx context.Context, path string, sampleRate int) (*clips.Clip, error) {
	info, err := e.ProbeVideo(ctx, path)
	if err != nil {
		return nil, err
	}
	if !info.HasAudio {
		return nil, fmt.Errorf("open %s: no audio stream", path)
	}
	return e.decodeAudio(ctx, path, info, sampleRate)
}

func (e *Executor) decodeAudio(ctx context.Context, path string, info *VideoInfo, sampleRate int) (*clips.Clip, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	channels := info.AudioChannels
	if channels <= 0 {
		channels = 2
	}

	data, err := e.capture(ctx, e.ffmpegPath,
		"-hide_banner", "-loglevel", "error",
		"-i", path,
		"-vn",
		"-f", "f32le",
		"-acodec", "pcm_f32le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", strconv.Itoa(channels),
		"pipe:1",
	)
	if err != nil {
		return nil, fmt.Errorf("decode audio %s: %w", path, err)
	}

	samples := decodeF32LE(data)
	frames := len(samples) / channels
	if frames == 0 {
		return nil, fmt.Errorf("decode audio %s: empty stream", path)
	}

	e.logger.Debug().
		Str("path", path).
		Int("sample_rate", sampleRate).
		Int("channels", channels).
		Int("frames", frames).
		Msg("decoded audio")

	src := audioSource{samples: samples[:frames*channels], channels: channels, rate: float64(sampleRate)}
	return clips.NewAudio(src, float64(frames)/float64(sampleRate), float64(sampleRate))
}

func decodeF32LE(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}

func encodeF32LE(dst []byte, samples []float64) []byte {
	for _, s := range samples {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(s)))
	}
	return dst
}
