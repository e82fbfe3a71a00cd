package clips

import (
	"math"
	"sync"

	"github.com/kikiluvv/lazyclip/internal/frame"
)

// FrameSource produces the frame shown at local time t. Implementations must
// be deterministic and safe to call concurrently, in any order.
type FrameSource interface {
	Frame(t float64) (frame.Frame, error)
}

// SourceFunc adapts a plain function to FrameSource.
type SourceFunc func(t float64) (frame.Frame, error)

// Frame calls f(t).
func (f SourceFunc) Frame(t float64) (frame.Frame, error) { return f(t) }

type kind uint8

const (
	kindVideo kind = iota
	kindMask
	kindAudio
)

// Clip is an immutable, lazily evaluated time-indexed media value.
//
// A Clip never stores decoded frames: it holds a FrameSource (usually a record
// describing how to derive frames from other clips) and the bookkeeping needed
// to compose it: duration, optional frame rate, an optional audio track and an
// optional mask. Every operation returns a new Clip; the receiver is never
// modified.
type Clip struct {
	src      FrameSource
	duration float64
	fps      float64
	kind     kind
	audio    *Clip
	mask     *Clip
	shape    *shapeCache
}

type shapeCache struct {
	once sync.Once
	f    frame.Frame
	err  error
}

// New wraps src as a video clip of the given duration.
func New(src FrameSource, duration float64) (*Clip, error) {
	return newClip(src, duration, kindVideo)
}

// NewMask wraps src as a mask clip. Its frames must be single-channel with
// values in [0, 1].
func NewMask(src FrameSource, duration float64) (*Clip, error) {
	return newClip(src, duration, kindMask)
}

// NewAudio wraps src as an audio clip sampled at sampleRate. Its frames are
// 1x1xN sample vectors, one value per channel.
func NewAudio(src FrameSource, duration, sampleRate float64) (*Clip, error) {
	c, err := newClip(src, duration, kindAudio)
	if err != nil {
		return nil, err
	}
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, &ParameterError{Op: "new audio", Name: "sample rate", Value: sampleRate, Reason: "must be positive"}
	}
	c.fps = sampleRate
	return c, nil
}

func newClip(src FrameSource, duration float64, k kind) (*Clip, error) {
	if src == nil {
		return nil, &ParameterError{Op: "new clip", Name: "source", Value: nil, Reason: "must not be nil"}
	}
	if !(duration > 0) || math.IsInf(duration, 0) {
		return nil, &ParameterError{Op: "new clip", Name: "duration", Value: duration, Reason: "must be positive and finite"}
	}
	return &Clip{src: src, duration: duration, kind: k, shape: &shapeCache{}}, nil
}

// derive returns a clip of the same kind and frame rate backed by src. Audio
// and mask are left unset; callers attach the co-transformed tracks.
func (c *Clip) derive(src FrameSource, duration float64) *Clip {
	return &Clip{src: src, duration: duration, fps: c.fps, kind: c.kind, shape: &shapeCache{}}
}

// GetFrame returns the frame at time t. t must lie in [0, Duration()). Frames
// may share memory with the source, so callers must not modify Pix.
func (c *Clip) GetFrame(t float64) (frame.Frame, error) {
	if !(t >= 0 && t < c.duration) {
		return frame.Frame{}, &OutOfBoundsError{Op: "get frame", T: t, Duration: c.duration}
	}
	return c.src.Frame(t)
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 { return c.duration }

// FPS returns the natural frame rate (the sample rate for audio clips) and
// whether one is defined.
func (c *Clip) FPS() (float64, bool) { return c.fps, c.fps > 0 }

// Audio returns the attached audio track, or nil.
func (c *Clip) Audio() *Clip { return c.audio }

// Mask returns the attached mask, or nil.
func (c *Clip) Mask() *Clip { return c.mask }

// IsMask reports whether c is a mask clip.
func (c *Clip) IsMask() bool { return c.kind == kindMask }

// IsAudio reports whether c is an audio clip.
func (c *Clip) IsAudio() bool { return c.kind == kindAudio }

// Size returns the frame dimensions. They are read once from the first frame
// and cached.
func (c *Clip) Size() (width, height int, err error) {
	f, err := c.firstFrame()
	if err != nil {
		return 0, 0, err
	}
	return f.Width, f.Height, nil
}

// Channels returns the per-pixel channel count of the first frame.
func (c *Clip) Channels() (int, error) {
	f, err := c.firstFrame()
	if err != nil {
		return 0, err
	}
	return f.Channels, nil
}

func (c *Clip) firstFrame() (frame.Frame, error) {
	c.shape.once.Do(func() {
		c.shape.f, c.shape.err = c.GetFrame(0)
	})
	return c.shape.f, c.shape.err
}

func (c *Clip) clone() *Clip {
	out := *c
	return &out
}

// WithFPS returns a copy with the given frame rate. fps <= 0 clears it.
func (c *Clip) WithFPS(fps float64) *Clip {
	out := c.clone()
	out.fps = math.Max(fps, 0)
	return out
}

// WithAudio returns a copy with a attached as its audio track. The track keeps
// its own duration. A nil track detaches audio.
func (c *Clip) WithAudio(a *Clip) (*Clip, error) {
	if a != nil && !a.IsAudio() {
		return nil, &ParameterError{Op: "with audio", Name: "track", Value: a.kindName(), Reason: "not an audio clip"}
	}
	out := c.clone()
	out.audio = a
	return out, nil
}

// WithoutAudio returns a copy with no audio track.
func (c *Clip) WithoutAudio() *Clip {
	out := c.clone()
	out.audio = nil
	return out
}

// WithMask returns a copy with m attached as its mask. m must be a mask clip
// with the same duration as c.
func (c *Clip) WithMask(m *Clip) (*Clip, error) {
	if m != nil {
		if !m.IsMask() {
			return nil, &ParameterError{Op: "with mask", Name: "mask", Value: m.kindName(), Reason: "not a mask clip"}
		}
		if math.Abs(m.duration-c.duration) > durationTolerance {
			return nil, &ParameterError{Op: "with mask", Name: "mask duration", Value: m.duration, Reason: "must match clip duration"}
		}
	}
	out := c.clone()
	out.mask = m
	return out, nil
}

// WithoutMask returns a copy with no mask.
func (c *Clip) WithoutMask() *Clip {
	out := c.clone()
	out.mask = nil
	return out
}

func (c *Clip) kindName() string {
	switch c.kind {
	case kindMask:
		return "mask"
	case kindAudio:
		return "audio"
	default:
		return "video"
	}
}

const durationTolerance = 1e-9
