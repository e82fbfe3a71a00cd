package clips

import (
	"fmt"
	"sort"

	"github.com/kikiluvv/lazyclip/internal/frame"
)

// sequence plays its members one after another. offsets has one more entry
// than members: member i owns [offsets[i], offsets[i+1]).
type sequence struct {
	members []*Clip
	offsets []float64
}

func newSequence(members []*Clip) *sequence {
	offsets := make([]float64, len(members)+1)
	for i, m := range members {
		offsets[i+1] = offsets[i] + m.duration
	}
	return &sequence{members: members, offsets: offsets}
}

func (s *sequence) total() float64 { return s.offsets[len(s.members)] }

// locate returns the member owning t. A time on a junction belongs to the
// later member.
func (s *sequence) locate(t float64) int {
	i := sort.Search(len(s.members), func(i int) bool { return s.offsets[i+1] > t })
	if i == len(s.members) {
		i--
	}
	return i
}

func (s *sequence) Frame(t float64) (frame.Frame, error) {
	i := s.locate(t)
	m := s.members[i]
	return m.GetFrame(clampTime(t-s.offsets[i], m.duration))
}

// Concat plays clips back to back. The duration is the sum of the member
// durations; the frame rate is kept only when every member has the same one.
// Audio and masks are concatenated on the same offsets whenever any member
// carries one: members without audio contribute silence and members without a
// mask contribute a fully opaque one. Video and mask members must share the
// frame size of the first member.
func Concat(clips ...*Clip) (*Clip, error) {
	if len(clips) == 0 {
		return nil, &ParameterError{Op: "concat", Name: "clips", Value: 0, Reason: "need at least one clip"}
	}
	for i, c := range clips {
		if c == nil {
			return nil, &ParameterError{Op: "concat", Name: "clip", Value: i, Reason: "is nil"}
		}
		if c.kind != clips[0].kind {
			return nil, &ParameterError{Op: "concat", Name: "clip", Value: i, Reason: "mixes " + c.kindName() + " with " + clips[0].kindName()}
		}
	}
	if err := sameSize(clips); err != nil {
		return nil, err
	}

	members := append([]*Clip(nil), clips...)
	seq := newSequence(members)
	out := clips[0].derive(seq, seq.total())
	out.fps = commonFPS(members)

	if hasAny(members, func(c *Clip) bool { return c.audio != nil }) {
		out.audio = concatAudio(members)
	}
	if hasAny(members, func(c *Clip) bool { return c.mask != nil }) {
		out.mask = concatMasks(members)
	}
	return out, nil
}

// Add is the + operator: c followed by others.
func (c *Clip) Add(others ...*Clip) (*Clip, error) {
	return Concat(append([]*Clip{c}, others...)...)
}

func sameSize(members []*Clip) error {
	if members[0].kind == kindAudio {
		return nil
	}
	w, h, err := members[0].Size()
	if err != nil {
		return fmt.Errorf("concat: clip 0: %w", err)
	}
	for i, m := range members[1:] {
		mw, mh, err := m.Size()
		if err != nil {
			return fmt.Errorf("concat: clip %d: %w", i+1, err)
		}
		if mw != w || mh != h {
			return &ParameterError{Op: "concat", Name: "clip", Value: i + 1, Reason: fmt.Sprintf("is %dx%d, want %dx%d", mw, mh, w, h)}
		}
	}
	return nil
}

func commonFPS(members []*Clip) float64 {
	fps := members[0].fps
	for _, m := range members[1:] {
		if m.fps != fps {
			return 0
		}
	}
	return fps
}

func hasAny(members []*Clip, pred func(*Clip) bool) bool {
	for _, m := range members {
		if pred(m) {
			return true
		}
	}
	return false
}

func concatAudio(members []*Clip) *Clip {
	var like *Clip
	for _, m := range members {
		if m.audio != nil {
			like = m.audio
			break
		}
	}

	tracks := make([]*Clip, len(members))
	for i, m := range members {
		if m.audio == nil {
			tracks[i] = silence(like, m.duration)
			continue
		}
		tracks[i] = fitAudio(m.audio, m.duration)
	}

	seq := newSequence(tracks)
	out := like.derive(seq, seq.total())
	out.fps = commonFPS(tracks)
	return out
}

func concatMasks(members []*Clip) *Clip {
	masks := make([]*Clip, len(members))
	for i, m := range members {
		if m.mask != nil {
			masks[i] = m.mask
			continue
		}
		masks[i] = opaqueMask(m)
	}

	seq := newSequence(masks)
	out := masks[0].derive(seq, seq.total())
	out.fps = commonFPS(masks)
	return out
}

// opaqueMask is a fully opaque mask shaped like c's frames.
func opaqueMask(c *Clip) *Clip {
	src := SourceFunc(func(float64) (frame.Frame, error) {
		w, h, err := c.Size()
		if err != nil {
			return frame.Frame{}, err
		}
		return frame.Solid(h, w, 1), nil
	})
	return &Clip{src: src, duration: c.duration, fps: c.fps, kind: kindMask, shape: &shapeCache{}}
}
