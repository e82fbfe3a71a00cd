package overlays

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/lazyclip/internal/clips"
	"github.com/kikiluvv/lazyclip/internal/fx"
)

// Opener turns an overlay asset path into a clip
type Opener func(ctx context.Context, path string) (*clips.Clip, error)

// Overlay is a clip drawn over the base clip for part of its duration
type Overlay struct {
	// Source is an asset path or a name registered in the Registry.
	Source string
	Start  time.Duration
	// End is the base clip time the overlay stops at. Zero means it plays
	// until either clip ends.
	End time.Duration
	// Opacity in [0, 1]. Nil means opaque.
	Opacity  *float64
	Position Position
}

// Position defines overlay placement of the top-left corner in base pixels
type Position struct {
	X int
	Y int
}

// Registry manages named overlay assets
type Registry struct {
	overlays map[string]string
}

// NewRegistry creates a new overlay registry
func NewRegistry() *Registry {
	return &Registry{
		overlays: make(map[string]string),
	}
}

// Register adds an overlay to the registry
func (r *Registry) Register(name, path string) {
	r.overlays[name] = path
}

// Get retrieves an overlay path by name
func (r *Registry) Get(name string) (string, bool) {
	path, ok := r.overlays[name]
	return path, ok
}

// Resolve returns the registered path for source, or source itself when it is
// not a registered name.
func (r *Registry) Resolve(source string) string {
	if path, ok := r.Get(source); ok {
		return path
	}
	return source
}

// List returns all registered overlays in sorted order
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.overlays))
	for name := range r.overlays {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compositor places overlays on a base clip
type Compositor struct {
	logger   zerolog.Logger
	registry *Registry
	open     Opener
}

// NewCompositor creates a compositor. A nil registry resolves no names.
func NewCompositor(logger zerolog.Logger, registry *Registry, open Opener) *Compositor {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Compositor{
		logger:   logger.With().Str("component", "overlays").Logger(),
		registry: registry,
		open:     open,
	}
}

// Apply draws overlays over base in order, later overlays on top.
func (c *Compositor) Apply(ctx context.Context, base *clips.Clip, overlays []Overlay) (*clips.Clip, error) {
	out := base
	for i, o := range overlays {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := c.registry.Resolve(o.Source)
		src, err := c.open(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("overlay %d: open %s: %w", i, path, err)
		}

		top, err := Place(out.Duration(), src, o)
		if err != nil {
			return nil, fmt.Errorf("overlay %d (%s): %w", i, o.Source, err)
		}
		if out, err = clips.Overlay(out, top, o.Position.X, o.Position.Y); err != nil {
			return nil, fmt.Errorf("overlay %d (%s): %w", i, o.Source, err)
		}

		c.logger.Debug().
			Str("source", path).
			Dur("start", o.Start).
			Float64("duration", top.Duration()).
			Int("x", o.Position.X).
			Int("y", o.Position.Y).
			Msg("Placed overlay")
	}
	return out, nil
}

// Place cuts src to the window of o on a base clip lasting baseDuration and
// pads it at the front with a transparent gap, so that the result can be
// composited on the base time axis.
func Place(baseDuration float64, src *clips.Clip, o Overlay) (*clips.Clip, error) {
	start := o.Start.Seconds()
	if start < 0 || start >= baseDuration {
		return nil, &clips.ParameterError{Op: "overlay", Name: "start", Value: start, Reason: fmt.Sprintf("must be within [0, %g)", baseDuration)}
	}

	end := baseDuration
	if o.End > 0 {
		end = math.Min(o.End.Seconds(), baseDuration)
	}
	if end <= start {
		return nil, &clips.RangeError{Op: "overlay", Start: start, End: end}
	}

	top, err := src.Subclip(0, math.Min(end-start, src.Duration()))
	if err != nil {
		return nil, err
	}
	if o.Opacity != nil && *o.Opacity < 1 {
		if top, err = fx.Opacity(*o.Opacity)(top); err != nil {
			return nil, err
		}
	}
	if start == 0 {
		return top, nil
	}

	w, h, err := top.Size()
	if err != nil {
		return nil, err
	}
	gap, err := clips.Color(w, h, [3]float64{}, start)
	if err != nil {
		return nil, err
	}
	if gap, err = fx.Opacity(0)(gap); err != nil {
		return nil, err
	}
	return clips.Concat(gap, top)
}
