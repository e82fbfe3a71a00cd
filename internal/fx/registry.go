package fx

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kikiluvv/lazyclip/internal/clips"
)

// ErrUnknownEffect is returned when an effect name is not registered.
var ErrUnknownEffect = errors.New("unknown effect")

// Factory builds an effect from its parsed arguments.
type Factory func(args []float64) (clips.Effect, error)

// Registry maps effect names to factories so that effects can be named in
// project files, e.g. "opacity=0.5" or "resize=640,360".
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates a registry holding the built-in effects.
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
	}

	r.Register(EvenSizeName, fixed(0, func([]float64) (clips.Effect, error) { return EvenSize(), nil }))
	r.Register(CropName, fixed(4, func(a []float64) (clips.Effect, error) {
		return Crop(int(a[0]), int(a[1]), int(a[2]), int(a[3])), nil
	}))
	r.Register(ResizeName, fixed(2, func(a []float64) (clips.Effect, error) {
		return Resize(int(a[0]), int(a[1])), nil
	}))
	r.Register(OpacityName, fixed(1, func(a []float64) (clips.Effect, error) { return Opacity(a[0]), nil }))
	r.Register(OnColorName, func(a []float64) (clips.Effect, error) {
		if len(a) != 5 && len(a) != 6 {
			return nil, fmt.Errorf("want width,height,r,g,b[,opacity], got %d arguments", len(a))
		}
		op := 1.0
		if len(a) == 6 {
			op = a[5]
		}
		return OnColor(int(a[0]), int(a[1]), [3]float64{a[2], a[3], a[4]}, op), nil
	})
	r.Register(VolumeName, fixed(1, func(a []float64) (clips.Effect, error) { return Volume(a[0]), nil }))
	r.Register(SpeedName, fixed(1, func(a []float64) (clips.Effect, error) {
		return func(c *clips.Clip) (*clips.Clip, error) { return c.Speed(a[0]) }, nil
	}))
	r.Register(ReverseName, fixed(0, func([]float64) (clips.Effect, error) {
		return func(c *clips.Clip) (*clips.Clip, error) { return c.Reverse() }, nil
	}))
	r.Register(ScaleName, fixed(1, func(a []float64) (clips.Effect, error) {
		return func(c *clips.Clip) (*clips.Clip, error) { return c.Mul(a[0]) }, nil
	}))
	r.Register(LoopName, fixed(1, func(a []float64) (clips.Effect, error) {
		return func(c *clips.Clip) (*clips.Clip, error) { return c.Loop(a[0]) }, nil
	}))
	r.Register(MuteName, fixed(0, func([]float64) (clips.Effect, error) {
		return func(c *clips.Clip) (*clips.Clip, error) { return c.WithoutAudio(), nil }, nil
	}))

	return r
}

// Built-in effect names
const (
	EvenSizeName = "even_size"
	CropName     = "crop"
	ResizeName   = "resize"
	OpacityName  = "opacity"
	OnColorName  = "on_color"
	VolumeName   = "volume"
	SpeedName    = "speed"
	ReverseName  = "reverse"
	ScaleName    = "scale"
	LoopName     = "loop"
	MuteName     = "mute"
)

func fixed(n int, f Factory) Factory {
	return func(args []float64) (clips.Effect, error) {
		if len(args) != n {
			return nil, fmt.Errorf("want %d arguments, got %d", n, len(args))
		}
		return f(args)
	}
}

// Register adds or replaces an effect factory.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Get retrieves a factory by name
func (r *Registry) Get(name string) (Factory, bool) {
	f, ok := r.factories[name]
	return f, ok
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse builds the effect described by expr: a name, optionally followed by
// "=" and comma-separated numeric arguments.
func (r *Registry) Parse(expr string) (clips.Effect, error) {
	name, rawArgs, _ := strings.Cut(strings.TrimSpace(expr), "=")
	name = strings.TrimSpace(name)

	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, name)
	}

	var args []float64
	if strings.TrimSpace(rawArgs) != "" {
		for _, field := range strings.Split(rawArgs, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("effect %s: argument %q is not a number", name, field)
			}
			args = append(args, v)
		}
	}

	fx, err := f(args)
	if err != nil {
		return nil, fmt.Errorf("effect %s: %w", name, err)
	}
	return fx, nil
}

// ParseAll parses each expression in order.
func (r *Registry) ParseAll(exprs []string) ([]clips.Effect, error) {
	out := make([]clips.Effect, 0, len(exprs))
	for _, e := range exprs {
		fx, err := r.Parse(e)
		if err != nil {
			return nil, err
		}
		out = append(out, fx)
	}
	return out, nil
}
