package fx

import (
	"errors"
	"testing"

	"github.com/kikiluvv/lazyclip/internal/clips"
)

func TestRegistryList(t *testing.T) {
	names := NewRegistry().List()
	if len(names) != 11 {
		t.Fatalf("List() = %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("List() not sorted: %v", names)
		}
	}
}

func TestRegistryParse(t *testing.T) {
	r := NewRegistry()
	c := gradient(t, 5, 4, 2)

	tests := []struct {
		expr         string
		wantW, wantH int
		wantDur      float64
	}{
		{expr: "even_size", wantW: 4, wantH: 4, wantDur: 2},
		{expr: "resize=10, 8", wantW: 10, wantH: 8, wantDur: 2},
		{expr: "crop=0,0,2,2", wantW: 2, wantH: 2, wantDur: 2},
		{expr: "speed=4", wantW: 5, wantH: 4, wantDur: 0.5},
		{expr: " scale = 2 ", wantW: 5, wantH: 4, wantDur: 4},
		{expr: "loop=1.5", wantW: 5, wantH: 4, wantDur: 3},
		{expr: "reverse", wantW: 5, wantH: 4, wantDur: 2},
		{expr: "on_color=8,8,0,0,0", wantW: 8, wantH: 8, wantDur: 2},
		{expr: "on_color=8,8,0,0,0,0.5", wantW: 8, wantH: 8, wantDur: 2},
		{expr: "opacity=0.5", wantW: 5, wantH: 4, wantDur: 2},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			effect, err := r.Parse(tt.expr)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			out, err := effect(c)
			if err != nil {
				t.Fatalf("effect error = %v", err)
			}
			w, h, err := out.Size()
			if err != nil {
				t.Fatal(err)
			}
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Size() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
			if out.Duration() != tt.wantDur {
				t.Errorf("Duration() = %v, want %v", out.Duration(), tt.wantDur)
			}
		})
	}
}

func TestRegistryParseErrors(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Parse("blur=3"); !errors.Is(err, ErrUnknownEffect) {
		t.Errorf("Parse(blur) error = %v, want ErrUnknownEffect", err)
	}

	for _, expr := range []string{"opacity", "opacity=a", "resize=1", "on_color=1,2,3", "reverse=1"} {
		if _, err := r.Parse(expr); err == nil {
			t.Errorf("Parse(%q) expected error", expr)
		}
	}
}

func TestRegistryCustom(t *testing.T) {
	r := NewRegistry()
	r.Register("half", fixed(0, func([]float64) (clips.Effect, error) {
		return func(c *clips.Clip) (*clips.Clip, error) { return c.Subclip(0, c.Duration()/2) }, nil
	}))

	if _, ok := r.Get("half"); !ok {
		t.Fatal("Get(half) not found")
	}
	effects, err := r.ParseAll([]string{"half", "mute"})
	if err != nil {
		t.Fatal(err)
	}
	out, err := gradient(t, 2, 2, 3).With(effects...)
	if err != nil {
		t.Fatal(err)
	}
	if out.Duration() != 1.5 {
		t.Errorf("Duration() = %v, want 1.5", out.Duration())
	}
}
