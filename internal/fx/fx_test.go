package fx

import (
	"errors"
	"math"
	"testing"

	"github.com/kikiluvv/lazyclip/internal/clips"
	"github.com/kikiluvv/lazyclip/internal/frame"
)

// gradient is a w x h clip whose pixel (x, y) holds x in the first channel and
// y in the second.
func gradient(t *testing.T, w, h int, duration float64) *clips.Clip {
	t.Helper()
	c, err := clips.FromFunc(func(float64) (frame.Frame, error) {
		f := frame.New(h, w, 3)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				f.Pix[f.Offset(y, x, 0)] = float64(x)
				f.Pix[f.Offset(y, x, 1)] = float64(y)
			}
		}
		return f, nil
	}, duration)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func withMask(t *testing.T, c *clips.Clip, opacity float64) *clips.Clip {
	t.Helper()
	w, h, err := c.Size()
	if err != nil {
		t.Fatal(err)
	}
	m, err := clips.ColorMask(w, h, opacity, c.Duration())
	if err != nil {
		t.Fatal(err)
	}
	out, err := c.WithMask(m)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func frameAt(t *testing.T, c *clips.Clip, at float64) frame.Frame {
	t.Helper()
	f, err := c.GetFrame(at)
	if err != nil {
		t.Fatalf("GetFrame(%v) error = %v", at, err)
	}
	return f
}

func TestEvenSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{name: "odd width", w: 5, h: 4, wantW: 4, wantH: 4},
		{name: "odd height", w: 4, h: 3, wantW: 4, wantH: 2},
		{name: "both odd", w: 5, h: 3, wantW: 4, wantH: 2},
		{name: "already even", w: 4, h: 2, wantW: 4, wantH: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := withMask(t, gradient(t, tt.w, tt.h, 1), 0.5)
			out, err := EvenSize()(c)
			if err != nil {
				t.Fatal(err)
			}

			f := frameAt(t, out, 0.5)
			if f.Width != tt.wantW || f.Height != tt.wantH {
				t.Errorf("frame = %s, want %dx%d", f, tt.wantW, tt.wantH)
			}
			m := frameAt(t, out.Mask(), 0.5)
			if m.Width != f.Width || m.Height != f.Height {
				t.Errorf("mask = %s, frame = %s", m, f)
			}
		})
	}
}

func TestEvenSizeDropsLastColumn(t *testing.T) {
	c := gradient(t, 5, 4, 1)
	out, err := EvenSize()(c)
	if err != nil {
		t.Fatal(err)
	}

	f := frameAt(t, out, 0)
	src := frameAt(t, c, 0)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if f.At(y, x, 0) != src.At(y, x, 0) || f.At(y, x, 1) != src.At(y, x, 1) {
				t.Fatalf("pixel (%d, %d) moved", x, y)
			}
		}
	}
	if f.At(0, 3, 0) != 3 {
		t.Errorf("last kept column = %v, want 3", f.At(0, 3, 0))
	}
}

func TestEvenSizeTooSmall(t *testing.T) {
	if _, err := EvenSize()(gradient(t, 1, 3, 1)); !errors.Is(err, clips.ErrInvalidParameter) {
		t.Errorf("EvenSize(1x3) error = %v", err)
	}
}

func TestCrop(t *testing.T) {
	c := withMask(t, gradient(t, 6, 4, 1), 1)

	out, err := Crop(1, 1, 4, 3)(c)
	if err != nil {
		t.Fatal(err)
	}
	f := frameAt(t, out, 0)
	if f.Width != 3 || f.Height != 2 || f.At(0, 0, 0) != 1 || f.At(0, 0, 1) != 1 {
		t.Errorf("Crop() = %s %v", f, f.Pix[:3])
	}
	if m := frameAt(t, out.Mask(), 0); m.Width != 3 || m.Height != 2 {
		t.Errorf("mask = %s", m)
	}

	for _, r := range [][4]int{{-1, 0, 2, 2}, {0, 0, 7, 2}, {2, 0, 2, 2}} {
		if _, err := Crop(r[0], r[1], r[2], r[3])(c); !errors.Is(err, clips.ErrInvalidParameter) {
			t.Errorf("Crop(%v) error = %v", r, err)
		}
	}
}

func TestResize(t *testing.T) {
	c := withMask(t, gradient(t, 8, 6, 1), 0.4)

	out, err := Resize(4, 3)(c)
	if err != nil {
		t.Fatal(err)
	}
	f := frameAt(t, out, 0.2)
	if f.Width != 4 || f.Height != 3 || f.Channels != 3 {
		t.Fatalf("frame = %s, want 3x4x3", f)
	}
	m := frameAt(t, out.Mask(), 0.2)
	if m.Width != 4 || m.Height != 3 || m.Channels != 1 {
		t.Fatalf("mask = %s", m)
	}
	if math.Abs(m.Pix[0]-0.4) > 2.0/255 {
		t.Errorf("mask value = %v, want 0.4", m.Pix[0])
	}

	if _, err := Resize(0, 3)(c); !errors.Is(err, clips.ErrInvalidParameter) {
		t.Errorf("Resize(0, 3) error = %v", err)
	}
}

func TestOpacity(t *testing.T) {
	plain := gradient(t, 2, 2, 1)
	out, err := Opacity(0.25)(plain)
	if err != nil {
		t.Fatal(err)
	}
	if m := frameAt(t, out.Mask(), 0); m.Pix[0] != 0.25 {
		t.Errorf("new mask = %v, want 0.25", m.Pix[0])
	}

	out, err = Opacity(0.5)(withMask(t, plain, 0.5))
	if err != nil {
		t.Fatal(err)
	}
	if m := frameAt(t, out.Mask(), 0); m.Pix[0] != 0.25 {
		t.Errorf("scaled mask = %v, want 0.25", m.Pix[0])
	}

	if _, err := Opacity(1.5)(plain); !errors.Is(err, clips.ErrInvalidParameter) {
		t.Errorf("Opacity(1.5) error = %v", err)
	}
}

func TestOnColor(t *testing.T) {
	c, err := clips.Color(2, 2, [3]float64{255, 255, 255}, 1)
	if err != nil {
		t.Fatal(err)
	}
	c = c.WithFPS(24)

	out, err := OnColor(4, 4, [3]float64{0, 0, 0}, 1)(c)
	if err != nil {
		t.Fatal(err)
	}
	if fps, ok := out.FPS(); !ok || fps != 24 {
		t.Errorf("FPS() = %v, %v", fps, ok)
	}

	f := frameAt(t, out, 0)
	if f.Width != 4 || f.Height != 4 {
		t.Fatalf("frame = %s", f)
	}
	if f.At(0, 0, 0) != 0 || f.At(1, 1, 0) != 255 || f.At(2, 2, 0) != 255 || f.At(3, 3, 0) != 0 {
		t.Errorf("clip not centered: %v", f.Pix)
	}
	if out.Mask() != nil {
		t.Error("opaque background should not carry a mask")
	}

	faded, err := OnColor(4, 4, [3]float64{0, 0, 0}, 0.5)(c)
	if err != nil {
		t.Fatal(err)
	}
	if m := frameAt(t, faded.Mask(), 0); m.Pix[0] != 0.5 {
		t.Errorf("background opacity = %v, want 0.5", m.Pix[0])
	}
}

func TestVolume(t *testing.T) {
	a, err := clips.AudioFromFunc(func(float64) []float64 { return []float64{0.5, -0.5} }, 1, 44100)
	if err != nil {
		t.Fatal(err)
	}

	louder, err := Volume(2)(a)
	if err != nil {
		t.Fatal(err)
	}
	if f := frameAt(t, louder, 0.1); f.Pix[0] != 1 || f.Pix[1] != -1 {
		t.Errorf("audio clip samples = %v", f.Pix)
	}

	c, err := gradient(t, 2, 2, 1).WithAudio(a)
	if err != nil {
		t.Fatal(err)
	}
	quieter, err := Volume(0.5)(c)
	if err != nil {
		t.Fatal(err)
	}
	if f := frameAt(t, quieter.Audio(), 0.1); f.Pix[0] != 0.25 {
		t.Errorf("attached track sample = %v, want 0.25", f.Pix[0])
	}

	silent := gradient(t, 2, 2, 1)
	if out, err := Volume(3)(silent); err != nil || out != silent {
		t.Errorf("Volume() on a clip without audio = %v, %v", out, err)
	}
	if _, err := Volume(-1)(a); !errors.Is(err, clips.ErrInvalidParameter) {
		t.Errorf("Volume(-1) error = %v", err)
	}
}
