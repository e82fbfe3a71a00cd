package frame

import (
	"image"
	"image/color"
	"testing"
)

func testFrame(h, w, c int) Frame {
	f := New(h, w, c)
	for i := range f.Pix {
		f.Pix[i] = float64(i)
	}
	return f
}

func TestSolid(t *testing.T) {
	f := Solid(2, 3, 10, 20, 30)
	if f.Height != 2 || f.Width != 3 || f.Channels != 3 {
		t.Fatalf("unexpected shape %s", f)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			if f.At(y, x, 0) != 10 || f.At(y, x, 1) != 20 || f.At(y, x, 2) != 30 {
				t.Fatalf("pixel (%d,%d) = %v", x, y, f.Pix[f.Offset(y, x, 0):f.Offset(y, x, 3)])
			}
		}
	}
}

func TestCrop(t *testing.T) {
	f := testFrame(3, 4, 2)

	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		wantErr        bool
	}{
		{name: "drop last column", x0: 0, y0: 0, x1: 3, y1: 3},
		{name: "drop last row", x0: 0, y0: 0, x1: 4, y1: 2},
		{name: "interior", x0: 1, y0: 1, x1: 3, y1: 2},
		{name: "outside", x0: 0, y0: 0, x1: 5, y1: 3, wantErr: true},
		{name: "empty", x0: 2, y0: 0, x1: 2, y1: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.Crop(tt.x0, tt.y0, tt.x1, tt.y1)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Crop() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Width != tt.x1-tt.x0 || got.Height != tt.y1-tt.y0 || got.Channels != 2 {
				t.Fatalf("Crop() shape = %s", got)
			}
			for y := 0; y < got.Height; y++ {
				for x := 0; x < got.Width; x++ {
					for c := 0; c < 2; c++ {
						if got.At(y, x, c) != f.At(y+tt.y0, x+tt.x0, c) {
							t.Fatalf("Crop() sample (%d,%d,%d) mismatch", y, x, c)
						}
					}
				}
			}
		})
	}
}

func TestCropDoesNotAlias(t *testing.T) {
	f := testFrame(2, 2, 1)
	got, err := f.Crop(0, 0, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	got.Pix[0] = 99
	if f.Pix[0] == 99 {
		t.Fatal("crop shares storage with its source")
	}
}

func TestEqualWithin(t *testing.T) {
	a := Solid(1, 2, 1, 2, 3)
	b := a.Clone()
	b.Pix[0] += 1e-9

	if a.Equal(b) {
		t.Error("expected exact comparison to fail")
	}
	if !a.EqualWithin(b, 1e-6) {
		t.Error("expected tolerant comparison to succeed")
	}
	if a.Equal(Solid(2, 1, 1, 2, 3)) {
		t.Error("expected shape mismatch to compare unequal")
	}
}

func TestBlend(t *testing.T) {
	base := Solid(2, 2, 0, 0, 0)
	top := Solid(1, 1, 200, 100, 50)

	got, err := Blend(base, top, Solid(1, 1, 0.5), 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.At(1, 1, 0) != 100 || got.At(1, 1, 1) != 50 || got.At(1, 1, 2) != 25 {
		t.Errorf("blended pixel = %v", got.Pix[got.Offset(1, 1, 0):])
	}
	if got.At(0, 0, 0) != 0 {
		t.Errorf("pixel outside the overlay changed: %v", got.At(0, 0, 0))
	}
	if base.At(1, 1, 0) != 0 {
		t.Error("blend mutated base")
	}
}

func TestBlendOpaqueAndClipped(t *testing.T) {
	base := Solid(2, 2, 1)
	top := Solid(2, 2, 9)

	got, err := Blend(base, top, Frame{}, 1, -1)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1, 9, 1, 1}
	for i, v := range want {
		if got.Pix[i] != v {
			t.Fatalf("Pix = %v, want %v", got.Pix, want)
		}
	}
}

func TestBlendErrors(t *testing.T) {
	if _, err := Blend(Solid(2, 2, 0, 0, 0), Solid(1, 1, 0), Frame{}, 0, 0); err == nil {
		t.Error("expected channel mismatch error")
	}
	if _, err := Blend(Solid(2, 2, 0), Solid(1, 1, 0), Solid(2, 2, 1), 0, 0); err == nil {
		t.Error("expected mask shape error")
	}
}

func TestScaleAndMultiply(t *testing.T) {
	f := Solid(1, 2, 0.5)
	s := Scale(f, 0.5)
	if s.Pix[0] != 0.25 || f.Pix[0] != 0.5 {
		t.Errorf("Scale() = %v (source %v)", s.Pix, f.Pix)
	}

	m, err := Multiply(Solid(1, 2, 0.5), Solid(1, 2, 0.4))
	if err != nil {
		t.Fatal(err)
	}
	if m.Pix[1] != 0.2 {
		t.Errorf("Multiply() = %v", m.Pix)
	}

	sum, err := Add(Samples(1, 2), Samples(0.5, 0.5))
	if err != nil {
		t.Fatal(err)
	}
	if sum.Pix[0] != 1.5 || sum.Pix[1] != 2.5 {
		t.Errorf("Add() = %v", sum.Pix)
	}
}

func TestImageRoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(2, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	f := FromImage(img)
	if f.Width != 3 || f.Height != 2 || f.Channels != 3 {
		t.Fatalf("FromImage() shape = %s", f)
	}
	if f.At(1, 2, 0) != 10 || f.At(1, 2, 2) != 30 {
		t.Errorf("FromImage() pixel = %v", f.Pix[f.Offset(1, 2, 0):])
	}

	back, err := f.ToImage()
	if err != nil {
		t.Fatal(err)
	}
	r, g, b, _ := back.At(2, 1).RGBA()
	if r>>8 != 10 || g>>8 != 20 || b>>8 != 30 {
		t.Errorf("ToImage() pixel = %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestRGB24RoundTrip(t *testing.T) {
	f := Solid(2, 2, 1, 2, 300)
	data, err := f.RGB24()
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 12 || data[2] != 255 {
		t.Fatalf("RGB24() = %v", data)
	}

	back, err := FromRGB24(2, 2, data)
	if err != nil {
		t.Fatal(err)
	}
	if back.At(1, 1, 1) != 2 {
		t.Errorf("FromRGB24() = %v", back.Pix)
	}

	if _, err := FromRGB24(2, 2, data[:5]); err == nil {
		t.Error("expected short buffer error")
	}
}

func TestMaskImageRoundTrip(t *testing.T) {
	m := Solid(2, 2, 0.2)
	img, err := m.ToImage()
	if err != nil {
		t.Fatal(err)
	}
	back := MaskFromImage(img)
	if back.Channels != 1 || !back.EqualWithin(m, 1.0/255) {
		t.Errorf("MaskFromImage() = %s %v", back, back.Pix)
	}
}

func TestWithAlpha(t *testing.T) {
	rgba, err := WithAlpha(Solid(2, 3, 10, 20, 30), Solid(2, 3, 0.5))
	if err != nil {
		t.Fatal(err)
	}
	if rgba.Channels != 4 || rgba.At(1, 2, 2) != 30 || rgba.At(1, 2, 3) != 127.5 {
		t.Errorf("WithAlpha() = %s %v", rgba, rgba.Pix[rgba.Offset(1, 2, 0):])
	}

	img, err := rgba.ToImage()
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a>>8 != 128 {
		t.Errorf("alpha = %d, want 128", a>>8)
	}

	if _, err := WithAlpha(Solid(2, 3, 1, 2, 3), Solid(3, 3, 1)); err == nil {
		t.Error("expected size mismatch error")
	}
}
