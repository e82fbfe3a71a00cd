package frame

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// FromImage converts img to a 3-channel RGB frame of straight (not
// premultiplied) colors. Alpha is discarded; use AlphaFromImage to recover it
// as a mask.
func FromImage(img image.Image) Frame {
	b := img.Bounds()
	f := New(b.Dy(), b.Dx(), 3)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			f.Pix[i] = float64(c.R)
			f.Pix[i+1] = float64(c.G)
			f.Pix[i+2] = float64(c.B)
			i += 3
		}
	}
	return f
}

// AlphaFromImage returns the alpha channel of img as a 0..1 mask frame.
func AlphaFromImage(img image.Image) Frame {
	b := img.Bounds()
	f := New(b.Dy(), b.Dx(), 1)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			f.Pix[i] = float64(a) / 0xffff
			i++
		}
	}
	return f
}

// MaskFromImage reads the luminance of img as a 0..1 mask frame. It is the
// inverse of ToImage for 1-channel frames.
func MaskFromImage(img image.Image) Frame {
	b := img.Bounds()
	f := New(b.Dy(), b.Dx(), 1)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			f.Pix[i] = float64(g.Y) / 255
			i++
		}
	}
	return f
}

// ToImage renders the frame as an image. 1-channel frames are read as masks
// (0..1) and become *image.Gray, 3-channel frames become *image.RGBA and
// 4-channel frames, with straight alpha, become *image.NRGBA.
func (f Frame) ToImage() (image.Image, error) {
	switch f.Channels {
	case 1:
		img := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				img.SetGray(x, y, color.Gray{Y: toByte(f.At(y, x, 0) * 255)})
			}
		}
		return img, nil
	case 3:
		img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				img.SetRGBA(x, y, color.RGBA{
					R: toByte(f.At(y, x, 0)),
					G: toByte(f.At(y, x, 1)),
					B: toByte(f.At(y, x, 2)),
					A: 255,
				})
			}
		}
		return img, nil
	case 4:
		img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				img.SetNRGBA(x, y, color.NRGBA{
					R: toByte(f.At(y, x, 0)),
					G: toByte(f.At(y, x, 1)),
					B: toByte(f.At(y, x, 2)),
					A: toByte(f.At(y, x, 3)),
				})
			}
		}
		return img, nil
	default:
		return nil, fmt.Errorf("cannot render %d-channel frame as image", f.Channels)
	}
}

// WithAlpha returns a 4-channel frame holding the color channels of rgb and
// mask, a 0..1 single-channel frame of the same size, as 0..255 alpha.
func WithAlpha(rgb, mask Frame) (Frame, error) {
	if rgb.Channels < 3 || mask.Channels != 1 || rgb.Width != mask.Width || rgb.Height != mask.Height {
		return Frame{}, fmt.Errorf("cannot merge mask %s into %s", mask, rgb)
	}
	out := New(rgb.Height, rgb.Width, 4)
	for i := 0; i < rgb.Height*rgb.Width; i++ {
		copy(out.Pix[i*4:i*4+3], rgb.Pix[i*rgb.Channels:i*rgb.Channels+3])
		out.Pix[i*4+3] = mask.Pix[i] * 255
	}
	return out, nil
}

// RGB24 packs the first three channels as bytes, the layout ffmpeg expects for
// -pix_fmt rgb24.
func (f Frame) RGB24() ([]byte, error) {
	if f.Channels < 3 {
		return nil, fmt.Errorf("rgb24 needs at least 3 channels, got %d", f.Channels)
	}
	out := make([]byte, f.Height*f.Width*3)
	j := 0
	for i := 0; i < len(f.Pix); i += f.Channels {
		out[j] = toByte(f.Pix[i])
		out[j+1] = toByte(f.Pix[i+1])
		out[j+2] = toByte(f.Pix[i+2])
		j += 3
	}
	return out, nil
}

// FromRGB24 unpacks ffmpeg rgb24 raw video bytes.
func FromRGB24(height, width int, data []byte) (Frame, error) {
	if len(data) != height*width*3 {
		return Frame{}, fmt.Errorf("rgb24 buffer has %d bytes, want %d for %dx%d", len(data), height*width*3, width, height)
	}
	f := New(height, width, 3)
	for i, v := range data {
		f.Pix[i] = float64(v)
	}
	return f, nil
}

func toByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
