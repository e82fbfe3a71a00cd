package project

import (
	"context"

	"github.com/kikiluvv/lazyclip/internal/clips"
	"github.com/kikiluvv/lazyclip/internal/ffmpeg"
)

// Project is an edit decision list: named sources, a timeline of cuts taken
// from them, overlays drawn over the result and the output to render.
type Project struct {
	Name     string            `yaml:"name"`
	Sources  map[string]Source `yaml:"sources"`
	Timeline []Item            `yaml:"timeline"`
	Overlays []OverlayItem     `yaml:"overlays,omitempty"`
	// Assets maps overlay names to files, so overlays can refer to them by
	// name.
	Assets map[string]string `yaml:"assets,omitempty"`
	Output Output            `yaml:"output"`
}

// Source is one input of the timeline. Exactly one of Path, Image and Color
// is set.
type Source struct {
	// Path is a video file decoded with ffmpeg.
	Path string `yaml:"path,omitempty"`
	// Image is a PNG or JPEG still. Its alpha channel becomes the mask.
	Image string `yaml:"image,omitempty"`
	// Color is a solid r,g,b clip of Size.
	Color []float64 `yaml:"color,omitempty"`
	Size  []int     `yaml:"size,omitempty"`
	// Duration is required for images and colors, as seconds or HH:MM:SS.
	Duration string  `yaml:"duration,omitempty"`
	FPS      float64 `yaml:"fps,omitempty"`
	NoAudio  bool    `yaml:"no_audio,omitempty"`
}

// Item is one timeline entry. Index takes a slice expression ("1:3",
// "::-1", "0:1, 2:3"); Start and End cut a window instead. Effects are
// applied in order after the cut.
type Item struct {
	Source  string   `yaml:"source"`
	Index   string   `yaml:"index,omitempty"`
	Start   string   `yaml:"start,omitempty"`
	End     string   `yaml:"end,omitempty"`
	Effects []string `yaml:"effects,omitempty"`
}

// OverlayItem places an asset over the timeline. Source is an asset name, a
// source name or a file path.
type OverlayItem struct {
	Source string `yaml:"source"`
	Start  string `yaml:"start,omitempty"`
	End    string `yaml:"end,omitempty"`
	// Opacity is opaque when unset; an explicit 0 hides the overlay.
	Opacity *float64 `yaml:"opacity,omitempty"`
	X       int      `yaml:"x,omitempty"`
	Y       int      `yaml:"y,omitempty"`
}

// Output formats
const (
	FormatVideo  = "video"
	FormatGIF    = "gif"
	FormatImages = "images"
)

// Output configures the render. Zero values fall back to the application
// configuration.
type Output struct {
	Path string `yaml:"path"`
	// Format is video, gif or images. Empty picks gif for .gif paths, images
	// for printf patterns and video otherwise.
	Format     string   `yaml:"format,omitempty"`
	FPS        float64  `yaml:"fps,omitempty"`
	Codec      string   `yaml:"codec,omitempty"`
	AudioCodec string   `yaml:"audio_codec,omitempty"`
	Preset     string   `yaml:"preset,omitempty"`
	CRF        int      `yaml:"crf,omitempty"`
	NoAudio    bool     `yaml:"no_audio,omitempty"`
	WithMask   bool     `yaml:"with_mask,omitempty"`
	Loop       int      `yaml:"loop,omitempty"`
	Effects    []string `yaml:"effects,omitempty"`
}

// Decoder opens media files as clips.
type Decoder interface {
	OpenVideo(ctx context.Context, path string, opts ffmpeg.OpenOptions) (*clips.Clip, error)
}

// Encoder writes clips to media files.
type Encoder interface {
	WriteVideo(ctx context.Context, c *clips.Clip, output string, opts ffmpeg.WriteOptions) error
	WriteGIF(ctx context.Context, c *clips.Clip, output string, opts ffmpeg.GIFOptions) error
}
