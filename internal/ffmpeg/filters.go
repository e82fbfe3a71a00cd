package ffmpeg

import "strings"

// FilterBuilder helps construct ffmpeg filter chains for the GIF writer
type FilterBuilder struct {
	filters []string
}

// NewFilterBuilder creates a new filter builder
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{
		filters: make([]string, 0),
	}
}

// FPS adds an fps filter
func (fb *FilterBuilder) FPS(fps float64) *FilterBuilder {
	if fps <= 0 {
		return fb
	}
	fb.filters = append(fb.filters, "fps="+formatRate(fps))
	return fb
}

// Palette generates a palette from the stream and maps the stream onto it.
// This is the two-pass GIF quantisation done in one graph.
func (fb *FilterBuilder) Palette() *FilterBuilder {
	fb.filters = append(fb.filters, "split[a][b];[a]palettegen[p];[b][p]paletteuse")
	return fb
}

// Build returns the complete filter string joined with commas
func (fb *FilterBuilder) Build() string {
	if len(fb.filters) == 0 {
		return ""
	}
	return strings.Join(fb.filters, ",")
}
