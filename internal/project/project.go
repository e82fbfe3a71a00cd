package project

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kikiluvv/lazyclip/pkg/util"
)

// Load reads a project file. Unknown keys are rejected.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a YAML project.
func Parse(data []byte) (*Project, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Project
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty project")
		}
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Save writes the project as YAML.
func (p *Project) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the project structure. Clip level errors (bad slice
// bounds, effect arguments) surface when the project is built.
func (p *Project) Validate() error {
	if len(p.Timeline) == 0 {
		return fmt.Errorf("timeline is empty")
	}

	for name, s := range p.Sources {
		if err := s.validate(); err != nil {
			return fmt.Errorf("source %q: %w", name, err)
		}
	}

	for i, it := range p.Timeline {
		if _, ok := p.Sources[it.Source]; !ok {
			return fmt.Errorf("timeline[%d]: unknown source %q", i, it.Source)
		}
		if it.Index != "" && (it.Start != "" || it.End != "") {
			return fmt.Errorf("timeline[%d]: index and start/end are exclusive", i)
		}
		if err := checkTimes(it.Start, it.End); err != nil {
			return fmt.Errorf("timeline[%d]: %w", i, err)
		}
	}

	for i, o := range p.Overlays {
		if o.Source == "" {
			return fmt.Errorf("overlays[%d]: source is required", i)
		}
		if o.Opacity != nil && (*o.Opacity < 0 || *o.Opacity > 1) {
			return fmt.Errorf("overlays[%d]: opacity must be within [0, 1], got %g", i, *o.Opacity)
		}
		if err := checkTimes(o.Start, o.End); err != nil {
			return fmt.Errorf("overlays[%d]: %w", i, err)
		}
	}

	if p.Output.Path == "" {
		return fmt.Errorf("output.path is required")
	}
	switch p.Output.Format {
	case "", FormatVideo, FormatGIF, FormatImages:
	default:
		return fmt.Errorf("output.format must be %s, %s or %s, got %q", FormatVideo, FormatGIF, FormatImages, p.Output.Format)
	}
	if p.Output.FPS < 0 {
		return fmt.Errorf("output.fps must not be negative, got %g", p.Output.FPS)
	}
	return nil
}

func (s Source) validate() error {
	set := 0
	for _, ok := range []bool{s.Path != "", s.Image != "", len(s.Color) > 0} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one of path, image or color is required")
	}
	if len(s.Color) > 0 {
		if len(s.Color) != 3 {
			return fmt.Errorf("color needs r,g,b, got %d values", len(s.Color))
		}
		if len(s.Size) != 2 {
			return fmt.Errorf("color needs size [width, height]")
		}
	}
	if s.Path == "" && s.Duration == "" {
		return fmt.Errorf("duration is required for stills")
	}
	if s.Duration != "" {
		if _, err := util.ParseSeconds(s.Duration); err != nil {
			return fmt.Errorf("duration: %w", err)
		}
	}
	if s.FPS < 0 {
		return fmt.Errorf("fps must not be negative, got %g", s.FPS)
	}
	return nil
}

func checkTimes(start, end string) error {
	if start != "" {
		if _, err := util.ParseSeconds(start); err != nil {
			return fmt.Errorf("start: %w", err)
		}
	}
	if end != "" {
		if _, err := util.ParseSeconds(end); err != nil {
			return fmt.Errorf("end: %w", err)
		}
	}
	return nil
}

// OutputFormat returns the render format, inferred from the path when unset.
func (o Output) OutputFormat() string {
	switch {
	case o.Format != "":
		return o.Format
	case util.GetExtension(o.Path) == ".gif":
		return FormatGIF
	case strings.Contains(o.Path, "%"):
		return FormatImages
	default:
		return FormatVideo
	}
}
