package project

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/lazyclip/internal/clips"
	"github.com/kikiluvv/lazyclip/internal/config"
	"github.com/kikiluvv/lazyclip/internal/ffmpeg"
	"github.com/kikiluvv/lazyclip/internal/frame"
	"github.com/kikiluvv/lazyclip/internal/fx"
	"github.com/kikiluvv/lazyclip/internal/overlays"
	"github.com/kikiluvv/lazyclip/pkg/util"
)

// Pipeline turns projects into clip graphs and renders them
type Pipeline struct {
	logger  zerolog.Logger
	config  *config.Config
	decoder Decoder
	encoder Encoder
	effects *fx.Registry
}

// New creates a new pipeline instance. A nil config uses the defaults.
func New(logger zerolog.Logger, cfg *config.Config, dec Decoder, enc Encoder) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Pipeline{
		logger:  logger.With().Str("component", "pipeline").Logger(),
		config:  cfg,
		decoder: dec,
		encoder: enc,
		effects: fx.NewRegistry(),
	}
}

// Effects returns the registry used to resolve effect names. Custom effects
// registered on it are available to every project built afterwards.
func (p *Pipeline) Effects() *fx.Registry {
	return p.effects
}

// build holds per-Build state: source clips are opened once.
type build struct {
	*Pipeline
	project *Project
	opened  map[string]*clips.Clip
}

// Build resolves the project into a single lazy clip. No frame is decoded
// beyond what the stills and probes need.
func (p *Pipeline) Build(ctx context.Context, proj *Project) (*clips.Clip, error) {
	if proj == nil {
		return nil, fmt.Errorf("project cannot be nil")
	}
	if err := proj.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project: %w", err)
	}

	p.logger.Info().
		Str("project", proj.Name).
		Int("items", len(proj.Timeline)).
		Int("overlays", len(proj.Overlays)).
		Msg("building project")

	b := &build{Pipeline: p, project: proj, opened: make(map[string]*clips.Clip)}

	parts := make([]*clips.Clip, 0, len(proj.Timeline))
	for i, it := range proj.Timeline {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := b.item(ctx, it)
		if err != nil {
			return nil, fmt.Errorf("timeline[%d] (%s): %w", i, it.Source, err)
		}
		p.logger.Debug().
			Int("item", i).
			Str("source", it.Source).
			Float64("duration", c.Duration()).
			Msg("timeline item")
		parts = append(parts, c)
	}

	out, err := clips.Concat(parts...)
	if err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}

	if len(proj.Overlays) > 0 {
		if out, err = b.overlay(ctx, out); err != nil {
			return nil, err
		}
	}

	if out, err = b.apply(out, proj.Output.Effects); err != nil {
		return nil, fmt.Errorf("output effects: %w", err)
	}

	p.logger.Info().
		Str("project", proj.Name).
		Float64("duration", out.Duration()).
		Msg("project built")
	return out, nil
}

func (b *build) item(ctx context.Context, it Item) (*clips.Clip, error) {
	c, err := b.source(ctx, it.Source)
	if err != nil {
		return nil, err
	}

	switch {
	case it.Index != "":
		c, err = c.Slice(it.Index)
	case it.Start != "" || it.End != "":
		c, err = clips.Apply(c, clips.Window(bound(it.Start), bound(it.End)))
	}
	if err != nil {
		return nil, err
	}
	return b.apply(c, it.Effects)
}

// bound parses a validated timestamp; empty means open.
func bound(s string) clips.Bound {
	if s == "" {
		return clips.Bound{}
	}
	v, _ := util.ParseSeconds(s)
	return clips.At(v)
}

func (b *build) apply(c *clips.Clip, exprs []string) (*clips.Clip, error) {
	if len(exprs) == 0 {
		return c, nil
	}
	effects, err := b.effects.ParseAll(exprs)
	if err != nil {
		return nil, err
	}
	return c.With(effects...)
}

func (b *build) source(ctx context.Context, name string) (*clips.Clip, error) {
	if c, ok := b.opened[name]; ok {
		return c, nil
	}
	s, ok := b.project.Sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", name)
	}
	c, err := b.openSource(ctx, s)
	if err != nil {
		return nil, err
	}
	b.opened[name] = c
	return c, nil
}

func (b *build) openSource(ctx context.Context, s Source) (*clips.Clip, error) {
	var (
		c   *clips.Clip
		err error
	)
	switch {
	case s.Path != "":
		if b.decoder == nil {
			return nil, fmt.Errorf("no decoder configured for %s", s.Path)
		}
		c, err = b.decoder.OpenVideo(ctx, s.Path, ffmpeg.OpenOptions{
			Audio:      !s.NoAudio,
			SampleRate: b.config.Output.AudioSampleRate,
		})
	case s.Image != "":
		d, _ := util.ParseSeconds(s.Duration)
		c, err = loadImage(s.Image, d)
	default:
		d, _ := util.ParseSeconds(s.Duration)
		c, err = clips.Color(s.Size[0], s.Size[1], [3]float64{s.Color[0], s.Color[1], s.Color[2]}, d)
	}
	if err != nil {
		return nil, err
	}
	if s.FPS > 0 {
		c = c.WithFPS(s.FPS)
	}
	if s.NoAudio {
		c = c.WithoutAudio()
	}
	return c, nil
}

// loadImage reads a PNG or JPEG still. Transparent images get a mask from
// their alpha channel.
func loadImage(path string, duration float64) (*clips.Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	rgb := frame.FromImage(img)
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return clips.Image(rgb, duration)
	}
	rgba, err := frame.WithAlpha(rgb, frame.AlphaFromImage(img))
	if err != nil {
		return nil, err
	}
	return clips.Image(rgba, duration)
}

func (b *build) overlay(ctx context.Context, base *clips.Clip) (*clips.Clip, error) {
	registry := overlays.NewRegistry()
	for name, path := range b.project.Assets {
		registry.Register(name, path)
	}

	items := make([]overlays.Overlay, len(b.project.Overlays))
	for i, o := range b.project.Overlays {
		start, _ := util.ParseTimestamp(orZero(o.Start))
		end, _ := util.ParseTimestamp(orZero(o.End))
		items[i] = overlays.Overlay{
			Source:   o.Source,
			Start:    start,
			End:      end,
			Opacity:  o.Opacity,
			Position: overlays.Position{X: o.X, Y: o.Y},
		}
	}

	open := func(ctx context.Context, path string) (*clips.Clip, error) {
		if _, ok := b.project.Sources[path]; ok {
			return b.source(ctx, path)
		}
		switch util.GetExtension(path) {
		case ".png", ".jpg", ".jpeg":
			return loadImage(path, base.Duration())
		}
		if b.decoder == nil {
			return nil, fmt.Errorf("no decoder configured for %s", path)
		}
		return b.decoder.OpenVideo(ctx, path, ffmpeg.OpenOptions{})
	}

	return overlays.NewCompositor(b.logger, registry, open).Apply(ctx, base, items)
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// Render builds the project and writes it to its output path, returning that
// path.
func (p *Pipeline) Render(ctx context.Context, proj *Project) (string, error) {
	c, err := p.Build(ctx, proj)
	if err != nil {
		return "", err
	}

	out := proj.Output
	format := out.OutputFormat()
	fps := out.FPS
	if fps <= 0 {
		fps = p.config.Output.FPS
	}

	p.logger.Info().
		Str("project", proj.Name).
		Str("output", out.Path).
		Str("format", format).
		Msg("starting render")

	if format != FormatImages && p.encoder == nil {
		return "", fmt.Errorf("no encoder configured")
	}

	switch format {
	case FormatVideo:
		err = p.encoder.WriteVideo(ctx, c, out.Path, ffmpeg.WriteOptions{
			FPS:             fps,
			Codec:           out.Codec,
			AudioCodec:      out.AudioCodec,
			Preset:          out.Preset,
			CRF:             out.CRF,
			NoAudio:         out.NoAudio,
			AudioSampleRate: p.config.Output.AudioSampleRate,
			Concurrency:     p.config.Concurrency,
			TempDir:         p.config.TempDir,
			ProgressFunc:    p.logProgress,
		})
	case FormatGIF:
		err = p.encoder.WriteGIF(ctx, c, out.Path, ffmpeg.GIFOptions{
			FPS:         fps,
			Program:     p.config.Output.GIFProgram,
			TempFiles:   p.config.Output.TempFiles,
			Loop:        out.Loop,
			Concurrency: p.config.Concurrency,
			TempDir:     p.config.TempDir,
		})
	case FormatImages:
		var paths []string
		paths, err = ffmpeg.WriteImageSequence(ctx, c, out.Path, ffmpeg.SequenceOptions{
			FPS:         fps,
			WithMask:    out.WithMask,
			Concurrency: p.config.Concurrency,
		})
		if err == nil {
			p.logger.Info().Int("frames", len(paths)).Msg("image sequence written")
		}
	default:
		return "", fmt.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return "", fmt.Errorf("render %s: %w", out.Path, err)
	}

	p.logger.Info().
		Str("output", out.Path).
		Msg("render pipeline complete")
	return out.Path, nil
}

// SaveFrame builds the project and writes the frame at t to path.
func (p *Pipeline) SaveFrame(ctx context.Context, proj *Project, t float64, path string, withMask bool) error {
	c, err := p.Build(ctx, proj)
	if err != nil {
		return err
	}
	if err := ffmpeg.SaveFrame(c, t, path, withMask); err != nil {
		return err
	}
	p.logger.Info().Str("output", path).Float64("t", t).Msg("frame saved")
	return nil
}

func (p *Pipeline) logProgress(pr *ffmpeg.Progress) {
	p.logger.Debug().
		Int("frame", pr.Frame).
		Float64("percent", pr.Percentage).
		Str("speed", pr.Speed).
		Msg("render progress")
}
