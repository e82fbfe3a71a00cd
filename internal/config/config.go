package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	TempDir     string `yaml:"temp_dir"`
	Concurrency int    `yaml:"concurrency"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// Output settings
	Output OutputConfig `yaml:"output"`
}

// FFmpegConfig locates the ffmpeg programs and sets encoder defaults.
type FFmpegConfig struct {
	BinaryPath  string `yaml:"binary_path"`
	ProbePath   string `yaml:"ffprobe_path"`
	Threads     int    `yaml:"threads"`
	Preset      string `yaml:"preset"`
	Codec       string `yaml:"codec"`
	AudioCodec  string `yaml:"audio_codec"`
	CRF         int    `yaml:"crf"`
	PixelFormat string `yaml:"pix_fmt"`
}

// OutputConfig holds render defaults used when a clip or project leaves them
// unset.
type OutputConfig struct {
	FPS             float64 `yaml:"fps"`
	GIFProgram      string  `yaml:"gif_program"`
	TempFiles       bool    `yaml:"temp_files"`
	AudioSampleRate int     `yaml:"audio_sample_rate"`
}

// GIF writer programs
const (
	GIFProgramFFmpeg      = "ffmpeg"
	GIFProgramImageMagick = "imagemagick"
)

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the configuration. Problems that make rendering impossible
// are returned as an error; the rest are reported as warnings.
func (c *Config) Validate() (warnings []string, err error) {
	if c == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if c.Concurrency < 0 {
		return warnings, fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	if c.FFmpeg.Threads < 0 {
		return warnings, fmt.Errorf("ffmpeg.threads must not be negative, got %d", c.FFmpeg.Threads)
	}
	if c.FFmpeg.CRF < 0 || c.FFmpeg.CRF > 51 {
		return warnings, fmt.Errorf("ffmpeg.crf must be between 0 and 51, got %d", c.FFmpeg.CRF)
	}
	if c.Output.FPS < 0 {
		return warnings, fmt.Errorf("output.fps must not be negative, got %g", c.Output.FPS)
	}
	if c.Output.AudioSampleRate <= 0 {
		return warnings, fmt.Errorf("output.audio_sample_rate must be positive, got %d", c.Output.AudioSampleRate)
	}
	switch c.Output.GIFProgram {
	case GIFProgramFFmpeg, GIFProgramImageMagick:
	default:
		return warnings, fmt.Errorf("output.gif_program must be %q or %q, got %q", GIFProgramFFmpeg, GIFProgramImageMagick, c.Output.GIFProgram)
	}

	if c.Concurrency == 0 {
		warnings = append(warnings, "concurrency is 0; frames will be rendered one at a time")
	}
	if c.TempDir != "" {
		if st, serr := os.Stat(c.TempDir); serr == nil && !st.IsDir() {
			return warnings, fmt.Errorf("temp_dir is not a directory: %s", c.TempDir)
		} else if serr != nil && !os.IsNotExist(serr) {
			return warnings, fmt.Errorf("cannot access temp_dir %s: %w", c.TempDir, serr)
		} else if serr != nil {
			warnings = append(warnings, fmt.Sprintf("temp_dir does not exist yet and will be created: %s", c.TempDir))
		}
	}

	return warnings, nil
}

func defaultConfig() *Config {
	return &Config{
		TempDir:     os.TempDir(),
		Concurrency: 4,
		FFmpeg: FFmpegConfig{
			BinaryPath:  "ffmpeg",
			ProbePath:   "ffprobe",
			Threads:     0,
			Preset:      "medium",
			AudioCodec:  "aac",
			CRF:         23,
			PixelFormat: "yuv420p",
		},
		Output: OutputConfig{
			FPS:             0,
			GIFProgram:      GIFProgramFFmpeg,
			TempFiles:       false,
			AudioSampleRate: 44100,
		},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

func findConfigFile() string {
	candidates := []string{
		"./lazyclip.yaml",
		"./lazyclip.yml",
		filepath.Join(os.Getenv("HOME"), ".lazyclip", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
