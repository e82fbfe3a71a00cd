package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Concurrency != 4 || cfg.FFmpeg.CRF != 23 || cfg.Output.GIFProgram != GIFProgramFFmpeg {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if _, err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lazyclip.yaml")
	data := `
concurrency: 8
ffmpeg:
  codec: libvpx
  crf: 30
output:
  fps: 24
  gif_program: imagemagick
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Concurrency != 8 || cfg.FFmpeg.Codec != "libvpx" || cfg.FFmpeg.CRF != 30 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Output.FPS != 24 || cfg.Output.GIFProgram != GIFProgramImageMagick {
		t.Errorf("output overrides not applied: %+v", cfg.Output)
	}
	// Unset keys keep their defaults.
	if cfg.FFmpeg.Preset != "medium" || cfg.Output.AudioSampleRate != 44100 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("concurrency: [1"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Output.TempFiles = true
	cfg.FFmpeg.Threads = 2

	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Output.TempFiles || back.FFmpeg.Threads != 2 {
		t.Errorf("round trip lost fields: %+v", back)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "negative concurrency", mutate: func(c *Config) { c.Concurrency = -1 }, wantErr: "concurrency"},
		{name: "crf out of range", mutate: func(c *Config) { c.FFmpeg.CRF = 60 }, wantErr: "crf"},
		{name: "negative threads", mutate: func(c *Config) { c.FFmpeg.Threads = -2 }, wantErr: "threads"},
		{name: "negative fps", mutate: func(c *Config) { c.Output.FPS = -1 }, wantErr: "fps"},
		{name: "zero sample rate", mutate: func(c *Config) { c.Output.AudioSampleRate = 0 }, wantErr: "audio_sample_rate"},
		{name: "unknown gif program", mutate: func(c *Config) { c.Output.GIFProgram = "gifsicle" }, wantErr: "gif_program"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			_, err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateWarnings(t *testing.T) {
	cfg := Default()
	cfg.Concurrency = 0
	cfg.TempDir = filepath.Join(t.TempDir(), "later")

	warnings, err := cfg.Validate()
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 2 {
		t.Errorf("warnings = %v, want 2", warnings)
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	cfg.TempDir = file
	if _, err := cfg.Validate(); err == nil {
		t.Error("expected error for temp_dir pointing at a file")
	}
}

func TestContext(t *testing.T) {
	cfg := Default()
	cfg.Concurrency = 16

	ctx := WithConfig(context.Background(), cfg)
	if FromContext(ctx) != cfg {
		t.Error("FromContext() did not return the stored config")
	}
	if got := FromContext(context.Background()); got.Concurrency != 4 {
		t.Errorf("FromContext() without config = %+v, want defaults", got)
	}
}
