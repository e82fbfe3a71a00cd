package util

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{in: "45.5", want: 45.5},
		{in: "0", want: 0},
		{in: "01:30", want: 90},
		{in: "01:02:03.250", want: 3723.25},
		{in: " 00:00:01 ", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSeconds(tt.in)
			if err != nil {
				t.Fatalf("ParseSeconds() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParseSeconds() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseSecondsErrors(t *testing.T) {
	for _, in := range []string{"", "abc", "1:2:3:4", "-5", "01:-3", "inf"} {
		if _, err := ParseSeconds(in); err == nil {
			t.Errorf("ParseSeconds(%q) expected error", in)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	d, err := ParseTimestamp("00:01:02.5")
	if err != nil {
		t.Fatal(err)
	}
	if d != 62500*time.Millisecond {
		t.Errorf("ParseTimestamp() = %v", d)
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 0, want: "00:00:00.000"},
		{in: 1.5, want: "00:00:01.500"},
		{in: 3723.25, want: "01:02:03.250"},
		{in: 59.9996, want: "00:01:00.000"},
	}
	for _, tt := range tests {
		if got := FormatSeconds(tt.in); got != tt.want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := FormatDuration(90 * time.Second); got != "00:01:30.000" {
		t.Errorf("FormatDuration() = %q", got)
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{in: "30/1", want: 30},
		{in: "30000/1001", want: 30000.0 / 1001},
		{in: "25", want: 25},
		{in: "0/0", want: 0},
		{in: "x/1", want: 0},
		{in: "1/2/3", want: 0},
		{in: "", want: 0},
	}
	for _, tt := range tests {
		if got := ParseFrameRate(tt.in); got != tt.want {
			t.Errorf("ParseFrameRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()

	sub := filepath.Join(dir, "a", "b")
	if err := EnsureDir(sub); err != nil {
		t.Fatal(err)
	}
	if !FileExists(sub) {
		t.Error("EnsureDir() did not create the directory")
	}

	f, err := TempFile(dir, "frame", ".png")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	if GetExtension(f.Name()) != ".png" {
		t.Errorf("temp file %s has wrong extension", f.Name())
	}

	tmp, err := TempDir(filepath.Join(dir, "t"), "seq")
	if err != nil {
		t.Fatal(err)
	}
	if !FileExists(tmp) {
		t.Error("TempDir() did not create the directory")
	}

	CleanupFiles(f.Name(), filepath.Join(dir, "missing"))
	if _, err := os.Stat(f.Name()); !os.IsNotExist(err) {
		t.Error("CleanupFiles() kept the file")
	}

	CleanupDir(tmp)
	if FileExists(tmp) {
		t.Error("CleanupDir() kept the directory")
	}

	if GetExtension("out.MP4") != ".mp4" {
		t.Error("GetExtension() should lower-case")
	}
}
