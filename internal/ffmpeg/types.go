package ffmpeg

import (
	"io"
	"time"
)

// VideoInfo contains metadata about a media file
type VideoInfo struct {
	FilePath        string
	Duration        time.Duration
	Width           int
	Height          int
	FPS             float64
	Bitrate         int64
	VideoCodec      string
	HasVideo        bool
	HasAudio        bool
	AudioCodec      string
	AudioBitrate    int64
	AudioSampleRate int
	AudioChannels   int
}

// Seconds returns the duration in seconds.
func (v *VideoInfo) Seconds() float64 {
	return v.Duration.Seconds()
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame      int
	FPS        float64
	Bitrate    string
	Time       string
	Speed      string
	Percentage float64
}

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args []string
	// Stdin, when set, is connected to the process standard input.
	Stdin           io.Reader
	ProgressHandler func(*Progress)
	LogHandler      func(line string)
}

// Default encoding settings
const (
	DefaultCRF         = 23
	DefaultPreset      = "medium"
	DefaultAudioCodec  = "aac"
	DefaultPixelFormat = "yuv420p"
	DefaultSampleRate  = 44100
)

// ProgressFunc is a callback for progress updates during ffmpeg operations.
// Called periodically with progress information as the operation executes.
type ProgressFunc func(*Progress)

// WriteOptions configures WriteVideo. Zero values fall back to the clip (fps)
// or to the executor configuration.
type WriteOptions struct {
	FPS         float64
	Codec       string
	AudioCodec  string
	Preset      string
	CRF         int
	PixelFormat string
	// NoAudio skips the audio track even when the clip has one.
	NoAudio         bool
	AudioSampleRate int
	// Concurrency bounds the number of frames rendered at once.
	Concurrency  int
	TempDir      string
	ProgressFunc ProgressFunc
	ExtraArgs    []string
}

// GIFOptions configures WriteGIF.
type GIFOptions struct {
	FPS float64
	// Program is "ffmpeg" or "imagemagick".
	Program string
	// TempFiles writes frames to PNG files first instead of piping them.
	// ImageMagick always uses temp files.
	TempFiles bool
	// Loop is the number of extra plays; 0 loops forever.
	Loop        int
	Concurrency int
	TempDir     string
}

// OpenOptions configures OpenVideo.
type OpenOptions struct {
	// Audio decodes and attaches the audio stream when the file has one.
	Audio      bool
	SampleRate int
}
