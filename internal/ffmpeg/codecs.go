package ffmpeg

import (
	"errors"
	"fmt"

	"github.com/kikiluvv/lazyclip/pkg/util"
)

var (
	// ErrUnknownCodec is returned when no codec is given and none is associated
	// with the output file extension.
	ErrUnknownCodec = errors.New("couldn't find the codec associated with the filename, provide the codec option")
	// ErrNoFPS is returned when neither the clip nor the options define a frame
	// rate.
	ErrNoFPS = errors.New("no fps given and the clip has none")
	// ErrUnknownProgram is returned for an unsupported GIF writer program.
	ErrUnknownProgram = errors.New("unknown program")
)

var extensionCodecs = map[string]string{
	".mp4":  "libx264",
	".mkv":  "libx264",
	".mov":  "libx264",
	".webm": "libvpx",
	".ogv":  "libtheora",
	".avi":  "png",
}

// CodecForPath returns the video codec associated with the extension of path.
func CodecForPath(path string) (string, error) {
	ext := util.GetExtension(path)
	if codec, ok := extensionCodecs[ext]; ok {
		return codec, nil
	}
	return "", fmt.Errorf("%w (extension %q)", ErrUnknownCodec, ext)
}

// codecArgs returns the output arguments for a video codec. Rate control
// flags are only passed to encoders that understand them.
func codecArgs(codec, preset string, crf int, pixFmt string) []string {
	args := []string{"-c:v", codec}
	switch codec {
	case "libx264", "libx265":
		args = append(args, "-preset", preset, "-crf", fmt.Sprintf("%d", crf))
	case "libvpx", "libvpx-vp9":
		args = append(args, "-crf", fmt.Sprintf("%d", crf), "-b:v", "0")
	}
	if codec != "png" && pixFmt != "" {
		args = append(args, "-pix_fmt", pixFmt)
	}
	return args
}
