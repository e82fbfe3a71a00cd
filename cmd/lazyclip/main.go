package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kikiluvv/lazyclip/internal/config"
	"github.com/kikiluvv/lazyclip/internal/ffmpeg"
	"github.com/kikiluvv/lazyclip/internal/fx"
	"github.com/kikiluvv/lazyclip/internal/logging"
	"github.com/kikiluvv/lazyclip/internal/project"
	"github.com/kikiluvv/lazyclip/pkg/util"
)

var (
	cfgFile string
	verbose bool

	frameAt   string
	frameOut  string
	frameMask bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lazyclip",
	Short: "lazyclip - lazy, time-indexed clip editing",
	Long:  "Cut, reorder, retime and composite clips described in a YAML project, then render them with ffmpeg.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging
		logging.Init(verbose)

		// Load config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		warnings, err := cfg.Validate()
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		for _, w := range warnings {
			log.Warn().Msg(w)
		}

		// Store config in context
		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./lazyclip.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	frameCmd.Flags().StringVar(&frameAt, "at", "0", "time of the frame (seconds or HH:MM:SS.mmm)")
	frameCmd.Flags().StringVarP(&frameOut, "out", "o", "frame.png", "output image (.png or .jpg)")
	frameCmd.Flags().BoolVar(&frameMask, "with-mask", false, "write the mask as alpha (png only)")

	configCmd.AddCommand(configShowCmd)
	listCmd.AddCommand(listEffectsCmd)

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(frameCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(listCmd)
}

// newPipeline wires the ffmpeg executor into a project pipeline
func newPipeline(cmd *cobra.Command) (*project.Pipeline, error) {
	cfg := config.FromContext(cmd.Context())

	exec, err := ffmpeg.New(log.Logger, cfg.FFmpeg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
	}
	return project.New(log.Logger, cfg, exec, exec), nil
}

var renderCmd = &cobra.Command{
	Use:   "render [project file]",
	Short: "Render a project to its output",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		proj, err := project.Load(args[0])
		if err != nil {
			return err
		}

		pipe, err := newPipeline(cmd)
		if err != nil {
			return err
		}

		out, err := pipe.Render(cmd.Context(), proj)
		if err != nil {
			return err
		}

		log.Info().Str("output", out).Msg("render complete")
		return nil
	},
}

var frameCmd = &cobra.Command{
	Use:   "frame [project file]",
	Short: "Save a single frame of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := util.ParseSeconds(frameAt)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}

		proj, err := project.Load(args[0])
		if err != nil {
			return err
		}

		pipe, err := newPipeline(cmd)
		if err != nil {
			return err
		}

		return pipe.SaveFrame(cmd.Context(), proj, t, frameOut, frameMask)
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe [media file]",
	Short: "Show media file metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		exec, err := ffmpeg.New(log.Logger, cfg.FFmpeg)
		if err != nil {
			return err
		}

		info, err := exec.ProbeVideo(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "file:     %s\n", info.FilePath)
		fmt.Fprintf(out, "duration: %s\n", util.FormatDuration(info.Duration))
		if info.HasVideo {
			fmt.Fprintf(out, "video:    %s %dx%d @ %.3f fps\n", info.VideoCodec, info.Width, info.Height, info.FPS)
		}
		if info.HasAudio {
			fmt.Fprintf(out, "audio:    %s %d Hz x%d\n", info.AudioCodec, info.AudioSampleRate, info.AudioChannels)
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(config.FromContext(cmd.Context()))
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available resources",
}

var listEffectsCmd = &cobra.Command{
	Use:   "effects",
	Short: "List effects usable in project files",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range fx.NewRegistry().List() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}
