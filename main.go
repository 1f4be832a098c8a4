package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/maelqr/video-compressor/internal/config"
	"github.com/maelqr/video-compressor/internal/encoder"
	"github.com/maelqr/video-compressor/internal/estimate"
	"github.com/maelqr/video-compressor/pkg/compressor"
	"github.com/maelqr/video-compressor/pkg/types"
)

var (
	rootCmd = &cobra.Command{
		Use:   "video-compressor",
		Short: "Compress a video file to a target bitrate or render it as a GIF",
		Long: fmt.Sprintf(`video-compressor shrinks a single video by re-encoding it with ffmpeg,
showing a conservative size estimate before the encode starts.

Supported resolutions: %s
Supported frame rates: %s

Examples:
  # Compress to 1500 kb/s keeping source resolution and frame rate
  video-compressor compress -i input.mp4 --bitrate 1500

  # 720p at 30 fps without audio
  video-compressor compress -i input.mp4 -r 720p -f 30 --bitrate 2000 --no-audio

  # Render a 480p 24 fps GIF
  video-compressor compress -i input.mp4 -r 480p -f 24 --gif

  # Show the size estimate only
  video-compressor estimate -i input.mp4 --bitrate 1500`,
			formatValues(types.Resolutions()), formatValues(types.FrameRates())),
	}

	compressCmd = &cobra.Command{
		Use:   "compress",
		Short: "Compress a video file",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, logger, err := optionsFromFlags(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			c, err := compressor.New(logger)
			if err != nil {
				return err
			}

			result, err := c.Compress(opts)
			if err != nil {
				return err
			}

			fmt.Printf("Done: %s (%s, estimated at most %s)\n",
				result.OutputPath,
				estimate.FormatSize(result.ActualBytes),
				estimate.FormatSize(result.EstimateBytes))
			return nil
		},
	}

	estimateCmd = &cobra.Command{
		Use:   "estimate",
		Short: "Show the output size estimate without encoding",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, logger, err := optionsFromFlags(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			c, err := compressor.New(logger)
			if err != nil {
				return err
			}

			est, err := c.Estimate(opts)
			if err != nil {
				return err
			}

			if est.UpperBound {
				fmt.Printf("Estimated maximum size: %s\n", estimate.FormatSize(est.Bytes))
			} else {
				fmt.Printf("Estimated size (heuristic, GIF output): %s\n", estimate.FormatSize(est.Bytes))
			}
			return nil
		},
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Verify that ffmpeg and ffprobe are available",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := encoder.EnsureAvailable(); err != nil {
				return err
			}
			fmt.Println("ffmpeg and ffprobe found")
			return nil
		},
	}
)

// optionsFromFlags reads the shared flag set into a validated Options value
// and builds the logger for the requested verbosity.
func optionsFromFlags(cmd *cobra.Command) (config.Options, *zap.Logger, error) {
	inputPath, _ := cmd.Flags().GetString("input")
	resolution, _ := cmd.Flags().GetString("resolution")
	frameRate, _ := cmd.Flags().GetString("fps")
	bitrate, _ := cmd.Flags().GetInt("bitrate")
	noAudio, _ := cmd.Flags().GetBool("no-audio")
	gif, _ := cmd.Flags().GetBool("gif")
	verbose, _ := cmd.Flags().GetBool("verbose")

	kind := types.OutputVideo
	if gif {
		kind = types.OutputGIF
	}

	opts, err := config.NewOptions(inputPath,
		types.Resolution(resolution), types.FrameRate(frameRate),
		bitrate, !noAudio, kind)
	if err != nil {
		return config.Options{}, nil, err
	}

	logger, err := buildLogger(verbose)
	if err != nil {
		return config.Options{}, nil, err
	}
	return opts, logger, nil
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func formatValues[T ~string](values []T) string {
	names := make([]string, 0, len(values))
	for _, v := range values {
		names = append(names, string(v))
	}
	return strings.Join(names, ", ")
}

func addCompressionFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", "", "Input video file")
	cmd.Flags().StringP("resolution", "r", string(types.ResolutionSource),
		fmt.Sprintf("Target resolution (%s)", formatValues(types.Resolutions())))
	cmd.Flags().StringP("fps", "f", string(types.FrameRateSource),
		fmt.Sprintf("Target frame rate (%s)", formatValues(types.FrameRates())))
	cmd.Flags().Int("bitrate", config.DefaultVideoKbps,
		fmt.Sprintf("Target video bitrate in kb/s (%d-%d, ignored for GIF)",
			config.MinVideoKbps, config.MaxVideoKbps))
	cmd.Flags().Bool("no-audio", false, "Drop the audio stream")
	cmd.Flags().Bool("gif", false, "Render an animated GIF instead of a video")
	cmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.MarkFlagRequired("input")
}

func init() {
	addCompressionFlags(compressCmd)
	addCompressionFlags(estimateCmd)

	rootCmd.AddCommand(compressCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
