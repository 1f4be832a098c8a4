// Package estimate computes output size predictions before encoding runs.
// The video estimate is a guaranteed upper bound; the GIF estimate is a
// heuristic for guidance only, since GIF output has no bitrate control.
package estimate

import (
	"fmt"
	"math"

	"github.com/maelqr/video-compressor/internal/config"
	"github.com/maelqr/video-compressor/internal/params"
	"github.com/maelqr/video-compressor/internal/probe"
	"github.com/maelqr/video-compressor/pkg/types"
)

// Video returns the upper-bound output size in bytes for video output.
// The encoder under-drives the requested rate, so applying the safety
// margin on top keeps the bound strict even with container overhead.
func Video(durationSec float64, videoKbps int, keepAudio bool) int64 {
	planned := params.PlannedVideoKbps(videoKbps)
	totalKbps := planned
	if keepAudio {
		totalKbps += config.AudioKbps
	}
	baseBytes := durationSec * float64(totalKbps) * 1000.0 / 8.0
	return int64(math.Ceil(baseBytes * config.SafetyMargin))
}

// GIF returns the heuristic size in bytes for GIF output, scaling with
// frame count and output pixel count.
func GIF(durationSec, fps float64, width, height int) int64 {
	frames := durationSec * fps
	pixels := float64(width * height)
	return int64(math.Ceil(frames * pixels * config.GIFBytesPerFramePixel))
}

// ForOptions dispatches on the output kind, resolving "source" resolution
// and frame rate from the probed values.
func ForOptions(opts config.Options, src *probe.SourceInfo) int64 {
	if opts.Kind == types.OutputGIF {
		fps := src.FrameRate
		if opts.FrameRate != types.FrameRateSource {
			fps = float64(opts.FrameRate.Value())
		}
		width, height := params.TargetDimensions(opts.Resolution, src)
		return GIF(src.Duration, fps, width, height)
	}
	return Video(src.Duration, opts.VideoKbps, opts.KeepAudio)
}

// FormatSize renders a byte count in decimal units, the way sizes are
// shown to end users.
func FormatSize(bytes int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(bytes)
	for _, unit := range units {
		if size < 1000.0 {
			return fmt.Sprintf("%.2f %s", size, unit)
		}
		size /= 1000.0
	}
	return fmt.Sprintf("%.2f PB", size)
}
