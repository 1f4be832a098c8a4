package params

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/maelqr/video-compressor/internal/config"
	"github.com/maelqr/video-compressor/internal/probe"
	"github.com/maelqr/video-compressor/pkg/types"
)

// Step is a single ffmpeg invocation: one or two inputs, an output path,
// and the full output argument set.
type Step struct {
	Inputs       []string
	OutputPath   string
	OutputKwargs ffmpeg.KwArgs
}

// Plan is the derived invocation plan for one compression request. Video
// output is a single step; GIF output is a palette-generation step followed
// by a palette-application step.
type Plan struct {
	InputPath   string
	OutputPath  string
	PalettePath string
	Steps       []Step
}

// ArgString renders the plan's argument sets for display.
func (p *Plan) ArgString() string {
	var sb strings.Builder
	for i, step := range p.Steps {
		if i > 0 {
			sb.WriteString(" && ")
		}
		sb.WriteString(fmt.Sprintf("ffmpeg -i %s", strings.Join(step.Inputs, " -i ")))
		for k, v := range step.OutputKwargs {
			if v == "" {
				sb.WriteString(fmt.Sprintf(" -%s", k))
				continue
			}
			sb.WriteString(fmt.Sprintf(" -%s %v", k, v))
		}
		sb.WriteString(" " + step.OutputPath)
	}
	return sb.String()
}

// Derive maps the validated options and probed source info to a concrete
// invocation plan, including the resolved output path. It returns a
// *WriteTargetError when no writable output directory exists.
func Derive(opts config.Options, src *probe.SourceInfo) (*Plan, error) {
	outPath, err := resolveOutputPath(opts)
	if err != nil {
		return nil, err
	}

	if opts.Kind == types.OutputGIF {
		return gifPlan(opts, outPath), nil
	}
	return videoPlan(opts, outPath), nil
}

// videoPlan builds the single-step x264 plan. The encoder targets slightly
// under the requested bitrate while maxrate/bufsize cap instantaneous rate
// at the requested value, approximating constant-bitrate output.
func videoPlan(opts config.Options, outPath string) *Plan {
	planned := PlannedVideoKbps(opts.VideoKbps)

	outputKwargs := ffmpeg.KwArgs{
		"c:v":         "libx264",
		"pix_fmt":     "yuv420p",
		"profile:v":   "high",
		"preset":      "medium",
		"b:v":         fmt.Sprintf("%dk", planned),
		"maxrate":     fmt.Sprintf("%dk", opts.VideoKbps),
		"bufsize":     fmt.Sprintf("%dk", 2*opts.VideoKbps),
		"x264-params": "nal-hrd=cbr:force-cfr=1",
		"movflags":    "+faststart",
		"threads":     OptimalThreadCount(),
	}

	// "source" passes the probed resolution and frame rate through untouched.
	if opts.Resolution != types.ResolutionSource {
		outputKwargs["vf"] = scaleFilter(opts.Resolution)
	}
	if opts.FrameRate != types.FrameRateSource {
		outputKwargs["r"] = opts.FrameRate.Value()
	}

	if opts.KeepAudio {
		outputKwargs["c:a"] = "aac"
		outputKwargs["b:a"] = fmt.Sprintf("%dk", config.AudioKbps)
		outputKwargs["ac"] = 2
		outputKwargs["ar"] = 48000
	} else {
		outputKwargs["an"] = ""
	}

	return &Plan{
		InputPath:  opts.InputPath,
		OutputPath: outPath,
		Steps: []Step{{
			Inputs:       []string{opts.InputPath},
			OutputPath:   outPath,
			OutputKwargs: outputKwargs,
		}},
	}
}

// gifPlan builds the two-step palette plan. Bitrate and audio settings do
// not apply to GIF output; the frame filters alone size the result.
func gifPlan(opts config.Options, outPath string) *Plan {
	filters := gifFilters(opts)
	palettePath := filepath.Join(os.TempDir(),
		fmt.Sprintf("palette_%d.png", time.Now().UnixNano()))

	paletteFilter := "palettegen"
	if filters != "" {
		paletteFilter = filters + ",palettegen"
	}

	applyFilter := fmt.Sprintf("[0:v]%s[x];[x][1:v]paletteuse", filters)
	if filters == "" {
		applyFilter = "[0:v]fifo[x];[x][1:v]paletteuse"
	}

	return &Plan{
		InputPath:   opts.InputPath,
		OutputPath:  outPath,
		PalettePath: palettePath,
		Steps: []Step{
			{
				Inputs:       []string{opts.InputPath},
				OutputPath:   palettePath,
				OutputKwargs: ffmpeg.KwArgs{"vf": paletteFilter},
			},
			{
				Inputs:       []string{opts.InputPath, palettePath},
				OutputPath:   outPath,
				OutputKwargs: ffmpeg.KwArgs{"filter_complex": applyFilter},
			},
		},
	}
}

// gifFilters joins the frame-rate and scale filters for GIF output, empty
// when both options are "source".
func gifFilters(opts config.Options) string {
	var filters []string
	if opts.FrameRate != types.FrameRateSource {
		filters = append(filters, fmt.Sprintf("fps=%d", opts.FrameRate.Value()))
	}
	if opts.Resolution != types.ResolutionSource {
		filters = append(filters, scaleFilter(opts.Resolution))
	}
	return strings.Join(filters, ",")
}

// scaleFilter fixes the output height and lets ffmpeg compute a width that
// keeps the source aspect ratio, truncated to an even value for yuv420p.
func scaleFilter(res types.Resolution) string {
	return fmt.Sprintf("scale='trunc(oh*a/2)*2':%d", res.Height())
}

// PlannedVideoKbps is the bitrate the encoder actually targets: the
// requested rate scaled down by the under-drive factor, floored at the
// minimum legal rate.
func PlannedVideoKbps(requestedKbps int) int {
	planned := int(math.Floor(float64(requestedKbps) * config.EncoderUnderdrive))
	if planned < config.MinVideoKbps {
		planned = config.MinVideoKbps
	}
	return planned
}

// TargetDimensions returns the output frame size for the chosen resolution:
// the probed size for "source", otherwise the target height with a width
// derived from the source aspect ratio, truncated to even.
func TargetDimensions(res types.Resolution, src *probe.SourceInfo) (width, height int) {
	if res == types.ResolutionSource || src.Height == 0 {
		return src.Width, src.Height
	}
	height = res.Height()
	width = int(float64(height) * float64(src.Width) / float64(src.Height))
	width = width - (width % 2)
	return width, height
}

// OptimalThreadCount uses 75% of available cores to prevent overload.
func OptimalThreadCount() int {
	cpuCount := runtime.NumCPU()
	return int(math.Max(1, float64(cpuCount)*0.75))
}
