// Package encoder resolves the external ffmpeg toolchain and runs derived
// invocation plans, keeping the planning and estimation packages free of
// process execution.
package encoder

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"

	"github.com/maelqr/video-compressor/internal/params"
)

// ErrEncoderUnavailable is returned when ffmpeg or ffprobe cannot be found.
// The message carries the remediation shown to the user.
var ErrEncoderUnavailable = errors.New(
	"ffmpeg is not available: place ffmpeg and ffprobe alongside this executable, " +
		"or install FFmpeg and add it to the system PATH")

// Runner executes a derived plan against the external encoder.
type Runner interface {
	Run(plan *params.Plan) error
}

// FFmpegRunner runs plans through the ffmpeg binary.
type FFmpegRunner struct {
	logger *zap.Logger
}

// NewFFmpegRunner verifies the toolchain is available and returns a runner.
func NewFFmpegRunner(logger *zap.Logger) (*FFmpegRunner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := EnsureAvailable(); err != nil {
		return nil, err
	}
	return &FFmpegRunner{logger: logger}, nil
}

// Run executes the plan's steps in order. The intermediate palette file of
// a GIF plan is removed once the plan finishes, successfully or not.
func (r *FFmpegRunner) Run(plan *params.Plan) error {
	if plan.PalettePath != "" {
		defer os.Remove(plan.PalettePath)
	}
	for i, step := range plan.Steps {
		if err := r.runStep(step); err != nil {
			return errors.Wrapf(err, "encoding step %d/%d failed", i+1, len(plan.Steps))
		}
	}
	return nil
}

func (r *FFmpegRunner) runStep(step params.Step) error {
	var stream *ffmpeg.Stream
	if len(step.Inputs) == 1 {
		stream = ffmpeg.Input(step.Inputs[0]).
			Output(step.OutputPath, step.OutputKwargs)
	} else {
		inputs := make([]*ffmpeg.Stream, 0, len(step.Inputs))
		for _, in := range step.Inputs {
			inputs = append(inputs, ffmpeg.Input(in))
		}
		stream = ffmpeg.Output(inputs, step.OutputPath, step.OutputKwargs)
	}

	r.logger.Debug("running ffmpeg", zap.String("command", stream.String()))

	return stream.OverWriteOutput().ErrorToStdOut().Run()
}

// EnsureAvailable checks that ffmpeg and ffprobe resolve. Copies placed
// alongside the running executable take precedence over PATH: the
// executable's directory is prepended to PATH so that portable installs
// work without any system setup.
func EnsureAvailable() error {
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		if hasTool(exeDir, "ffmpeg") && hasTool(exeDir, "ffprobe") {
			os.Setenv("PATH", exeDir+string(os.PathListSeparator)+os.Getenv("PATH"))
		}
	}
	if lookPath("ffmpeg") == "" || lookPath("ffprobe") == "" {
		return ErrEncoderUnavailable
	}
	return nil
}

// lookPath resolves name on PATH, retrying with an explicit .exe suffix on
// Windows.
func lookPath(name string) string {
	if p, err := exec.LookPath(name); err == nil {
		return p
	}
	if runtime.GOOS == "windows" && !strings.HasSuffix(name, ".exe") {
		if p, err := exec.LookPath(name + ".exe"); err == nil {
			return p
		}
	}
	return ""
}

func hasTool(dir, name string) bool {
	if runtime.GOOS == "windows" && !strings.HasSuffix(name, ".exe") {
		name += ".exe"
	}
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
