// Package compressor orchestrates a compression request: probe the source,
// derive encoder parameters, compute the size estimate, run the encoder.
package compressor

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/maelqr/video-compressor/internal/config"
	"github.com/maelqr/video-compressor/internal/encoder"
	"github.com/maelqr/video-compressor/internal/estimate"
	"github.com/maelqr/video-compressor/internal/params"
	"github.com/maelqr/video-compressor/internal/probe"
	"github.com/maelqr/video-compressor/pkg/types"
)

// Result reports the outcome of a finished compression.
type Result struct {
	OutputPath    string
	EstimateBytes int64
	ActualBytes   int64
}

// Estimation is a size prediction plus whether it is a guaranteed bound.
type Estimation struct {
	Bytes int64
	// UpperBound is true for video output. GIF estimates are heuristic.
	UpperBound bool
}

// Compressor ties the probing and encoding collaborators together. Both
// are interfaces so the pipeline is testable without spawning processes.
type Compressor struct {
	prober probe.Prober
	runner encoder.Runner
	logger *zap.Logger
}

// New builds a Compressor backed by the real ffmpeg toolchain. It fails
// with encoder.ErrEncoderUnavailable when ffmpeg or ffprobe is missing.
func New(logger *zap.Logger) (*Compressor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	runner, err := encoder.NewFFmpegRunner(logger)
	if err != nil {
		return nil, err
	}
	return &Compressor{
		prober: probe.NewFFprobeProber(logger),
		runner: runner,
		logger: logger,
	}, nil
}

// NewWithCollaborators wires explicit collaborators; used by tests.
func NewWithCollaborators(p probe.Prober, r encoder.Runner, logger *zap.Logger) *Compressor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compressor{prober: p, runner: r, logger: logger}
}

// Compress runs the full pipeline for one request and returns the output
// path, the pre-encode estimate, and the produced file size.
func (c *Compressor) Compress(opts config.Options) (*Result, error) {
	src, err := c.prober.Probe(opts.InputPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read source metadata")
	}

	plan, err := params.Derive(opts, src)
	if err != nil {
		return nil, err
	}

	est := estimate.ForOptions(opts, src)

	c.logger.Info("starting compression",
		zap.String("input", opts.InputPath),
		zap.String("output", plan.OutputPath),
		zap.String("estimated_size", estimate.FormatSize(est)),
		zap.Bool("upper_bound", opts.Kind != types.OutputGIF),
	)
	c.logger.Debug("derived plan", zap.String("args", plan.ArgString()))

	if err := c.runner.Run(plan); err != nil {
		return nil, err
	}

	result := &Result{OutputPath: plan.OutputPath, EstimateBytes: est}
	if info, err := os.Stat(plan.OutputPath); err == nil {
		result.ActualBytes = info.Size()
	}

	c.logger.Info("compression finished",
		zap.String("output", result.OutputPath),
		zap.String("size", estimate.FormatSize(result.ActualBytes)),
	)
	return result, nil
}

// Estimate probes the source and returns the size prediction without
// encoding anything.
func (c *Compressor) Estimate(opts config.Options) (*Estimation, error) {
	src, err := c.prober.Probe(opts.InputPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read source metadata")
	}
	return &Estimation{
		Bytes:      estimate.ForOptions(opts, src),
		UpperBound: opts.Kind != types.OutputGIF,
	}, nil
}
