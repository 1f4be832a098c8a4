package config

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/maelqr/video-compressor/pkg/types"
)

// Options is the validated, immutable option set for a single compression
// request. Construct it with NewOptions; a zero Options is not valid.
type Options struct {
	InputPath  string
	Resolution types.Resolution
	FrameRate  types.FrameRate
	VideoKbps  int
	KeepAudio  bool
	Kind       types.OutputKind
}

// Tuning constants for estimation and encoding. The margin, under-drive
// factor, and GIF weight are empirical values carried over from field use;
// adjust them here rather than inline.
const (
	// MinVideoKbps and MaxVideoKbps bound the requested video bitrate.
	MinVideoKbps = 50
	MaxVideoKbps = 10000

	// DefaultVideoKbps is used when no bitrate is requested.
	DefaultVideoKbps = 1500

	// AudioKbps is the fixed AAC bitrate applied whenever audio is kept.
	AudioKbps = 128

	// EncoderUnderdrive is the fraction of the requested bitrate the
	// encoder actually targets, leaving headroom under the maxrate cap.
	EncoderUnderdrive = 0.97

	// SafetyMargin covers container overhead and encoder variance so the
	// video size estimate stays an upper bound.
	SafetyMargin = 1.05

	// GIFBytesPerFramePixel weighs the GIF size heuristic. GIF output has
	// no bitrate control, so the estimate is guidance only.
	GIFBytesPerFramePixel = 0.4
)

// NewOptions validates the per-request settings and returns an immutable
// Options value. Enum fields must be legal members; the bitrate must be
// positive and is clamped into [MinVideoKbps, MaxVideoKbps].
func NewOptions(inputPath string, res types.Resolution, fps types.FrameRate, videoKbps int, keepAudio bool, kind types.OutputKind) (Options, error) {
	if inputPath == "" {
		return Options{}, fmt.Errorf("input path is required")
	}
	if !slices.Contains(types.Resolutions(), res) {
		return Options{}, fmt.Errorf("unsupported resolution: %s", res)
	}
	if !slices.Contains(types.FrameRates(), fps) {
		return Options{}, fmt.Errorf("unsupported frame rate: %s", fps)
	}
	if !slices.Contains(types.OutputKinds(), kind) {
		return Options{}, fmt.Errorf("unsupported output kind: %s", kind)
	}
	if videoKbps <= 0 {
		return Options{}, fmt.Errorf("video bitrate must be positive, got %d", videoKbps)
	}
	if videoKbps < MinVideoKbps {
		videoKbps = MinVideoKbps
	}
	if videoKbps > MaxVideoKbps {
		videoKbps = MaxVideoKbps
	}

	return Options{
		InputPath:  inputPath,
		Resolution: res,
		FrameRate:  fps,
		VideoKbps:  videoKbps,
		KeepAudio:  keepAudio,
		Kind:       kind,
	}, nil
}
