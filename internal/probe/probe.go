package probe

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
)

// SourceInfo holds the probed properties of a source video that estimation
// and parameter derivation depend on.
type SourceInfo struct {
	Duration  float64
	Width     int
	Height    int
	FrameRate float64
}

// Prober reports the properties of a source file. Probing failures abort the
// request before any estimate is produced.
type Prober interface {
	Probe(inputPath string) (*SourceInfo, error)
}

// FFprobeProber probes files with ffprobe.
type FFprobeProber struct {
	logger *zap.Logger
}

// NewFFprobeProber creates an ffprobe-backed prober.
func NewFFprobeProber(logger *zap.Logger) *FFprobeProber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FFprobeProber{logger: logger}
}

// Probe runs ffprobe on inputPath and parses the JSON output.
func (p *FFprobeProber) Probe(inputPath string) (*SourceInfo, error) {
	raw, err := ffmpeg.Probe(inputPath)
	if err != nil {
		return nil, errors.Wrap(err, "error probing video")
	}

	info, err := parseProbeOutput(raw)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("probed source",
		zap.String("input", inputPath),
		zap.Float64("duration", info.Duration),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height),
		zap.Float64("fps", info.FrameRate),
	)
	return info, nil
}

// parseProbeOutput extracts duration, dimensions, and frame rate from raw
// ffprobe JSON. Duration is taken from the video stream when present, then
// the container format, then derived from nb_frames and r_frame_rate.
func parseProbeOutput(raw string) (*SourceInfo, error) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, errors.WithStack(err)
	}

	streams, ok := data["streams"].([]interface{})
	if !ok || len(streams) == 0 {
		return nil, fmt.Errorf("no streams found in video")
	}

	var videoStream map[string]interface{}
	for _, stream := range streams {
		s, ok := stream.(map[string]interface{})
		if !ok {
			continue
		}
		if codecType, _ := s["codec_type"].(string); codecType == "video" {
			videoStream = s
			break
		}
	}

	if videoStream == nil {
		return nil, fmt.Errorf("no video stream found")
	}

	var duration float64

	// First try video stream duration
	if durationStr, ok := videoStream["duration"].(string); ok {
		if d, err := strconv.ParseFloat(strings.TrimSpace(durationStr), 64); err == nil {
			duration = d
		}
	}

	// If stream duration is not available, try format duration
	if duration == 0 {
		if format, ok := data["format"].(map[string]interface{}); ok {
			if durationStr, ok := format["duration"].(string); ok {
				if d, err := strconv.ParseFloat(strings.TrimSpace(durationStr), 64); err == nil {
					duration = d
				}
			}
		}
	}

	frameRate := parseFrameRate(videoStream)

	// If still no duration found, try calculating from frames and frame rate
	if duration == 0 && frameRate > 0 {
		if nbFrames, ok := videoStream["nb_frames"].(string); ok {
			if frames, err := strconv.ParseFloat(nbFrames, 64); err == nil {
				duration = frames / frameRate
			}
		}
	}

	if duration == 0 {
		return nil, fmt.Errorf("could not determine video duration")
	}

	width, _ := videoStream["width"].(float64)
	height, _ := videoStream["height"].(float64)
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("could not determine video dimensions")
	}

	return &SourceInfo{
		Duration:  duration,
		Width:     int(width),
		Height:    int(height),
		FrameRate: frameRate,
	}, nil
}

// parseFrameRate reads avg_frame_rate (falling back to r_frame_rate) in
// ffprobe's "num/den" form.
func parseFrameRate(videoStream map[string]interface{}) float64 {
	for _, key := range []string{"avg_frame_rate", "r_frame_rate"} {
		rateStr, ok := videoStream[key].(string)
		if !ok {
			continue
		}
		nums := strings.Split(rateStr, "/")
		if len(nums) != 2 {
			continue
		}
		num, err1 := strconv.ParseFloat(nums[0], 64)
		den, err2 := strconv.ParseFloat(nums[1], 64)
		if err1 == nil && err2 == nil && den != 0 && num > 0 {
			return num / den
		}
	}
	return 0
}
