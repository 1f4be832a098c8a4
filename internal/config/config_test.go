package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maelqr/video-compressor/pkg/types"
)

func TestNewOptionsValid(t *testing.T) {
	opts, err := NewOptions("/tmp/in.mp4", types.Resolution720p, types.FrameRate30, 1500, true, types.OutputVideo)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/in.mp4", opts.InputPath)
	assert.Equal(t, types.Resolution720p, opts.Resolution)
	assert.Equal(t, types.FrameRate30, opts.FrameRate)
	assert.Equal(t, 1500, opts.VideoKbps)
	assert.True(t, opts.KeepAudio)
	assert.Equal(t, types.OutputVideo, opts.Kind)
}

func TestNewOptionsRejectsBadValues(t *testing.T) {
	cases := []struct {
		name  string
		input string
		res   types.Resolution
		fps   types.FrameRate
		kbps  int
		kind  types.OutputKind
	}{
		{"empty input", "", types.ResolutionSource, types.FrameRateSource, 1500, types.OutputVideo},
		{"unknown resolution", "in.mp4", "2160p", types.FrameRateSource, 1500, types.OutputVideo},
		{"unknown frame rate", "in.mp4", types.ResolutionSource, "48", 1500, types.OutputVideo},
		{"unknown output kind", "in.mp4", types.ResolutionSource, types.FrameRateSource, 1500, "webp"},
		{"zero bitrate", "in.mp4", types.ResolutionSource, types.FrameRateSource, 0, types.OutputVideo},
		{"negative bitrate", "in.mp4", types.ResolutionSource, types.FrameRateSource, -100, types.OutputVideo},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewOptions(c.input, c.res, c.fps, c.kbps, true, c.kind)
			assert.Error(t, err)
		})
	}
}

func TestNewOptionsClampsBitrate(t *testing.T) {
	opts, err := NewOptions("in.mp4", types.ResolutionSource, types.FrameRateSource, 10, true, types.OutputVideo)
	require.NoError(t, err)
	assert.Equal(t, MinVideoKbps, opts.VideoKbps)

	opts, err = NewOptions("in.mp4", types.ResolutionSource, types.FrameRateSource, 50000, true, types.OutputVideo)
	require.NoError(t, err)
	assert.Equal(t, MaxVideoKbps, opts.VideoKbps)
}
