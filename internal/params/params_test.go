package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maelqr/video-compressor/internal/config"
	"github.com/maelqr/video-compressor/internal/probe"
	"github.com/maelqr/video-compressor/pkg/types"
)

func testSource() *probe.SourceInfo {
	return &probe.SourceInfo{Duration: 60, Width: 1920, Height: 1080, FrameRate: 30}
}

func testInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	return path
}

func videoOpts(t *testing.T, res types.Resolution, fps types.FrameRate, kbps int, keepAudio bool) config.Options {
	t.Helper()
	opts, err := config.NewOptions(testInput(t), res, fps, kbps, keepAudio, types.OutputVideo)
	require.NoError(t, err)
	return opts
}

func TestDeriveVideoPlan(t *testing.T) {
	opts := videoOpts(t, types.Resolution720p, types.FrameRate30, 2000, true)

	plan, err := Derive(opts, testSource())
	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)

	kwargs := plan.Steps[0].OutputKwargs
	assert.Equal(t, "libx264", kwargs["c:v"])
	assert.Equal(t, "1940k", kwargs["b:v"], "encoder target is 97%% of requested")
	assert.Equal(t, "2000k", kwargs["maxrate"])
	assert.Equal(t, "4000k", kwargs["bufsize"])
	assert.Equal(t, "nal-hrd=cbr:force-cfr=1", kwargs["x264-params"])
	assert.Equal(t, "scale='trunc(oh*a/2)*2':720", kwargs["vf"])
	assert.Equal(t, 30, kwargs["r"])
	assert.Equal(t, "aac", kwargs["c:a"])
	assert.Equal(t, "128k", kwargs["b:a"])
	assert.NotContains(t, kwargs, "an")
}

func TestDeriveSourcePassthrough(t *testing.T) {
	opts := videoOpts(t, types.ResolutionSource, types.FrameRateSource, 1500, true)

	plan, err := Derive(opts, testSource())
	require.NoError(t, err)

	kwargs := plan.Steps[0].OutputKwargs
	assert.NotContains(t, kwargs, "vf", "source resolution adds no scale filter")
	assert.NotContains(t, kwargs, "r", "source frame rate adds no rate filter")
}

func TestDeriveNoAudio(t *testing.T) {
	opts := videoOpts(t, types.ResolutionSource, types.FrameRateSource, 1500, false)

	plan, err := Derive(opts, testSource())
	require.NoError(t, err)

	kwargs := plan.Steps[0].OutputKwargs
	assert.Contains(t, kwargs, "an")
	assert.NotContains(t, kwargs, "c:a")
	assert.NotContains(t, kwargs, "b:a")
}

func TestDeriveGIFPlan(t *testing.T) {
	opts, err := config.NewOptions(testInput(t), types.Resolution480p, types.FrameRate24,
		9999, true, types.OutputGIF)
	require.NoError(t, err)

	plan, err := Derive(opts, testSource())
	require.NoError(t, err)
	require.Len(t, plan.Steps, 2)
	assert.NotEmpty(t, plan.PalettePath)

	palette := plan.Steps[0]
	assert.Equal(t, plan.PalettePath, palette.OutputPath)
	assert.Equal(t, "fps=24,scale='trunc(oh*a/2)*2':480,palettegen", palette.OutputKwargs["vf"])

	apply := plan.Steps[1]
	assert.Equal(t, []string{opts.InputPath, plan.PalettePath}, apply.Inputs)
	assert.Equal(t, "[0:v]fps=24,scale='trunc(oh*a/2)*2':480[x];[x][1:v]paletteuse",
		apply.OutputKwargs["filter_complex"])

	// GIF output never carries bitrate or audio arguments.
	for _, step := range plan.Steps {
		for _, key := range []string{"b:v", "maxrate", "bufsize", "b:a", "c:a", "an"} {
			assert.NotContains(t, step.OutputKwargs, key)
		}
	}
	assert.Equal(t, ".gif", filepath.Ext(plan.OutputPath))
}

func TestDeriveGIFSourceEverything(t *testing.T) {
	opts, err := config.NewOptions(testInput(t), types.ResolutionSource, types.FrameRateSource,
		1500, true, types.OutputGIF)
	require.NoError(t, err)

	plan, err := Derive(opts, testSource())
	require.NoError(t, err)

	assert.Equal(t, "palettegen", plan.Steps[0].OutputKwargs["vf"])
	assert.Equal(t, "[0:v]fifo[x];[x][1:v]paletteuse",
		plan.Steps[1].OutputKwargs["filter_complex"])
}

func TestPlannedVideoKbps(t *testing.T) {
	assert.Equal(t, 1940, PlannedVideoKbps(2000))
	assert.Equal(t, 1455, PlannedVideoKbps(1500))
	assert.Equal(t, config.MinVideoKbps, PlannedVideoKbps(config.MinVideoKbps),
		"under-drive never goes below the minimum rate")
}

func TestTargetDimensions(t *testing.T) {
	src := testSource()

	w, h := TargetDimensions(types.ResolutionSource, src)
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)

	w, h = TargetDimensions(types.Resolution480p, src)
	assert.Equal(t, 852, w, "width follows source aspect, truncated to even")
	assert.Equal(t, 480, h)

	portrait := &probe.SourceInfo{Width: 1080, Height: 1920}
	w, h = TargetDimensions(types.Resolution720p, portrait)
	assert.Equal(t, 404, w)
	assert.Equal(t, 720, h)
}

func TestOptimalThreadCount(t *testing.T) {
	assert.GreaterOrEqual(t, OptimalThreadCount(), 1)
}
