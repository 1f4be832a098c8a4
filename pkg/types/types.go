package types

import "strconv"

// Resolution is the target output resolution. ResolutionSource keeps the
// probed source resolution untouched.
type Resolution string

const (
	ResolutionSource Resolution = "source"
	Resolution1080p  Resolution = "1080p"
	Resolution720p   Resolution = "720p"
	Resolution480p   Resolution = "480p"
	Resolution360p   Resolution = "360p"
	Resolution240p   Resolution = "240p"
)

// Resolutions returns the legal resolution values in display order.
func Resolutions() []Resolution {
	return []Resolution{
		ResolutionSource,
		Resolution1080p,
		Resolution720p,
		Resolution480p,
		Resolution360p,
		Resolution240p,
	}
}

// Height returns the target frame height in pixels, or 0 for ResolutionSource.
func (r Resolution) Height() int {
	if r == ResolutionSource {
		return 0
	}
	h, err := strconv.Atoi(string(r[:len(r)-1]))
	if err != nil {
		return 0
	}
	return h
}

// FrameRate is the target output frame rate. FrameRateSource keeps the
// probed source frame rate untouched.
type FrameRate string

const (
	FrameRateSource FrameRate = "source"
	FrameRate24     FrameRate = "24"
	FrameRate25     FrameRate = "25"
	FrameRate30     FrameRate = "30"
	FrameRate50     FrameRate = "50"
	FrameRate60     FrameRate = "60"
)

// FrameRates returns the legal frame rate values in display order.
func FrameRates() []FrameRate {
	return []FrameRate{
		FrameRateSource,
		FrameRate24,
		FrameRate25,
		FrameRate30,
		FrameRate50,
		FrameRate60,
	}
}

// Value returns the frame rate as an integer, or 0 for FrameRateSource.
func (f FrameRate) Value() int {
	if f == FrameRateSource {
		return 0
	}
	v, err := strconv.Atoi(string(f))
	if err != nil {
		return 0
	}
	return v
}

// OutputKind selects between a compressed video file and an animated GIF.
type OutputKind string

const (
	OutputVideo OutputKind = "video"
	OutputGIF   OutputKind = "gif"
)

// OutputKinds returns the legal output kinds.
func OutputKinds() []OutputKind {
	return []OutputKind{OutputVideo, OutputGIF}
}
