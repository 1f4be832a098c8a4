package params

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maelqr/video-compressor/internal/config"
	"github.com/maelqr/video-compressor/pkg/types"
)

// Containers whose extension is preserved on the output file. Anything else
// is rewritten as .mp4.
var knownContainerExts = []string{".mp4", ".m4v", ".mov", ".mkv", ".webm"}

// WriteTargetError reports that neither the source directory nor the
// fallback directory accepted a test write.
type WriteTargetError struct {
	Attempted []string
}

func (e *WriteTargetError) Error() string {
	return fmt.Sprintf("no writable output directory (tried: %s)",
		strings.Join(e.Attempted, ", "))
}

// dirWritable is swapped out in tests to simulate read-only directories.
var dirWritable = canWriteToDirectory

// resolveOutputPath picks the output directory (source directory, falling
// back to the user's Downloads directory) and builds a collision-free file
// name that encodes the chosen options.
func resolveOutputPath(opts config.Options) (string, error) {
	srcDir := filepath.Dir(opts.InputPath)
	outDir := srcDir
	if !dirWritable(outDir) {
		fallback := fallbackDir()
		if fallback == "" || !dirWritable(fallback) {
			return "", &WriteTargetError{Attempted: []string{srcDir, fallback}}
		}
		outDir = fallback
	}
	return uniquePath(filepath.Join(outDir, outputFileName(opts))), nil
}

// outputFileName tags the source stem with the non-default options, e.g.
// "clip_720p_30fps_1500kbps.mp4" or "clip_480p_24fps.gif".
func outputFileName(opts config.Options) string {
	base := filepath.Base(opts.InputPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	var parts []string
	if opts.Resolution != types.ResolutionSource {
		parts = append(parts, string(opts.Resolution))
	}
	if opts.FrameRate != types.FrameRateSource {
		parts = append(parts, fmt.Sprintf("%dfps", opts.FrameRate.Value()))
	}

	if opts.Kind == types.OutputGIF {
		tag := ""
		if len(parts) > 0 {
			tag = "_" + strings.Join(parts, "_")
		}
		return stem + tag + ".gif"
	}

	parts = append(parts, fmt.Sprintf("%dkbps", opts.VideoKbps))
	if !opts.KeepAudio {
		parts = append(parts, "noaudio")
	}

	outExt := ".mp4"
	for _, known := range knownContainerExts {
		if strings.EqualFold(ext, known) {
			outExt = ext
			break
		}
	}
	return stem + "_" + strings.Join(parts, "_") + outExt
}

// uniquePath appends " (N)" to the stem until the path does not exist.
func uniquePath(preferred string) string {
	if _, err := os.Stat(preferred); os.IsNotExist(err) {
		return preferred
	}
	ext := filepath.Ext(preferred)
	stem := strings.TrimSuffix(preferred, ext)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, counter, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// canWriteToDirectory verifies writability by creating and removing a
// probe file, since permission bits alone do not settle the question on
// every filesystem.
func canWriteToDirectory(dir string) bool {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false
	}
	probeFile := filepath.Join(dir, ".write_test.tmp")
	f, err := os.Create(probeFile)
	if err != nil {
		return false
	}
	f.Close()
	os.Remove(probeFile)
	return true
}

// fallbackDir is the user's Downloads directory, or empty when the home
// directory cannot be determined.
func fallbackDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Downloads")
}
