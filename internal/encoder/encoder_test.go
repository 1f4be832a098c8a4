package encoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureAvailableMissingTools(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	err := EnsureAvailable()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEncoderUnavailable)
	assert.Contains(t, err.Error(), "alongside this executable",
		"remediation instructions surface to the user")
}

func TestNewFFmpegRunnerMissingTools(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := NewFFmpegRunner(nil)
	assert.ErrorIs(t, err, ErrEncoderUnavailable)
}
