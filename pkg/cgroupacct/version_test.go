//go:build linux

package cgroupacct

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectVersion(t *testing.T) {
	ver, err := DetectVersion()
	require.NoError(t, err)
	t.Logf("detected %s", ver)
}
