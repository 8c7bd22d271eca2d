package misc

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildInfo(t *testing.T) {
	info := BuildInfo("Cordwood")

	require.Contains(t, info, "Cordwood\n")
	require.Contains(t, info, "Version: "+Version+"\n")
	require.Contains(t, info, "GoVersion: "+runtime.Version())
}
