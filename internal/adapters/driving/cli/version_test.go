package cli

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	original := version
	version = v
	t.Cleanup(func() { version = original })
}

func TestVersionCmd_Metadata(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
	assert.Equal(t, "Print the version number", versionCmd.Short)
	assert.NotNil(t, versionCmd.Flags().Lookup("json"))
}

func TestVersionCmd_PrintsVersion(t *testing.T) {
	for _, v := range []string{"dev", "1.4.0"} {
		t.Run(v, func(t *testing.T) {
			withVersion(t, v)

			out, err := executeCommand("version")

			require.NoError(t, err)
			assert.Contains(t, out, "docqa version "+v)
		})
	}
}

func TestVersionCmd_JSON(t *testing.T) {
	withVersion(t, "1.4.0")
	t.Cleanup(func() { versionJSON = false })

	out, err := executeCommand("version", "--json")
	require.NoError(t, err)

	var info buildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "1.4.0", info.Version)
	assert.Equal(t, runtime.Version(), info.Go)
}

func TestVersionCmd_RejectsArgs(t *testing.T) {
	_, err := executeCommand("version", "extra")
	assert.Error(t, err)
}
