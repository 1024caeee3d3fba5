package version

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, GitCommit, info.GitCommit)
}

func TestInfoString(t *testing.T) {
	info := Info{Version: "1.2.3", GitCommit: "abc123"}
	assert.Equal(t, "Version: 1.2.3, GitCommit: abc123", info.String())
}

func TestInfoJSON(t *testing.T) {
	info := Info{Version: "1.2.3", GitCommit: "abc123"}
	out, err := info.JSON()
	require.NoError(t, err)

	var parsed Info
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, info, parsed)
}
