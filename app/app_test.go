package app

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCommand(t *testing.T) {
	etc, err := filepath.Abs("../etc")
	require.NoError(t, err)

	t.Setenv("ZYMPTEK_IDENTITY_SERVICEROLEKEY", "service-secret")

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"config", "--config", etc + string(filepath.Separator)})

	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, Execute())

	assert.Contains(t, out.String(), `"Title": "Zymptek API"`)
	assert.Contains(t, out.String(), `"ServiceRoleKey": "********"`)
	assert.NotContains(t, out.String(), "service-secret")
}

func TestCommandsAreRegistered(t *testing.T) {
	for _, name := range []string{"start", "seed", "config"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
