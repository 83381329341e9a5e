package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXDGPaths(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	xdg := t.TempDir()

	tests := []struct {
		name string
		env  string
		set  string
		get  func() (string, error)
		want string
	}{
		{"cache default", "XDG_CACHE_HOME", "", cacheDir, filepath.Join(home, ".cache", appName)},
		{"cache xdg", "XDG_CACHE_HOME", xdg, cacheDir, filepath.Join(xdg, appName)},
		{"config default", "XDG_CONFIG_HOME", "", configPath, filepath.Join(home, ".config", appName, "config.toml")},
		{"config xdg", "XDG_CONFIG_HOME", xdg, configPath, filepath.Join(xdg, appName, "config.toml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.set)
			got, err := tt.get()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
