package cli

import (
	"os"
	"path/filepath"
)

// xdgDir returns the brickfall directory under the XDG base directory named
// by env, falling back to fallback inside the home directory.
func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}

// cacheDir is where the file cache lives, ~/.cache/brickfall by default.
func cacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// configPath is the config file read when --config is not given,
// ~/.config/brickfall/config.toml by default.
func configPath() (string, error) {
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
