// Package config resolves where dwm keeps its per-repo workspace storage and
// loads the optional settings file that lives inside it.
//
// The base directory is resolved once at startup and passed down explicitly;
// nothing below the CLI layer reads the process environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dwmtools/dwm/errors"
)

// DefaultDirName is the directory under $HOME used when nothing overrides it.
const DefaultDirName = ".dwm"

// EnvBaseDir overrides the base directory when set.
const EnvBaseDir = "DWM_BASE_DIR"

// Config holds the optional settings read from <base>/config.yml.
type Config struct {
	// Log controls the logging sink and level.
	Log LogConfig `yaml:"log"`
}

// LogConfig is the logging section of config.yml.
type LogConfig struct {
	// Level is a logrus level name ("debug", "info", ...). Empty means info.
	Level string `yaml:"level"`
}

// BaseDir returns the root of all dwm workspace storage, honoring the
// DWM_BASE_DIR environment variable and defaulting to ~/.dwm.
func BaseDir() (string, error) {
	if dir := os.Getenv(EnvBaseDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName), nil
}

// Load reads <base>/config.yml. A missing file yields a zero Config; a
// malformed file is an error so typos do not silently disable settings.
func Load(baseDir string) (*Config, error) {
	path := filepath.Join(baseDir, "config.yml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid,
			fmt.Sprintf("invalid configuration: %s", path))
	}
	return &cfg, nil
}
