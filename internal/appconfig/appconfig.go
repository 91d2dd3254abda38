// Package appconfig loads the ambient CLI configuration for the timelinec
// binary: default video sizing, the on-disk locations of the compile
// inputs/outputs, and which warning kinds should be treated as fatal. None
// of this is consumed by the core compiler (internal/compile) — it is
// strictly the thin shim's own concern.
package appconfig

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape of timelinec.yaml.
type Config struct {
	Version  int            `yaml:"version"`
	Video    VideoDefaults  `yaml:"video"`
	Paths    PathsConfig    `yaml:"paths"`
	Warnings WarningsConfig `yaml:"warnings"`
}

// VideoDefaults holds default video sizing and frame rate read from
// timelinec.yaml. The compile and validate commands do not apply these
// values to the Script; a Script's own video block is used as written.
type VideoDefaults struct {
	FPS    int `yaml:"fps"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// PathsConfig names the compile inputs/outputs relative to the project root.
type PathsConfig struct {
	ScriptFile      string `yaml:"script_file"`
	ManifestFile    string `yaml:"manifest_file"`
	OutputFile      string `yaml:"output_file"`
	BgmDurationFile string `yaml:"bgm_duration_file"`
	BgmLoudnessFile string `yaml:"bgm_loudness_file"`
}

// WarningsConfig lists warning kinds (internal/compile.WarningKind values)
// that should cause the CLI to exit non-zero even though the compile itself
// succeeded.
type WarningsConfig struct {
	FailOn []string `yaml:"fail_on"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		Video: VideoDefaults{
			Width:  1920,
			Height: 1080,
			FPS:    30,
		},
		Paths: PathsConfig{
			ScriptFile:   "script.json",
			ManifestFile: "manifest.json",
			OutputFile:   "timeline.json",
		},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise
// returns the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults ensures nested fields fall back to sensible defaults when
// the YAML omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Video.FPS == 0 {
		c.Video.FPS = defaults.Video.FPS
	}
	if c.Video.Width == 0 {
		c.Video.Width = defaults.Video.Width
	}
	if c.Video.Height == 0 {
		c.Video.Height = defaults.Video.Height
	}
	if c.Paths.ScriptFile == "" {
		c.Paths.ScriptFile = defaults.Paths.ScriptFile
	}
	if c.Paths.ManifestFile == "" {
		c.Paths.ManifestFile = defaults.Paths.ManifestFile
	}
	if c.Paths.OutputFile == "" {
		c.Paths.OutputFile = defaults.Paths.OutputFile
	}
}

// ShouldFailOn reports whether the given warning kind is configured to fail
// the CLI's exit status.
func (c Config) ShouldFailOn(kind string) bool {
	for _, k := range c.Warnings.FailOn {
		if k == kind {
			return true
		}
	}
	return false
}
