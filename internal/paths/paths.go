// Package paths resolves the on-disk locations a timelinec project uses:
// the project root, its compile inputs (script, manifest, BGM duration and
// loudness maps) and output (timeline), and its log directory.
package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"timelinec/internal/appconfig"
)

// ProjectPaths captures canonical locations for a timelinec project.
type ProjectPaths struct {
	Root            string
	ConfigFile      string
	ScriptFile      string
	ManifestFile    string
	OutputFile      string
	BgmDurationFile string
	BgmLoudnessFile string
	LogsDir         string
}

// Resolve determines the project root using the optional --project flag or
// the current working directory when the flag is empty.
func Resolve(projectFlag string) (ProjectPaths, error) {
	var (
		root string
		err  error
	)

	if projectFlag != "" {
		root, err = filepath.Abs(projectFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return ProjectPaths{}, fmt.Errorf("resolve project root: %w", err)
	}

	return newProjectPaths(root), nil
}

func newProjectPaths(root string) ProjectPaths {
	return ProjectPaths{
		Root:         root,
		ConfigFile:   filepath.Join(root, "timelinec.yaml"),
		ScriptFile:   filepath.Join(root, "script.json"),
		ManifestFile: filepath.Join(root, "manifest.json"),
		OutputFile:   filepath.Join(root, "timeline.json"),
		LogsDir:      filepath.Join(root, "logs"),
	}
}

// ApplyConfig overrides the file locations with whatever the project's
// appconfig.Config specifies, resolving relative paths against Root.
func ApplyConfig(pp ProjectPaths, cfg appconfig.Config) ProjectPaths {
	if v := cfg.Paths.ScriptFile; v != "" {
		pp.ScriptFile = resolveProjectPath(pp.Root, v)
	}
	if v := cfg.Paths.ManifestFile; v != "" {
		pp.ManifestFile = resolveProjectPath(pp.Root, v)
	}
	if v := cfg.Paths.OutputFile; v != "" {
		pp.OutputFile = resolveProjectPath(pp.Root, v)
	}
	if v := cfg.Paths.BgmDurationFile; v != "" {
		pp.BgmDurationFile = resolveProjectPath(pp.Root, v)
	}
	if v := cfg.Paths.BgmLoudnessFile; v != "" {
		pp.BgmLoudnessFile = resolveProjectPath(pp.Root, v)
	}
	return pp
}

func resolveProjectPath(root, value string) string {
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

// EnsureRoot makes sure the project root exists on disk.
func (p ProjectPaths) EnsureRoot() error {
	if err := os.MkdirAll(p.Root, 0o755); err != nil {
		return fmt.Errorf("create project root: %w", err)
	}
	return nil
}

// EnsureLogsDir creates the project's log directory.
func (p ProjectPaths) EnsureLogsDir() error {
	if err := os.MkdirAll(p.LogsDir, 0o755); err != nil {
		return fmt.Errorf("create logs directory: %w", err)
	}
	return nil
}

// GlobalDir returns the user-level timelinec directory (~/.timelinec),
// creating it if it does not exist.
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("detect user home: %w", err)
	}
	dir := filepath.Join(home, ".timelinec")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create global dir: %w", err)
	}
	return dir, nil
}

// GlobalLogsDir returns the global logs directory (~/.timelinec/logs),
// creating it if it does not exist.
func GlobalLogsDir() (string, error) {
	global, err := GlobalDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(global, "logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create global logs dir: %w", err)
	}
	return dir, nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
