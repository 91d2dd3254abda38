package paths

import (
	"os"
	"path/filepath"
	"testing"

	"timelinec/internal/appconfig"
)

func TestResolveDefaultsToWorkingDirectory(t *testing.T) {
	pp, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !filepath.IsAbs(pp.Root) {
		t.Fatalf("expected absolute root, got %s", pp.Root)
	}
	if filepath.Base(pp.ScriptFile) != "script.json" {
		t.Fatalf("scriptFile = %s, want script.json", pp.ScriptFile)
	}
}

func TestApplyConfigRelativeOverrides(t *testing.T) {
	root := t.TempDir()
	pp := newProjectPaths(root)

	cfg := appconfig.Config{Paths: appconfig.PathsConfig{
		ScriptFile:   "in/script.json",
		ManifestFile: "in/manifest.json",
		OutputFile:   "out/timeline.json",
	}}

	applied := ApplyConfig(pp, cfg)

	if applied.ScriptFile != filepath.Join(root, "in/script.json") {
		t.Fatalf("scriptFile = %s", applied.ScriptFile)
	}
	if applied.OutputFile != filepath.Join(root, "out/timeline.json") {
		t.Fatalf("outputFile = %s", applied.OutputFile)
	}
}

func TestApplyConfigAbsoluteOverride(t *testing.T) {
	root := t.TempDir()
	pp := newProjectPaths(root)
	abs := filepath.Join(t.TempDir(), "script.json")

	applied := ApplyConfig(pp, appconfig.Config{Paths: appconfig.PathsConfig{ScriptFile: abs}})
	if applied.ScriptFile != abs {
		t.Fatalf("scriptFile = %s, want %s", applied.ScriptFile, abs)
	}
}

func TestApplyConfigNoOverridesLeavesDefaults(t *testing.T) {
	root := t.TempDir()
	pp := newProjectPaths(root)
	applied := ApplyConfig(pp, appconfig.Config{})
	if applied != pp {
		t.Fatalf("expected unchanged paths, got %+v", applied)
	}
}

func TestFileExistsAndDirExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := writeEmpty(file); err != nil {
		t.Fatal(err)
	}

	if ok, err := FileExists(file); err != nil || !ok {
		t.Fatalf("FileExists(%s) = %v, %v", file, ok, err)
	}
	if ok, err := DirExists(dir); err != nil || !ok {
		t.Fatalf("DirExists(%s) = %v, %v", dir, ok, err)
	}
	if ok, _ := FileExists(filepath.Join(dir, "missing.txt")); ok {
		t.Fatal("expected FileExists to be false for a missing path")
	}
}

func writeEmpty(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return f.Close()
}
