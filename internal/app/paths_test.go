package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolvePaths_UsesUserConfigDir(t *testing.T) {
	configHome := filepath.Join(t.TempDir(), "cfg")
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("HOME", t.TempDir())

	paths, err := ResolvePaths("")
	if err != nil {
		t.Fatalf("resolve paths: %v", err)
	}

	if paths.RootDir != filepath.Join(configHome, Name) {
		t.Fatalf("unexpected root dir: %q", paths.RootDir)
	}
	if paths.DarkMarkerFile != filepath.Join(configHome, Name, DarkMarkerFilename) {
		t.Fatalf("unexpected marker file: %q", paths.DarkMarkerFile)
	}
	if _, err := os.Stat(paths.RootDir); err != nil {
		t.Fatalf("expected root directory to exist: %v", err)
	}
}

func TestResolvePaths_RootOverride(t *testing.T) {
	root := filepath.Join(t.TempDir(), "custom")

	paths, err := ResolvePaths(" " + root + " ")
	if err != nil {
		t.Fatalf("resolve paths: %v", err)
	}

	if paths.ConfigFile != filepath.Join(root, ConfigFilename) {
		t.Fatalf("unexpected config file: %q", paths.ConfigFile)
	}
	if paths.DBFile != filepath.Join(root, DBFilename) {
		t.Fatalf("unexpected db file: %q", paths.DBFile)
	}
	if paths.LogFile != filepath.Join(root, "logs", LogFilename) {
		t.Fatalf("unexpected log file: %q", paths.LogFile)
	}
}
