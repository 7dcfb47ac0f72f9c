package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Paths stores resolved runtime file locations under the user config dir.
type Paths struct {
	RootDir        string
	ConfigFile     string
	DBFile         string
	LogFile        string
	DarkMarkerFile string
}

// ResolvePaths creates the app directory under rootOverride, or under the
// user config dir when rootOverride is empty.
func ResolvePaths(rootOverride string) (Paths, error) {
	root := strings.TrimSpace(rootOverride)
	if root == "" {
		cfgRoot, err := os.UserConfigDir()
		if err != nil {
			return Paths{}, fmt.Errorf("resolve config dir: %w", err)
		}
		root = filepath.Join(cfgRoot, Name)
	}
	root = filepath.Clean(root)

	if err := os.MkdirAll(root, 0o750); err != nil {
		return Paths{}, fmt.Errorf("create app config dir: %w", err)
	}

	return Paths{
		RootDir:        root,
		ConfigFile:     filepath.Join(root, ConfigFilename),
		DBFile:         filepath.Join(root, DBFilename),
		LogFile:        filepath.Join(root, "logs", LogFilename),
		DarkMarkerFile: filepath.Join(root, DarkMarkerFilename),
	}, nil
}
