package theme

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FileTarget mirrors the marker as a file: present while dark, absent otherwise.
type FileTarget struct {
	path string
}

func NewFileTarget(path string) *FileTarget {
	return &FileTarget{path: filepath.Clean(path)}
}

func (t *FileTarget) Name() string {
	return "file"
}

func (t *FileTarget) ApplyTheme(variant Variant) error {
	if variant != VariantDark {
		if err := os.Remove(t.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove theme marker: %w", err)
		}

		return nil
	}

	if err := os.MkdirAll(filepath.Dir(t.path), 0o750); err != nil {
		return fmt.Errorf("create theme marker dir: %w", err)
	}
	if err := os.WriteFile(t.path, []byte(string(VariantDark)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write theme marker: %w", err)
	}

	return nil
}

// Present reports whether the marker file exists.
func (t *FileTarget) Present() bool {
	_, err := os.Stat(t.path)
	return err == nil
}

// LogTarget records theme changes in the log.
type LogTarget struct {
	logger *slog.Logger
}

func NewLogTarget(logger *slog.Logger) *LogTarget {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogTarget{logger: logger}
}

func (t *LogTarget) Name() string {
	return "log"
}

func (t *LogTarget) ApplyTheme(variant Variant) error {
	t.logger.Info("theme changed", "theme", variant)
	return nil
}
