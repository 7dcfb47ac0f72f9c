package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/marginiq/marginiq/internal/app"
	"github.com/marginiq/marginiq/internal/config"
	"github.com/marginiq/marginiq/internal/platform"
	"github.com/marginiq/marginiq/internal/settings"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func setupRoot(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	cfg := config.Default()
	cfg.Updates.StaticDelayMillis = 0
	cfg.Theme.MarkerFile = true
	require.NoError(t, config.Save(filepath.Join(root, app.ConfigFilename), cfg))

	return root
}

func runCLI(t *testing.T, root string, stdin string, args ...string) cliResult {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand(app.Initialize, app.Options{Console: &stderr})
	cmd.SetArgs(append([]string{"--root", root}, args...))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))

	err := cmd.ExecuteContext(context.Background())

	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestShowDefaults(t *testing.T) {
	root := setupRoot(t)

	res := runCLI(t, root, "", "show")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "preferences.darkMode")
	assert.Contains(t, res.stdout, "Excel (.xlsx)")

	res = runCLI(t, root, "", "show", "dataSources", "-o", "json")
	require.NoError(t, res.err)
	var group map[string]bool
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &group))
	assert.Equal(t, map[string]bool{"erp": true, "pricing": true, "tariffs": true, "inventory": false}, group)
}

func TestShowRejectsUnknownGroup(t *testing.T) {
	res := runCLI(t, setupRoot(t), "", "show", "billing")
	assert.ErrorContains(t, res.err, "unknown settings group")
}

func TestSetPersistsAcrossInvocations(t *testing.T) {
	root := setupRoot(t)

	res := runCLI(t, root, "", "set", "preferences.darkMode=on", "dataSources.inventory=connected", "advancedSettings.exportFormat=csv")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "preferences.darkMode = on (add-dark-marker)")
	assert.Contains(t, res.stdout, "Settings saved")
	assert.FileExists(t, filepath.Join(root, app.DarkMarkerFilename))

	res = runCLI(t, root, "", "show", "-o", "yaml")
	require.NoError(t, res.err)
	var bundle settings.Bundle
	require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &bundle))
	assert.True(t, bundle.Preferences.DarkMode)
	assert.True(t, bundle.DataSources.Inventory)
	assert.Equal(t, "CSV", bundle.Advanced.ExportFormat)
}

func TestSetValidatesEveryAssignmentFirst(t *testing.T) {
	root := setupRoot(t)

	res := runCLI(t, root, "", "set", "preferences.compactView=on", "advancedSettings.defaultRegion=Midwest")
	var validationErr *settings.ValidationError
	require.ErrorAs(t, res.err, &validationErr)

	res = runCLI(t, root, "", "show", "preferences", "-o", "json")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `"compactView": false`)
}

func TestSetRejectsMalformedAssignment(t *testing.T) {
	res := runCLI(t, setupRoot(t), "", "set", "preferences.darkMode")
	assert.ErrorContains(t, res.err, "expected group.field=value")

	res = runCLI(t, setupRoot(t), "", "set", "preferences.theme=dark")
	assert.ErrorIs(t, res.err, settings.ErrUnknownField)
}

func TestSetNoSaveDoesNotPersist(t *testing.T) {
	root := setupRoot(t)

	res := runCLI(t, root, "", "set", "--no-save", "notifications.weeklyReports=on")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Changes not saved")

	res = runCLI(t, root, "", "show", "notifications", "-o", "json")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `"weeklyReports": false`)
}

func TestResetRestoresAndSavesDefaults(t *testing.T) {
	root := setupRoot(t)
	require.NoError(t, runCLI(t, root, "", "set", "preferences.darkMode=on", "advancedSettings.defaultRegion=Southwest").err)

	res := runCLI(t, root, "", "reset")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Settings reset to defaults")
	assert.NoFileExists(t, filepath.Join(root, app.DarkMarkerFilename))

	res = runCLI(t, root, "", "show", "-o", "json")
	require.NoError(t, res.err)
	var bundle settings.Bundle
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &bundle))
	assert.Equal(t, settings.Default(), bundle)
}

func TestResetWithoutSaveKeepsStoredRecord(t *testing.T) {
	root := setupRoot(t)
	require.NoError(t, runCLI(t, root, "", "set", "advancedSettings.defaultRegion=Southwest").err)

	require.NoError(t, runCLI(t, root, "", "reset", "--save=false").err)

	res := runCLI(t, root, "", "show", "advancedSettings", "-o", "json")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `"defaultRegion": "Southwest"`)
}

func TestStatusReport(t *testing.T) {
	root := setupRoot(t)
	require.NoError(t, runCLI(t, root, "", "set", "dataSources.erp=off").err)

	res := runCLI(t, root, "", "status")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "2/4 connected")
	assert.Contains(t, res.stdout, "GPT-4 (Latest)")
	assert.Contains(t, res.stdout, "Last saved:")

	res = runCLI(t, root, "", "status", "-o", "json")
	require.NoError(t, res.err)
	var report statusReport
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &report))
	assert.Equal(t, 2, report.System.ConnectedSources)
	assert.Equal(t, settings.TotalDataSources, report.System.TotalSources)
	assert.False(t, report.System.IsCheckingUpdates)
	assert.Equal(t, "sqlite", report.Storage)
	assert.NotNil(t, report.LastSavedAt)
	require.Len(t, report.Sources, 4)
	assert.Equal(t, sourceStatus{Name: "erp", Connected: false}, report.Sources[0])
}

func TestCheckUpdatesStatic(t *testing.T) {
	res := runCLI(t, setupRoot(t), "", "check-updates")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "System is up to date!")
	assert.Contains(t, res.stderr, "System is up to date!")
}

func TestOptionsListing(t *testing.T) {
	res := runCLI(t, setupRoot(t), "", "options", "-o", "json")
	require.NoError(t, res.err)

	var infos []fieldInfo
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &infos))
	require.Len(t, infos, len(settings.Fields()))
	for _, info := range infos {
		if info.Field == "advancedSettings.exportFormat" {
			assert.Equal(t, []string{"Excel (.xlsx)", "CSV", "PDF", "JSON"}, info.Options)
			assert.Equal(t, "Excel (.xlsx)", info.Default)
		}
	}
}

func TestShellKeepsChangesUntilSave(t *testing.T) {
	root := setupRoot(t)

	script := strings.Join([]string{
		"set preferences.compactView on",
		"dirty",
		"set advancedSettings.exportFormat Excel (.xlsx)",
		"set advancedSettings.defaultRegion Atlantis",
		"save",
		"dirty",
		"set preferences.autoRefresh off",
		"quit",
	}, "\n")
	res := runCLI(t, root, script, "shell")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Unsaved changes pending")
	assert.Contains(t, res.stdout, "No unsaved changes")
	assert.Contains(t, res.stdout, "Settings saved")
	assert.Contains(t, res.stdout, "Unsaved changes discarded")
	assert.Contains(t, res.stdout, "Atlantis")

	res = runCLI(t, root, "", "show", "preferences", "-o", "json")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `"compactView": true`)
	assert.Contains(t, res.stdout, `"autoRefresh": true`)
}

func TestShellRefusesConcurrentSession(t *testing.T) {
	root := setupRoot(t)

	lock, err := platform.AcquireSessionLock(root)
	if errors.Is(err, platform.ErrSessionLockUnsupported) {
		t.Skip(err)
	}
	require.NoError(t, err)

	res := runCLI(t, root, "quit\n", "shell")
	assert.ErrorContains(t, res.err, "another shell is editing settings")

	require.NoError(t, lock.Release())
	res = runCLI(t, root, "quit\n", "shell")
	require.NoError(t, res.err)
}

func TestConfigInitWritesEffectiveConfig(t *testing.T) {
	root := setupRoot(t)

	res := runCLI(t, root, "", "--backend", "memory", "config", "init")
	require.NoError(t, res.err)

	cfg, err := config.Load(filepath.Join(root, app.ConfigFilename))
	require.NoError(t, err)
	assert.Equal(t, config.BackendMemory, cfg.Storage.Backend)
}

func TestVersionAndOutputValidation(t *testing.T) {
	res := runCLI(t, setupRoot(t), "", "version")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "MarginIQ version "))

	res = runCLI(t, setupRoot(t), "", "show", "-o", "xml")
	assert.ErrorContains(t, res.err, "unsupported output format")
}
