package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/marginiq/marginiq/internal/app"
	"github.com/marginiq/marginiq/internal/settings"
)

type sourceStatus struct {
	Name      string `json:"name" yaml:"name"`
	Connected bool   `json:"connected" yaml:"connected"`
}

type statusReport struct {
	System      settings.SystemStatus `json:"system" yaml:"system"`
	Sources     []sourceStatus        `json:"sources" yaml:"sources"`
	Storage     string                `json:"storage" yaml:"storage"`
	LastSavedAt *time.Time            `json:"lastSavedAt,omitempty" yaml:"lastSavedAt,omitempty"`
	Unsaved     bool                  `json:"unsavedChanges" yaml:"unsavedChanges"`
}

func newStatusCommand(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show system status and data source connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := env.outputFormat()
			if err != nil {
				return err
			}

			return env.withRuntime(cmd, func(rt *app.Runtime) error {
				return renderStatus(cmd, format, rt)
			})
		},
	}
}

func buildStatusReport(cmd *cobra.Command, rt *app.Runtime) statusReport {
	bundle := rt.Settings.Bundle()
	report := statusReport{
		System:  rt.Settings.Status(),
		Storage: string(rt.CurrentConfig().Storage.Backend),
		Unsaved: rt.Settings.HasUnsavedChanges(),
	}
	for _, field := range settings.Fields() {
		if field.Group != settings.GroupDataSources {
			continue
		}
		value, _ := bundle.Value(field)
		connected, _ := value.(bool)
		report.Sources = append(report.Sources, sourceStatus{Name: field.Key, Connected: connected})
	}
	if at, ok := rt.LastSavedAt(cmd.Context()); ok {
		report.LastSavedAt = &at
	}

	return report
}

func renderStatus(cmd *cobra.Command, format OutputFormat, rt *app.Runtime) error {
	report := buildStatusReport(cmd, rt)
	out := cmd.OutOrStdout()
	if format != FormatText {
		return OutputResults(out, format, report)
	}

	table := NewTableFormatter(out)
	table.Row("Version:", report.System.Version)
	table.Row("Last updated:", report.System.LastUpdated)
	table.Row("AI model:", report.System.AIModel)
	table.Row("Data sources:", fmt.Sprintf("%d/%d connected", report.System.ConnectedSources, report.System.TotalSources))
	for _, source := range report.Sources {
		state := "disconnected"
		if source.Connected {
			state = "connected"
		}
		table.Row("  "+source.Name, state)
	}
	table.Row("Storage:", report.Storage)
	if report.LastSavedAt != nil {
		table.Row("Last saved:", report.LastSavedAt.Local().Format(time.DateTime))
	}
	table.Flush()

	return nil
}

func newCheckUpdatesCommand(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "check-updates",
		Short: "Check whether a newer MarginIQ release exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := env.outputFormat()
			if err != nil {
				return err
			}

			return env.withRuntime(cmd, func(rt *app.Runtime) error {
				return checkUpdates(cmd, format, rt)
			})
		},
	}
}

func checkUpdates(cmd *cobra.Command, format OutputFormat, rt *app.Runtime) error {
	out := cmd.OutOrStdout()
	result, err := rt.Settings.CheckForUpdates(cmd.Context())
	if err != nil {
		return err
	}
	if format != FormatText {
		return OutputResults(out, format, result)
	}
	renderUpdateResult(out, result)

	return nil
}

func renderUpdateResult(w io.Writer, result settings.UpdateResult) {
	if !result.UpdateAvailable {
		printSuccess(w, "System is up to date! (%s)", result.CurrentVersion)
		return
	}
	printInfo(w, "Update available: %s (running %s)", result.LatestVersion, result.CurrentVersion)
	if result.ReleaseURL != "" {
		printInfo(w, "Release: %s", result.ReleaseURL)
	}
}

func newConfigCommand(env *commandEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write the application config",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := env.outputFormat()
			if err != nil {
				return err
			}
			if format == FormatText {
				format = FormatJSON
			}

			return env.withRuntime(cmd, func(rt *app.Runtime) error {
				return OutputResults(cmd.OutOrStdout(), format, rt.CurrentConfig())
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the effective config to disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.withRuntime(cmd, func(rt *app.Runtime) error {
				cfg := rt.CurrentConfig()
				if err := rt.SaveAndApplyConfig(cfg); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Config written to %s", rt.Paths.ConfigFile)

				return nil
			})
		},
	})

	return cmd
}
