package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marginiq/marginiq/internal/app"
	"github.com/marginiq/marginiq/internal/settings"
)

func newShowCommand(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "show [group]",
		Short: "Display current settings",
		Long: `Display the stored settings, or a single group of them.

Groups: notifications, dataSources, preferences, advancedSettings.

Examples:
  marginiq show
  marginiq show preferences -o yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := env.outputFormat()
			if err != nil {
				return err
			}
			group, err := groupArg(args)
			if err != nil {
				return err
			}

			return env.withRuntime(cmd, func(rt *app.Runtime) error {
				return renderBundle(cmd.OutOrStdout(), format, rt.Settings.Bundle(), group)
			})
		},
	}
}

func newSetCommand(env *commandEnv) *cobra.Command {
	var noSave bool

	cmd := &cobra.Command{
		Use:   "set <group.field=value>...",
		Short: "Change one or more settings",
		Long: `Change settings and save them. Every assignment is validated before any
is applied. Booleans accept on/off, yes/no, true/false, connected/disconnected.
Run 'marginiq options' to list fields and allowed values.

Examples:
  marginiq set preferences.darkMode=on
  marginiq set dataSources.inventory=connected "advancedSettings.exportFormat=Excel (.xlsx)"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := env.outputFormat()
			if err != nil {
				return err
			}
			changes, err := parseAssignments(args)
			if err != nil {
				return err
			}

			return env.withRuntime(cmd, func(rt *app.Runtime) error {
				out := cmd.OutOrStdout()
				quiet := format != FormatText
				if err := applyChanges(out, rt.Settings, changes, quiet); err != nil {
					return err
				}
				if noSave {
					if !quiet {
						printInfo(out, "Changes not saved")
					}
				} else if err := saveSettings(cmd, out, rt, quiet); err != nil {
					return err
				}
				if quiet {
					return OutputResults(out, format, rt.Settings.Bundle())
				}

				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&noSave, "no-save", false, "Apply and show changes without persisting them")

	return cmd
}

func newResetCommand(env *commandEnv) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore default settings",
		Long: `Restore every setting to its default value and clear the dark theme marker.
The defaults are saved unless --save=false is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := env.outputFormat()
			if err != nil {
				return err
			}

			return env.withRuntime(cmd, func(rt *app.Runtime) error {
				out := cmd.OutOrStdout()
				quiet := format != FormatText
				bundle := rt.Settings.ResetToDefaults()
				if !quiet {
					printSuccess(out, "Settings reset to defaults")
				}
				if save {
					if err := saveSettings(cmd, out, rt, quiet); err != nil {
						return err
					}
				}
				if quiet {
					return OutputResults(out, format, bundle)
				}

				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&save, "save", true, "Persist the restored defaults")

	return cmd
}

func newOptionsCommand(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List settings fields and allowed values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := env.outputFormat()
			if err != nil {
				return err
			}

			return renderOptions(cmd.OutOrStdout(), format)
		},
	}
}

type fieldInfo struct {
	Field   string   `json:"field" yaml:"field"`
	Kind    string   `json:"kind" yaml:"kind"`
	Default string   `json:"default" yaml:"default"`
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
}

func renderOptions(w io.Writer, format OutputFormat) error {
	defaults := settings.Default()
	infos := make([]fieldInfo, 0, len(settings.Fields()))
	for _, field := range settings.Fields() {
		value, _ := defaults.Value(field)
		infos = append(infos, fieldInfo{
			Field:   field.String(),
			Kind:    field.Kind().String(),
			Default: formatValue(value),
			Options: field.Options(),
		})
	}
	if format != FormatText {
		return OutputResults(w, format, infos)
	}

	table := NewTableFormatter(w)
	table.Header("FIELD", "KIND", "DEFAULT", "OPTIONS")
	for _, info := range infos {
		options := "on, off"
		if len(info.Options) > 0 {
			options = strings.Join(info.Options, " | ")
		}
		table.Row(info.Field, info.Kind, info.Default, options)
	}
	table.Flush()

	return nil
}

func groupArg(args []string) (settings.Group, error) {
	if len(args) == 0 {
		return "", nil
	}
	raw := strings.TrimSpace(args[0])
	for _, group := range settings.Groups() {
		if strings.EqualFold(raw, string(group)) {
			return group, nil
		}
	}

	return "", fmt.Errorf("unknown settings group %q", raw)
}

func renderBundle(w io.Writer, format OutputFormat, bundle settings.Bundle, group settings.Group) error {
	if format != FormatText {
		if group != "" {
			return OutputResults(w, format, bundle.Group(group))
		}
		return OutputResults(w, format, bundle)
	}

	table := NewTableFormatter(w)
	table.Header("FIELD", "VALUE")
	for _, field := range settings.Fields() {
		if group != "" && field.Group != group {
			continue
		}
		value, _ := bundle.Value(field)
		table.Row(field.String(), formatValue(value))
	}
	table.Flush()

	return nil
}

type change struct {
	field settings.Field
	value any
}

func parseAssignments(args []string) ([]change, error) {
	changes := make([]change, 0, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected group.field=value, got %q", arg)
		}
		c, err := parseChange(name, raw)
		if err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}

	return changes, nil
}

func parseChange(name, raw string) (change, error) {
	field, err := settings.ParseField(name)
	if err != nil {
		return change{}, err
	}
	value, err := settings.ParseValue(field, raw)
	if err != nil {
		return change{}, err
	}

	return change{field: field, value: value}, nil
}

func applyChanges(w io.Writer, store *settings.Store, changes []change, quiet bool) error {
	for _, c := range changes {
		_, effect, err := store.SetField(c.field, c.value)
		if err != nil {
			return err
		}
		if quiet {
			continue
		}
		if effect.None() {
			printSuccess(w, "%s = %s", c.field, formatValue(c.value))
		} else {
			printSuccess(w, "%s = %s (%s)", c.field, formatValue(c.value), effect.Kind)
		}
	}

	return nil
}

func saveSettings(cmd *cobra.Command, w io.Writer, rt *app.Runtime, quiet bool) error {
	if err := rt.Settings.Save(cmd.Context()); err != nil {
		return err
	}
	if !quiet {
		printSuccess(w, "Settings saved")
	}

	return nil
}
