package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marginiq/marginiq/internal/app"
	"github.com/marginiq/marginiq/internal/platform"
)

const shellPrompt = "marginiq> "

const shellHelp = `Commands:
  show [group]              display settings
  set <group.field> <value> change a setting (kept in memory until save)
  save                      persist pending changes
  reset                     restore defaults without saving
  status                    system status
  check                     check for updates
  dirty                     report unsaved changes
  options                   list fields and allowed values
  help                      this text
  quit                      leave the shell`

func newShellCommand(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Edit settings interactively",
		Long: `Open an interactive session. Changes stay in memory until 'save', the same
way the settings page keeps edits until its save button is pressed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.withRuntime(cmd, func(rt *app.Runtime) error {
				lock, err := platform.AcquireSessionLock(rt.Paths.RootDir)
				switch {
				case errors.Is(err, platform.ErrSessionActive):
					return fmt.Errorf("another shell is editing settings in %s", rt.Paths.RootDir)
				case errors.Is(err, platform.ErrSessionLockUnsupported):
					printWarning(cmd.ErrOrStderr(), "Session lock unavailable: %v", err)
				case err != nil:
					return err
				default:
					defer func() { _ = lock.Release() }()
				}

				return runShell(cmd, rt, cmd.InOrStdin())
			})
		},
	}
}

func runShell(cmd *cobra.Command, rt *app.Runtime, in io.Reader) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(in)

	fmt.Fprint(out, shellPrompt)
	for scanner.Scan() {
		quit, err := runShellLine(cmd, rt, scanner.Text())
		if err != nil {
			printWarning(out, "%v", err)
		}
		if quit {
			break
		}
		fmt.Fprint(out, shellPrompt)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read shell input: %w", err)
	}

	if rt.Settings.HasUnsavedChanges() {
		printWarning(out, "Unsaved changes discarded")
	}

	return nil
}

func runShellLine(cmd *cobra.Command, rt *app.Runtime, line string) (bool, error) {
	out := cmd.OutOrStdout()
	verb, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(verb) {
	case "":
		return false, nil
	case "quit", "exit":
		return true, nil
	case "help", "?":
		fmt.Fprintln(out, shellHelp)
	case "show":
		group, err := groupArg(strings.Fields(rest))
		if err != nil {
			return false, err
		}
		return false, renderBundle(out, FormatText, rt.Settings.Bundle(), group)
	case "set":
		name, value, ok := strings.Cut(rest, " ")
		if !ok {
			name, value, ok = strings.Cut(rest, "=")
		}
		if !ok {
			return false, fmt.Errorf("usage: set <group.field> <value>")
		}
		c, err := parseChange(name, strings.TrimSpace(value))
		if err != nil {
			return false, err
		}
		return false, applyChanges(out, rt.Settings, []change{c}, false)
	case "save":
		return false, saveSettings(cmd, out, rt, false)
	case "reset":
		rt.Settings.ResetToDefaults()
		printSuccess(out, "Settings reset to defaults")
	case "status":
		return false, renderStatus(cmd, FormatText, rt)
	case "check":
		return false, checkUpdates(cmd, FormatText, rt)
	case "dirty":
		if rt.Settings.HasUnsavedChanges() {
			printInfo(out, "Unsaved changes pending")
		} else {
			printInfo(out, "No unsaved changes")
		}
	case "options":
		return false, renderOptions(out, FormatText)
	default:
		return false, fmt.Errorf("unknown command %q, type 'help'", verb)
	}

	return false, nil
}
