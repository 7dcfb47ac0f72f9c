package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marginiq/marginiq/internal/app"
	"github.com/marginiq/marginiq/internal/config"
)

// Opener builds the runtime a command works against.
type Opener func(ctx context.Context, opts app.Options) (*app.Runtime, error)

type rootOptions struct {
	rootDir    string
	configFile string
	backend    string
	logLevel   string
	output     string
}

type commandEnv struct {
	open Opener
	base app.Options
	opts rootOptions
}

// NewRootCommand builds the marginiq command tree. base carries options that
// flags do not cover, such as a notification sender.
func NewRootCommand(open Opener, base app.Options) *cobra.Command {
	if open == nil {
		open = app.Initialize
	}
	env := &commandEnv{open: open, base: base}

	cmd := &cobra.Command{
		Use:   app.Name,
		Short: "Manage MarginIQ dashboard settings",
		Long: `marginiq reads and edits the MarginIQ settings record: notification toggles,
data source connections, view preferences and advanced options.

Examples:
  marginiq show
  marginiq set preferences.darkMode=on advancedSettings.exportFormat=CSV
  marginiq status -o json
  marginiq check-updates`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&env.opts.rootDir, "root", "", "Application directory (default: user config dir)")
	flags.StringVar(&env.opts.configFile, "config", "", "Path to config.json")
	flags.StringVar(&env.opts.backend, "backend", "", "Storage backend: sqlite, preferences, keyring or memory")
	flags.StringVar(&env.opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVarP(&env.opts.output, "output", "o", "text", "Output format: text, json or yaml")

	cmd.AddCommand(
		newShowCommand(env),
		newSetCommand(env),
		newResetCommand(env),
		newStatusCommand(env),
		newCheckUpdatesCommand(env),
		newOptionsCommand(env),
		newShellCommand(env),
		newConfigCommand(env),
		newVersionCommand(env),
	)

	return cmd
}

func (e *commandEnv) outputFormat() (OutputFormat, error) {
	return ParseOutputFormat(e.opts.output)
}

func (e *commandEnv) withRuntime(cmd *cobra.Command, fn func(rt *app.Runtime) error) error {
	opts := e.base
	if v := strings.TrimSpace(e.opts.rootDir); v != "" {
		opts.RootDir = v
	}
	if v := strings.TrimSpace(e.opts.configFile); v != "" {
		opts.ConfigFile = v
	}
	if v := strings.TrimSpace(e.opts.backend); v != "" {
		opts.Backend = config.StorageBackend(strings.ToLower(v))
	}
	if v := strings.TrimSpace(e.opts.logLevel); v != "" {
		opts.LogLevel = v
	}
	if opts.Console == nil {
		opts.Console = cmd.ErrOrStderr()
	}

	rt, err := e.open(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("start runtime: %w", err)
	}
	defer func() {
		_ = rt.Close()
	}()

	return fn(rt)
}

func newVersionCommand(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of MarginIQ",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := env.outputFormat()
			if err != nil {
				return err
			}
			if format != FormatText {
				return OutputResults(cmd.OutOrStdout(), format, map[string]string{
					"version":   app.BuildVersion(),
					"buildDate": app.BuildDateYMD(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", app.DisplayName, app.BuildVersionWithDate())

			return nil
		},
	}
}
