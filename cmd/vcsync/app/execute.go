package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the vcsync CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "vcsync",
		Short:   "vCenter inventory reconciliation CLI",
		Version: a.version,
		Long: `vcsync reconciles virtual-machine inventory from vCenter-style
virtualization servers against an infrastructure-asset system.

It caches per-server inventory snapshots, compares them against the asset
records, and imports or synchronizes selected VMs with per-item outcomes.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default is .vcsync.yaml in cwd or $HOME)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("vcsync {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs and rebuilds the logger
// from the parsed global flags.
func (a *App) setupCommand(_ *cobra.Command, _ []string) error {
	logger := NewLogger(a)
	a.logger = &logger
	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(a.NewServersCommand())
	rootCmd.AddCommand(a.NewRefreshCommand())
	rootCmd.AddCommand(a.NewCompareCommand())
	rootCmd.AddCommand(a.NewImportCommand())
	rootCmd.AddCommand(a.NewSyncCommand())
	rootCmd.AddCommand(a.NewVersionCommand())
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
