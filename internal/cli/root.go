// Package cli wires the mirror commands: the interactive dashboard and the
// plain report, export, config and history commands.
package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sadopc/mirror/internal/config"
	"github.com/sadopc/mirror/internal/logging"
	"github.com/sadopc/mirror/internal/tui"
)

// cfg is resolved once per invocation in PersistentPreRunE.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Wellness mirror dashboard",
	Long: `mirror shows your daily points, categories and emotions as a
terminal dashboard, backed by the wellness backend.

Getting Started:
  mirror config set backend_url https://api.example.com
  mirror config set token <token>
  mirror                          Launch the dashboard
  mirror today                    Print today's summary
  mirror report --week 2024-06-12 Print a weekly report
  mirror export --format svg -o week.svg`,

	RunE: func(cmd *cobra.Command, args []string) error {
		// Without a terminal there is nothing to draw on.
		if !isatty.IsTerminal(os.Stdout.Fd()) {
			return runToday(cmd, args)
		}
		return runDashboard(cmd)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/mirror/config.json)")
	rootCmd.PersistentFlags().String("db", "", "Database path (default ~/.config/mirror/mirror.db)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg = config.Load(path)
		if db, _ := cmd.Flags().GetString("db"); db != "" {
			cfg.DBPath = db
		}
		return nil
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func runDashboard(cmd *cobra.Command) error {
	logger := logging.Discard()
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		path, err := logging.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolve log path: %w", err)
		}
		l, f, err := logging.OpenFile(path)
		if err != nil {
			return err
		}
		defer f.Close()
		logger = l
		fmt.Fprintf(os.Stderr, "[debug] logging to %s\n", path)
	}

	e, err := openEnv(logger)
	if err != nil {
		return err
	}
	defer e.Close()

	logger.Debug("starting dashboard", "backend", e.feed.BaseURL(), "pid", os.Getpid())
	return tui.Run(e.store, e.feed, logger, cfg.Location())
}
