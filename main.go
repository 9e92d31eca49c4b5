// Command centerhub serves and queries the election center dashboard.
//
// The dashboard reads a public spreadsheet's CSV export, turns its rows into
// center records and answers filter queries over them. It is reachable as a
// JSON HTTP API (serve), a Telegram bot (serve, when configured) and this CLI.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"centerhub/internal/config"
	"centerhub/internal/logging"
)

var (
	// Global flags
	verbose bool
	timeout time.Duration

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "centerhub",
	Short: "Election center dashboard backed by a public spreadsheet",
	Long: `centerhub loads election center data from a Google Sheets CSV export and
lets you filter it by upazila, union, risk, voter count and security teams.

Configuration comes from the environment, a .env file in the working
directory, or the defaults built into the binary.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger, err = logging.New(cfg.LogLevel, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Timeout for one-shot commands")

	sourceCmd.AddCommand(sourceShowCmd)
	sourceCmd.AddCommand(sourceSetCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(optionsCmd)
	rootCmd.AddCommand(tabsCmd)
	rootCmd.AddCommand(sourceCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(openCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
