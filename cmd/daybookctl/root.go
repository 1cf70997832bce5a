package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"daybook/internal/backend"
	"daybook/internal/cli"
	"daybook/internal/config"
	"daybook/internal/services"
)

var (
	backendName string
	dbPath      string
	jsonOutput  bool

	ledgerSvc    *services.LedgerService
	closeBackend func() error
)

var rootCmd = &cobra.Command{
	Use:           "daybookctl",
	Short:         "Inspect and edit the daybook ledger from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return openLedger(cmd)
	},
	PersistentPostRunE: func(*cobra.Command, []string) error {
		if closeBackend == nil {
			return nil
		}
		err := closeBackend()
		closeBackend = nil
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "Ledger backend: sqlite or memory (default from DATA_BACKEND).")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default from SQLITE_DB_PATH).")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of tables.")
}

// openLedger builds the ledger service the same way the server does, with
// flags taking precedence over the environment.
func openLedger(cmd *cobra.Command) error {
	cli.LoadEnvFile()
	cfg := config.Load()
	if backendName != "" {
		cfg.DataBackend = backendName
	}
	if dbPath != "" {
		cfg.SQLiteDBPath = dbPath
	}
	// Commands talk on stdout; keep the log quiet unless asked otherwise
	if cfg.LogLevel == "info" {
		cfg.LogLevel = "warn"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := cli.SetupLoggerTo(cmd.ErrOrStderr())
	cli.SetLogLevel(cfg.LogLevel)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(cmd.Context(), backendCfg)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	closeBackend = res.Close
	ledgerSvc = services.NewLedgerService(res.Store, cfg.ProvisionWindowDays, res.Publisher)
	slog.Debug("Ledger opened", "backend", backendCfg.Type, "window", cfg.ProvisionWindowDays)
	return nil
}
