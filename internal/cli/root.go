// Package cli holds the dispensary command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"dispensary/m/internal/config"
	"dispensary/m/internal/database"
	"dispensary/m/internal/migrations"
)

// NewRootCommand builds the command tree. Configuration is read from the
// environment when a command runs, not when the tree is built.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "dispensary",
		Short:         "Clinic dispensary point of sale and inventory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newSeedCommand(),
		newStockInCommand(),
		newAdjustCommand(),
		newLowStockCommand(),
		newReconcileCommand(),
		newExportSalesCommand(),
		newCronCommand(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openDB connects with the configured driver and brings the schema up to date.
func openDB(cfg config.Config) (*sqlx.DB, error) {
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
