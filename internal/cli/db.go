package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"dispensary/m/internal/config"
	"dispensary/m/internal/seed"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(config.Load())
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newSeedCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the medicine catalog from CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if file == "" {
				file = cfg.CatalogCSV
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := seed.LoadMedicines(cmd.Context(), db, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d medicines from %s\n", n, file)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file (defaults to CATALOG_CSV)")
	return cmd
}
