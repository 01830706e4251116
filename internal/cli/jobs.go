package cli

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"dispensary/m/internal/catalog"
	"dispensary/m/internal/config"
	"dispensary/m/internal/events"
	"dispensary/m/internal/jobs"
	"dispensary/m/internal/reports"
)

func newScheduler(db *sqlx.DB, cfg config.Config, publisher events.Publisher) (*jobs.Scheduler, error) {
	s := jobs.NewScheduler()
	if err := s.Register(jobs.LowStockJob, cfg.LowStockSchedule, jobs.LowStock(catalog.New(db), publisher)); err != nil {
		return nil, err
	}
	if err := s.Register(jobs.SalesExportJob, cfg.SalesExportSchedule, jobs.SalesExport(db, cfg.ReportsDir, time.Now)); err != nil {
		return nil, err
	}
	return s, nil
}

func newCronCommand() *cobra.Command {
	var jobName string
	cmd := &cobra.Command{
		Use:   "cron:start",
		Short: "Start the cron scheduler or run a single job by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			publisher := events.FromConfig(cfg.KafkaBrokers, cfg.KafkaTopic)
			defer publisher.Close()

			scheduler, err := newScheduler(db, cfg, publisher)
			if err != nil {
				return err
			}
			if jobName != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Running cron job: %s\n", jobName)
				return scheduler.RunNow(cmd.Context(), strings.ToLower(jobName))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := scheduler.Start(ctx); err != nil {
				return err
			}
			log.Printf("Cron scheduler started with %v. Press Ctrl+C to exit.", scheduler.Names())
			<-ctx.Done()
			scheduler.Stop()
			return nil
		},
	}
	cmd.Flags().StringVarP(&jobName, "job", "j", "", "Run a single cron job by name and exit")
	return cmd
}

func newExportSalesCommand() *cobra.Command {
	var (
		date   string
		format string
		dir    string
	)
	cmd := &cobra.Command{
		Use:   "export-sales",
		Short: "Write a day's sales sheet to the reports directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			day := time.Now()
			if date != "" {
				parsed, err := reports.ParseDay(date)
				if err != nil {
					return err
				}
				day = parsed
			}
			if dir == "" {
				dir = cfg.ReportsDir
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			path, report, err := reports.ExportDay(cmd.Context(), db, dir, day, strings.ToLower(format))
			if err != nil {
				return err
			}
			t := report.Totals
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d invoices.\nItems: %d  Subtotal: %.2f  Doctor fee: %.2f  Grand total: %.2f\nSaved to: %s\n",
				t.Count, t.Items, t.Subtotal, t.DoctorFee, t.GrandTotal, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to export as YYYY-MM-DD (defaults to today)")
	cmd.Flags().StringVar(&format, "format", reports.FormatCSV, "csv or xlsx")
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (defaults to REPORTS_DIR)")
	return cmd
}
