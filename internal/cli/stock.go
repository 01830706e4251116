package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dispensary/m/domain"
	"dispensary/m/internal/catalog"
	"dispensary/m/internal/config"
	"dispensary/m/internal/events"
	"dispensary/m/internal/ledger"
	"dispensary/m/internal/stock"
)

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("medicine_id", "must be a positive integer")
	}
	return id, nil
}

func newStockInCommand() *cobra.Command {
	var ref string
	cmd := &cobra.Command{
		Use:   "stock-in MEDICINE_ID QTY",
		Short: "Book received stock for a medicine",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			qty, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return domain.Invalid("qty", "must be an integer")
			}
			return withStock(cmd, func(svc *stock.Service) (int64, error) {
				return svc.StockIn(cmd.Context(), id, qty, "", ref)
			})
		},
	}
	cmd.Flags().StringVar(&ref, "ref", "", "Reference, e.g. a purchase order")
	return cmd
}

func newAdjustCommand() *cobra.Command {
	var (
		ref    string
		reason string
	)
	cmd := &cobra.Command{
		Use:   "adjust MEDICINE_ID DELTA",
		Short: "Apply a signed stock correction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			delta, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return domain.Invalid("delta", "must be an integer")
			}
			return withStock(cmd, func(svc *stock.Service) (int64, error) {
				return svc.AdjustStock(cmd.Context(), id, delta, domain.Reason(reason), ref)
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", string(domain.ReasonAdjustment), "adjustment, stock_in or return")
	cmd.Flags().StringVar(&ref, "ref", "", "Free-text reference")
	return cmd
}

func withStock(cmd *cobra.Command, fn func(*stock.Service) (int64, error)) error {
	cfg := config.Load()
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	publisher := events.FromConfig(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer publisher.Close()

	qty, err := fn(stock.New(db, publisher))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "stock now %d\n", qty)
	return nil
}

func newLowStockCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "low-stock",
		Short: "List active medicines at or below their reorder level",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(config.Load())
			if err != nil {
				return err
			}
			defer db.Close()

			items, err := catalog.New(db).LowStock(cmd.Context())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "All good. No medicines at or below reorder level.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSTOCK\tREORDER\tPRICE")
			for _, m := range items {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%.2f\n", m.ID, m.Name, m.StockQty, m.ReorderLevel, m.UnitPrice)
			}
			return tw.Flush()
		},
	}
}

func newReconcileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Compare every stock level with the sum of its ledger moves",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(config.Load())
			if err != nil {
				return err
			}
			defer db.Close()

			diffs, err := ledger.New(db).Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			if len(diffs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "stock and ledger agree")
				return nil
			}
			for _, d := range diffs {
				fmt.Fprintf(cmd.OutOrStdout(), "%d %s: stock %d, ledger %d\n", d.MedicineID, d.Name, d.StockQty, d.LedgerQty)
			}
			return fmt.Errorf("%d medicines out of balance", len(diffs))
		},
	}
}
