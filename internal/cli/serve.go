package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"dispensary/m/internal/api"
	"dispensary/m/internal/cache"
	"dispensary/m/internal/config"
	"dispensary/m/internal/events"
)

func newServeCommand() *cobra.Command {
	var withCron bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rdb := connectRedis(ctx, cfg)
			if rdb != nil {
				defer rdb.Close()
			}
			publisher := events.FromConfig(cfg.KafkaBrokers, cfg.KafkaTopic)
			defer publisher.Close()

			if withCron {
				scheduler, err := newScheduler(db, cfg, publisher)
				if err != nil {
					return err
				}
				if err := scheduler.Start(ctx); err != nil {
					return err
				}
				defer scheduler.Stop()
				log.Printf("Cron scheduler started: %v", scheduler.Names())
			}

			handler := api.New(db, api.Options{
				Clinic:         cfg.Clinic,
				AllowedOrigins: cfg.AllowedOrigins,
				Publisher:      publisher,
				Redis:          rdb,
			})
			srv := &http.Server{
				Addr:              ":" + cfg.HTTPPort,
				Handler:           handler.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			figure.NewFigure("Dispensary", "small", true).Print()
			fmt.Fprintln(cmd.OutOrStdout())
			log.Printf("Dispensary POS server starting on :%s (%s)", cfg.HTTPPort, cfg.DatabaseDriver)

			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server error: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			log.Printf("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&withCron, "with-cron", false, "Run the scheduled jobs inside the server process")
	return cmd
}

// connectRedis returns nil when Redis is not configured or not reachable, in
// which case prices are read from the catalog.
func connectRedis(ctx context.Context, cfg config.Config) *redis.Client {
	rdb := cache.NewClient(cfg.RedisAddr, cfg.RedisPassword)
	if rdb == nil {
		log.Println("Redis not configured, price cache disabled.")
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Printf("Redis configured but not reachable, price cache disabled: %v", err)
		rdb.Close()
		return nil
	}
	log.Println("Redis connection successful.")
	return rdb
}
