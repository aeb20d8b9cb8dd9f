package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mealmarkt/ops-manager/config"
	"github.com/mealmarkt/ops-manager/internal/hyperzod"
	"github.com/mealmarkt/ops-manager/internal/store"
	syncsrv "github.com/mealmarkt/ops-manager/internal/sync"
)

var (
	syncDryRun bool
	syncLimit  int

	syncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Mirror data from the commerce platform into the local store",
	}
)

func init() {
	syncCmd.PersistentFlags().BoolVar(&syncDryRun, "dry-run", false, "log intended writes without touching the store")
	syncCmd.PersistentFlags().IntVar(&syncLimit, "limit", 0, "stop after N records (0 = no limit)")

	syncCmd.AddCommand(
		&cobra.Command{
			Use:   "merchants",
			Short: "Sync the merchant directory",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSync(func(ctx context.Context, s *syncsrv.Service, opts syncsrv.Options) (syncsrv.Summary, error) {
					return s.SyncMerchants(ctx, opts)
				})
			},
		},
		&cobra.Command{
			Use:   "customers",
			Short: "Sync customer accounts",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSync(func(ctx context.Context, s *syncsrv.Service, opts syncsrv.Options) (syncsrv.Summary, error) {
					return s.SyncCustomers(ctx, opts)
				})
			},
		},
		&cobra.Command{
			Use:   "orders",
			Short: "Sync orders and their delivery addresses",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSync(func(ctx context.Context, s *syncsrv.Service, opts syncsrv.Options) (syncsrv.Summary, error) {
					return s.SyncOrders(ctx, opts)
				})
			},
		},
	)
}

func runSync(job func(context.Context, *syncsrv.Service, syncsrv.Options) (syncsrv.Summary, error)) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("cannot load a config %v", err.Error())
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.Level(cfg.Logger.Level),
		AddSource: cfg.Logger.AddSource,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rep, err := store.New(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("couldn't connect to mysql %v", err.Error())
	}
	defer rep.Close()

	commerce, err := hyperzod.New(&cfg.Hyperzod)
	if err != nil {
		return fmt.Errorf("cannot create hyperzod client %v", err.Error())
	}

	summary, err := job(ctx, syncsrv.New(rep, commerce), syncsrv.Options{
		DryRun: syncDryRun,
		Limit:  syncLimit,
	})
	if err != nil {
		return fmt.Errorf("sync failed %v", err.Error())
	}

	fmt.Println(summary.String())
	return nil
}
