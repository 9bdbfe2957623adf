package main

import (
	"context"

	"github.com/spf13/cobra"

	"MarketOverview/internal/app"
	"MarketOverview/internal/logger"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the scheduled jobs and Telegram commands",
		Long: `serve starts the HTTP API, the cron jobs (fundamentals refresh and, when
schedule.digest_cron is set, the watchlist digest) and, when Telegram is
configured, chat command polling. It stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app.App, _ *cobra.Command, _ []string) error {
			cfg := a.Config
			sched := a.Scheduler(ctx)
			if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.DigestCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if a.Telegram != nil {
				go a.Telegram.StartPolling(ctx, sched.HandleCommand)
				logger.Get().Infow("telegram polling started")
			}

			if runOnStart {
				go func() {
					if err := sched.RunRefreshNow(ctx); err != nil {
						logger.Get().Warnw("startup refresh", "error", err)
					}
				}()
			}

			logger.Get().Infow("market overview running", "addr", cfg.Server.Addr)
			err := a.Server().Run(ctx)
			logger.Get().Infow("market overview stopped")
			return err
		}),
	}
	cmd.Flags().BoolVar(&runOnStart, "refresh-on-start", false, "run the fundamentals refresh once at startup")
	return cmd
}
