package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"MarketOverview/internal/app"
	"MarketOverview/internal/discovery"
	"MarketOverview/internal/model"
	"MarketOverview/internal/notifier"
	"MarketOverview/internal/sentiment"
)

func newOverviewCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "overview TICKER",
		Short:   "Show the overview of one security",
		Example: "  overview overview MSFT.US",
		Args:    cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, a *app.App, cmd *cobra.Command, args []string) error {
			t, err := model.ParseTicker(args[0])
			if err != nil {
				return err
			}
			ov := a.Composer.Compose(ctx, t)
			return emit(opts, cmd.OutOrStdout(), ov, func() string { return notifier.RenderOverview(ov) })
		}),
	}
}

func newCompareCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "compare TICKER_A TICKER_B",
		Short:   "Compare two securities side by side",
		Example: "  overview compare MSFT.US AAPL.US",
		Args:    cobra.ExactArgs(2),
		RunE: withApp(opts, func(ctx context.Context, a *app.App, cmd *cobra.Command, args []string) error {
			ta, err := model.ParseTicker(args[0])
			if err != nil {
				return err
			}
			tb, err := model.ParseTicker(args[1])
			if err != nil {
				return err
			}
			c := a.Compare.Compare(ctx, ta, tb)
			return emit(opts, cmd.OutOrStdout(), c, func() string { return notifier.RenderComparison(c) })
		}),
	}
}

func newNewsCmd(opts *rootOptions) *cobra.Command {
	var (
		limit    int
		relevant bool
	)
	cmd := &cobra.Command{
		Use:   "news TICKER",
		Short: "List recent headlines",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, a *app.App, cmd *cobra.Command, args []string) error {
			t, err := model.ParseTicker(args[0])
			if err != nil {
				return err
			}
			items, _ := a.Resolver.News(ctx, t)
			if relevant {
				items = sentiment.Relevant(items, t, "")
			}
			if limit > 0 && len(items) > limit {
				items = items[:limit]
			}
			return emit(opts, cmd.OutOrStdout(), items, func() string { return notifier.RenderNews(t, items) })
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum headlines to show (0 for all)")
	cmd.Flags().BoolVar(&relevant, "relevant", false, "keep only headlines that mention the company or the market")
	return cmd
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var category string
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Manage the watchlist",
	}
	watch.PersistentFlags().StringVarP(&category, "category", "c", "", "watchlist category")

	watch.AddCommand(
		&cobra.Command{
			Use:   "add TICKER...",
			Short: "Add tickers to the watchlist",
			Args:  cobra.MinimumNArgs(1),
			RunE: withApp(opts, func(_ context.Context, a *app.App, cmd *cobra.Command, args []string) error {
				for _, t := range args {
					if err := a.Watchlist.Add(t, category); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Added %s.\n", model.CanonicalTicker(t))
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:     "rm TICKER",
			Aliases: []string{"remove"},
			Short:   "Remove a ticker from the watchlist",
			Args:    cobra.ExactArgs(1),
			RunE: withApp(opts, func(_ context.Context, a *app.App, cmd *cobra.Command, args []string) error {
				if err := a.Watchlist.Remove(args[0], category); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s.\n", model.CanonicalTicker(args[0]))
				return nil
			}),
		},
		&cobra.Command{
			Use:     "ls",
			Aliases: []string{"list"},
			Short:   "List the watchlist",
			Args:    cobra.NoArgs,
			RunE: withApp(opts, func(_ context.Context, a *app.App, cmd *cobra.Command, _ []string) error {
				favs, err := a.Watchlist.List(category)
				if err != nil {
					return err
				}
				return emit(opts, cmd.OutOrStdout(), favs, func() string { return notifier.RenderWatchlist(favs) })
			}),
		},
		&cobra.Command{
			Use:   "history TICKER",
			Short: "Show recorded digest snapshots",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(opts, func(_ context.Context, a *app.App, cmd *cobra.Command, args []string) error {
				t, err := model.ParseTicker(args[0])
				if err != nil {
					return err
				}
				snaps, err := a.Watchlist.History(t, 0)
				if err != nil {
					return err
				}
				return emit(opts, cmd.OutOrStdout(), snaps, func() string { return notifier.RenderHistory(t, snaps) })
			}),
		},
	)
	return watch
}

func newETFCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "etf [THEME]",
		Short:   "Find ETFs by theme, or list the themes",
		Example: "  overview etf gold",
		Args:    cobra.MaximumNArgs(1),
		RunE: withApp(opts, func(_ context.Context, a *app.App, cmd *cobra.Command, args []string) error {
			etfs := []model.ETF{}
			if len(args) == 1 {
				etfs = a.Universe.FindETFs(args[0])
			}
			themes := a.Universe.Themes()
			return emit(opts, cmd.OutOrStdout(), etfs, func() string { return notifier.RenderETFs(etfs, themes) })
		}),
	}
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Search tickers in the ETF universe and the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(_ context.Context, a *app.App, cmd *cobra.Command, args []string) error {
			watched, err := a.Watchlist.Tickers()
			if err != nil {
				return err
			}
			matches := a.Universe.SearchTickers(args[0], watched)
			return emit(opts, cmd.OutOrStdout(), matches, func() string { return renderMatches(matches) })
		}),
	}
}

func renderMatches(matches []discovery.Match) string {
	if len(matches) == 0 {
		return "No matches."
	}
	var b strings.Builder
	for i, m := range matches {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-10s %-9s %s", m.Ticker, m.Origin, m.Name)
	}
	return b.String()
}

func newRefreshCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Re-fetch fundamentals for every watched ticker",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app.App, cmd *cobra.Command, _ []string) error {
			if err := a.Scheduler(ctx).RunRefreshNow(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Fundamentals refreshed.")
			return nil
		}),
	}
}

func newDigestCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "digest",
		Short: "Compose the watchlist digest, record snapshots and send it",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app.App, cmd *cobra.Command, _ []string) error {
			msg, err := a.Scheduler(ctx).RunDigestNow(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		}),
	}
}
