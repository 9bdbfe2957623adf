package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"MarketOverview/internal/app"
	"MarketOverview/internal/config"
	"MarketOverview/internal/logger"
)

type rootOptions struct {
	configPath string
	envFile    string
	json       bool
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "overview",
		Short: "Financial overview and comparison engine",
		Long: `overview aggregates fundamentals, price analytics, news sentiment and peer
valuation for a security into one snapshot, and compares two securities side
by side. Every upstream failure degrades to cache, synthetic or unavailable
data instead of an error.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.envFile != "" {
				config.LoadDotEnv(opts.envFile)
			} else {
				config.LoadDotEnv()
			}
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			logger.Init(cfg.Log.Env)
			opts.cfg = cfg
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to config file (default "+config.DefaultPath()+")")
	pf.StringVar(&opts.envFile, "env-file", "", "load environment variables from this file instead of ./.env")
	pf.BoolVar(&opts.json, "json", false, "print JSON instead of the terminal view")

	root.AddCommand(
		newOverviewCmd(opts),
		newCompareCmd(opts),
		newNewsCmd(opts),
		newWatchCmd(opts),
		newETFCmd(opts),
		newSearchCmd(opts),
		newRefreshCmd(opts),
		newDigestCmd(opts),
		newServeCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "overview %s (commit: %s)\n", version, commit)
			},
		},
	)
	return root
}

// withApp builds the component graph for one command run and closes it
// afterwards.
func withApp(opts *rootOptions, run func(ctx context.Context, a *app.App, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := app.New(opts.cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd.Context(), a, cmd, args)
	}
}

// emit prints v as indented JSON when --json is set, or the rendered
// terminal view otherwise.
func emit(opts *rootOptions, w io.Writer, v any, render func() string) error {
	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, render())
	return err
}
