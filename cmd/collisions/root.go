package main

import (
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/collision-data-etl/internal/config"
	"github.com/couchcryptid/collision-data-etl/internal/domain"
	"github.com/couchcryptid/collision-data-etl/internal/observability"
)

// processMetrics registers the Prometheus collectors once per process.
var processMetrics = sync.OnceValue(observability.NewMetrics)

// commandContext carries the configuration shared by every subcommand.
type commandContext struct {
	cfg    *config.Config
	rules  domain.Rules
	logger *slog.Logger
}

func (c *commandContext) load() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.rules = rules
	c.logger = observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	return nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "collisions",
		Short:         "Normalize and inspect autonomous-vehicle collision reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newNormalizeCommand(ctx))
	rootCmd.AddCommand(newSummaryCommand(ctx))
	rootCmd.AddCommand(newValidateCommand(ctx))
	rootCmd.AddCommand(newGeocodeCommand(ctx))

	return rootCmd
}
