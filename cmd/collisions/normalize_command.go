package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/collision-data-etl/internal/adapter/http"
	"github.com/couchcryptid/collision-data-etl/internal/adapter/jsonfile"
	kafkaadapter "github.com/couchcryptid/collision-data-etl/internal/adapter/kafka"
	"github.com/couchcryptid/collision-data-etl/internal/domain"
	"github.com/couchcryptid/collision-data-etl/internal/pipeline"
)

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	var input, output string
	var mock bool

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Normalize raw collision reports and geocode their locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("input") {
				ctx.cfg.InputPath = input
			}
			if flags.Changed("output") {
				ctx.cfg.OutputPath = output
			}
			if flags.Changed("mock") {
				ctx.cfg.GeocodeMock = mock
			}
			if err := ctx.cfg.Validate(); err != nil {
				return err
			}
			return ctx.runNormalize(cmd)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Raw reports file (default $INPUT_PATH)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Processed output file (default $OUTPUT_PATH)")
	cmd.Flags().BoolVar(&mock, "mock", false, "Use synthetic coordinates instead of the geocoding service")

	return cmd
}

func (c *commandContext) runNormalize(cmd *cobra.Command) error {
	runID := uuid.NewString()
	logger := c.logger.With("run_id", runID)
	c.logger = logger
	metrics := processMetrics()

	normalizer := domain.NewNormalizer(c.newResolver(), logger,
		domain.WithCollisionRules(c.rules.CollisionRules),
		domain.WithDefaultState(c.cfg.DefaultState),
	)

	sinks := []pipeline.Sink{jsonfile.NewWriter(c.cfg.OutputPath, logger)}
	if c.cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(c.cfg, runID, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		sinks = append(sinks, writer)
	}

	p := pipeline.New(jsonfile.NewReader(c.cfg.InputPath, logger), normalizer, sinks, logger, metrics)

	if c.cfg.HTTPAddr != "" {
		srv := httpadapter.NewServer(c.cfg.HTTPAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), c.cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	res, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Processed %d records (%d normalized, %d passed through, %d geocoded) in %s\nOutput written to %s\n",
		res.Loaded, res.Normalized, res.PassThrough, res.Geocoded, res.Duration.Round(time.Millisecond), c.cfg.OutputPath)
	return nil
}
