package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/collision-data-etl/internal/adapter/jsonfile"
	"github.com/couchcryptid/collision-data-etl/internal/report"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a processed file for integrity problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ctx.cfg.OutputPath
			if input != "" {
				path = input
			}

			raws, err := jsonfile.NewReader(path, ctx.logger).Load(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			findings := report.Validate(raws, ctx.rules)
			if len(findings) == 0 {
				fmt.Fprintf(out, "All %d records passed validation.\n", len(raws))
				return nil
			}

			rows := make([][]string, 0, len(findings))
			for _, f := range findings {
				rows = append(rows, []string{strconv.Itoa(f.Index), f.ID, f.Message})
			}
			fmt.Fprintln(out, renderTable("", []string{"Record", "ID", "Problem"}, rows, []columnAlignment{alignRight}))
			return fmt.Errorf("validation failed: %d problems in %d records", len(findings), len(raws))
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Processed file (default $OUTPUT_PATH)")
	return cmd
}
