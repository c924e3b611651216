package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/collision-data-etl/internal/adapter/jsonfile"
	"github.com/couchcryptid/collision-data-etl/internal/report"
)

func newSummaryCommand(ctx *commandContext) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show incident counts from a processed file",
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
			writeSummary(cmd.OutOrStdout(), report.Summarize(report.DecodeNormalized(raws)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Processed file (default $OUTPUT_PATH)")
	return cmd
}

func writeSummary(w io.Writer, s report.Summary) {
	fmt.Fprintf(w, "Records: %d (%d with coordinates)\n\n", s.Total, s.Geocoded)

	sections := []struct {
		title  string
		key    string
		counts []report.Count
	}{
		{"Incidents by month", "Month", s.ByMonth},
		{"Incidents by manufacturer", "Manufacturer", s.ByManufacturer},
		{"Collision types", "Type", s.ByCollisionType},
		{"Severity", "Severity", s.BySeverity},
	}
	for _, sec := range sections {
		rows := make([][]string, 0, len(sec.counts))
		for _, c := range sec.counts {
			rows = append(rows, []string{c.Key, strconv.Itoa(c.Count)})
		}
		fmt.Fprintln(w, renderTable(sec.title, []string{sec.key, "Incidents"}, rows, []columnAlignment{alignLeft, alignRight}))
		fmt.Fprintln(w)
	}
}
