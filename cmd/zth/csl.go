// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/zotero-html/internal/csl"
)

func newCSLCmd(a *app) *cobra.Command {
	var out, in string

	cmd := &cobra.Command{
		Use:   "csl",
		Short: "Export downloaded records as a CSL-YAML bibliography",
		Long: `Csl converts the csljson of each downloaded record into a CSL-YAML list
that Pandoc can cite from. Records downloaded without csljson are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(cmd, in)
			if err != nil {
				return err
			}
			items, skipped, err := csl.Convert(records)
			if err != nil {
				return err
			}
			if skipped > 0 {
				a.log.Warn().Int("skipped", skipped).Msg("records without csljson")
			}

			var buf bytes.Buffer
			if err := csl.Format(items, &buf); err != nil {
				return fmt.Errorf("formatting CSL-YAML: %w", err)
			}
			if err := writeOutput(out, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d CSL items to %s\n", len(items), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output CSL-YAML file")
	cmd.Flags().StringVar(&in, "in", "-", "input JSON file (- for stdin)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
