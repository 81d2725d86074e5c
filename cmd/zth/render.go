// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/zotero-html/internal/render"
	"github.com/pdiddy/zotero-html/pkg/types"
)

func newRenderCmd(a *app) *cobra.Command {
	var out, in string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render downloaded records into HTML fragments",
		Long: `Render reads the JSON array written by download (or stdin) and writes a
heading per publication year, an entry per record, and a trailer holding
the CSS and JS. Templates are read from ZTH_TEMPLATE_DIR.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Render.Validate(); err != nil {
				return err
			}
			tmpl, err := render.LoadTemplates(a.cfg.Render.TemplateDir)
			if err != nil {
				return err
			}
			records, err := readRecords(cmd, in)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			summary, err := render.New(tmpl, a.cfg.Render, a.log).Render(records, &buf)
			if err != nil {
				return err
			}
			if err := writeOutput(out, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d entries in %d year sections to %s\n",
				summary.Entries, summary.Sections, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output HTML file")
	cmd.Flags().StringVar(&in, "in", "-", "input JSON file (- for stdin)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// readRecords loads records from path, or from stdin when path is "-".
func readRecords(cmd *cobra.Command, path string) ([]types.Record, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening records: %w", err)
		}
		defer f.Close()
		r = f
	}
	return render.LoadRecords(r)
}

// writeOutput writes a fully rendered result, creating the parent directory.
func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
