// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pdiddy/zotero-html/internal/zotero"
)

func newDownloadCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the Zotero library if it changed since the last run",
		Long: `Download fetches every item matching the configured tag, 100 per page,
and writes them as one JSON array to the output file. When the library is
unchanged since the version stored in ZTH_VERSION_FILE nothing is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			metrics := zotero.NewMetrics()
			httpClient := &http.Client{Timeout: a.cfg.Zotero.Timeout}

			f, err := zotero.NewFetcher(a.cfg.Zotero, httpClient, metrics, a.log)
			if err != nil {
				return err
			}

			res, runErr := f.Run(cmd.Context(), out)
			if path := a.cfg.Zotero.MetricsFile; path != "" {
				if err := metrics.WriteTextfile(path); err != nil {
					a.log.Warn().Err(err).Str("path", path).Msg("writing metrics")
				}
			}
			if runErr != nil {
				return runErr
			}

			if res.Unchanged {
				fmt.Fprintf(cmd.OutOrStdout(), "Library unchanged at version %d\n", res.Version)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %d records in %d pages (version %d -> %d)\n",
				res.Records, res.Pages, res.PreviousVersion, res.Version)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output JSON file")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
