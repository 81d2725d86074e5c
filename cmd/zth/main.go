// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the zth CLI. zth downloads a Zotero
// library when it changed since the last run and renders the records into
// HTML fragments for a static site.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/zotero-html/internal/config"
	"github.com/pdiddy/zotero-html/internal/logging"
	"github.com/pdiddy/zotero-html/internal/secrets"
	"github.com/pdiddy/zotero-html/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// app carries what every subcommand needs once the root command has set
// up configuration and logging.
type app struct {
	cfg    types.Config
	log    zerolog.Logger
	closer io.Closer
}

// Close flushes and closes the log output.
func (a *app) Close() error {
	if a == nil || a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "zth",
		Short: "Publish a Zotero library as HTML fragments",
		Long: `zth downloads the items of a Zotero user or group library and turns them
into HTML fragments (one per publication year and item) plus CSS and JS for
a static site.

The download stage only fetches when the library version moved past the one
stored in the version file. The render stage reads the downloaded JSON and
runs it through the templates in the template directory.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			// Fail on a missing -o before touching configuration or files.
			if err := cmd.ValidateRequiredFlags(); err != nil {
				return err
			}
			cfgFile, _ := cmd.Flags().GetString("config")
			return a.setup(cmd.ErrOrStderr(), cfgFile)
		},
	}
	root.PersistentFlags().String("config", "", "config file (default: ./zth.yaml or ~/.config/zth/zth.yaml)")

	root.AddCommand(
		newDownloadCmd(a),
		newRenderCmd(a),
		newCSLCmd(a),
		newVersionCmd(),
	)
	return root, a
}

// setup loads secrets, configuration and the logger, in that order.
func (a *app) setup(stderr io.Writer, cfgFile string) error {
	boot := zerolog.New(stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()
	s, err := secrets.Load(secrets.DefaultDir, boot)
	if err != nil {
		return err
	}

	cfg, err := config.Load(viper.New(), config.Options{
		ConfigFile: cfgFile,
		Dir:        ".",
		Secrets:    s,
		Version:    version,
	})
	if err != nil {
		return err
	}

	logger, closer, err := logging.Setup(cfg.Logging, stderr)
	if err != nil {
		return err
	}
	a.cfg, a.log, a.closer = cfg, logger, closer

	if names := s.Names(); len(names) > 0 {
		a.log.Debug().Strs("secrets", names).Msg("loaded secrets")
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root, a := newRootCmd()
	err := root.ExecuteContext(ctx)
	stop()
	if cerr := a.Close(); cerr != nil {
		fmt.Fprintln(os.Stderr, "closing log:", cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}
