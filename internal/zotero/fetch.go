// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package zotero

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/zotero-html/pkg/types"
)

// Result summarizes a download run.
type Result struct {
	// Unchanged is set when the library had not changed since PreviousVersion.
	Unchanged bool

	// Pages and Records count what was downloaded.
	Pages   int
	Records int

	// PreviousVersion is the version read at the start of the run; Version
	// is the one stored at the end (equal when Unchanged).
	PreviousVersion int64
	Version         int64
}

// Fetcher downloads the full item list of a library when it changed since
// the stored version.
type Fetcher struct {
	client   *Client
	versions VersionFile
	metrics  *Metrics
	log      zerolog.Logger
	now      func() time.Time
}

// NewFetcher validates cfg and returns a Fetcher. metrics may be nil.
func NewFetcher(cfg types.ZoteroConfig, httpClient *http.Client, metrics *Metrics, logger zerolog.Logger) (*Fetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Fetcher{
		client:   NewClient(httpClient, cfg),
		versions: VersionFile{Path: cfg.VersionFile},
		metrics:  metrics,
		log:      logger.With().Str("component", "zotero").Logger(),
		now:      time.Now,
	}, nil
}

// Run downloads every page of the library and writes the records as one
// JSON array to outPath. Nothing is written when the library is unchanged
// or when any page fails. The stored version advances only after the
// output file is in place.
func (f *Fetcher) Run(ctx context.Context, outPath string) (Result, error) {
	previous, err := f.versions.Read()
	if err != nil {
		f.log.Debug().Err(err).Msg("no usable stored version, downloading everything")
		previous = 0
	}
	f.log.Info().Int64("version", previous).Msg("starting download")

	var (
		records []json.RawMessage
		version int64
		pages   int
		start   int
	)
	for {
		page, err := f.client.FetchPage(ctx, previous, start)
		f.observe(page, err)
		if err != nil {
			return Result{}, err
		}

		if page.NotModified {
			if pages == 0 {
				f.log.Info().Int64("version", previous).Msg("no change")
				f.metrics.observeSuccess(previous, f.now())
				return Result{Unchanged: true, PreviousVersion: previous, Version: previous}, nil
			}
			return Result{}, fmt.Errorf("%w: page start=%d not modified after version %d was announced",
				ErrRemoteInconsistent, start, version)
		}

		if pages == 0 {
			if !page.HasVersion {
				return Result{}, fmt.Errorf("%w: missing %s header", ErrRemoteInconsistent, headerLastModifiedVersion)
			}
			version = page.LibraryVersion
			f.log.Info().Int64("version", version).Msg("downloading new version of bibliography")
		}

		pages++
		records = append(records, page.Records...)
		f.metrics.observePage(len(page.Records))
		f.log.Debug().
			Int("offset", start).
			Int("records", len(page.Records)).
			Bool("has_next", page.HasNext).
			Int("next", page.Next).
			Msg("fetched page")

		if !page.HasNext {
			break
		}
		if page.Next <= start {
			return Result{}, fmt.Errorf("%w: next start %d after start %d", ErrPaginationRegressed, page.Next, start)
		}
		start = page.Next
	}

	if len(records) > 0 {
		if err := writeRecords(outPath, records); err != nil {
			return Result{}, err
		}
		f.log.Info().Str("path", outPath).Int("records", len(records)).Msg("wrote bibliography")
	} else {
		f.log.Info().Msg("library has no matching records, output not written")
	}

	if err := f.versions.Write(version); err != nil {
		return Result{}, err
	}
	f.metrics.observeSuccess(version, f.now())

	return Result{
		Pages:           pages,
		Records:         len(records),
		PreviousVersion: previous,
		Version:         version,
	}, nil
}

func (f *Fetcher) observe(page Page, err error) {
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr):
		f.metrics.observeRequest(statusErr.StatusCode)
		f.log.Error().Int("status_code", statusErr.StatusCode).Int("offset", statusErr.Start).Msg("unexpected response")
	case err != nil:
	case page.NotModified:
		f.metrics.observeRequest(http.StatusNotModified)
	default:
		f.metrics.observeRequest(http.StatusOK)
	}
}

// writeRecords writes the records as an indented JSON array.
func writeRecords(path string, records []json.RawMessage) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}
	data = append(data, '\n')
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
