// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns downloaded Zotero records into HTML fragments: a
// heading per publication year, one entry per record, and a trailer with
// the page's style and script.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/pdiddy/zotero-html/pkg/types"
)

// LoadRecords decodes a JSON array of Zotero items.
func LoadRecords(r io.Reader) ([]types.Record, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing records: %w", err)
	}
	records := make([]types.Record, 0, len(raw))
	for i, item := range raw {
		rec, err := types.ParseRecord(item)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Summary counts the fragments written by Render.
type Summary struct {
	Sections int
	Entries  int
}

// Renderer writes records as template fragments.
type Renderer struct {
	tmpl       TemplateRenderer
	libraryURL string
	log        zerolog.Logger
}

// New returns a Renderer using tmpl for every fragment.
func New(tmpl TemplateRenderer, cfg types.RenderConfig, logger zerolog.Logger) *Renderer {
	return &Renderer{
		tmpl:       tmpl,
		libraryURL: cfg.LibraryURL,
		log:        logger.With().Str("component", "render").Logger(),
	}
}

// Render writes, in record order, a year fragment whenever the publication
// year changes followed by an entry fragment per record, then the trailer.
func (r *Renderer) Render(records []types.Record, w io.Writer) (Summary, error) {
	entries := make([]Entry, len(records))
	for i, rec := range records {
		e, err := NewEntry(rec, r.libraryURL)
		if err != nil {
			return Summary{}, err
		}
		entries[i] = e
	}

	var (
		summary Summary
		current types.PublicationYear
	)
	for i, e := range entries {
		if i == 0 || e.Record.Year != current {
			current = e.Record.Year
			if err := r.emit(w, TemplateYear, map[string]any{"year": current.String()}); err != nil {
				return summary, err
			}
			summary.Sections++
		}
		if err := r.emit(w, TemplateEntry, e.Context()); err != nil {
			return summary, err
		}
		summary.Entries++
	}

	if err := r.writeTrailer(w); err != nil {
		return summary, err
	}
	r.log.Info().Int("sections", summary.Sections).Int("entries", summary.Entries).Msg("rendered bibliography")
	return summary, nil
}

// writeTrailer renders the style and script and embeds both in the footer.
func (r *Renderer) writeTrailer(w io.Writer) error {
	css, err := r.tmpl.Render(TemplateCSS, nil)
	if err != nil {
		return err
	}
	js, err := r.tmpl.Render(TemplateJS, nil)
	if err != nil {
		return err
	}
	return r.emit(w, TemplateFooter, map[string]any{"css": css, "js": js})
}

func (r *Renderer) emit(w io.Writer, name string, data map[string]any) error {
	fragment, err := r.tmpl.Render(name, data)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, fragment); err != nil {
		return fmt.Errorf("writing %s fragment: %w", name, err)
	}
	return nil
}
