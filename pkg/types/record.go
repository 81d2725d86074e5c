// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the records and configuration shared by the zth
// download and render stages.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// UnknownPublicationDate is the section label for records without a parsed date.
const UnknownPublicationDate = "Unknown Publication Date"

// PublicationYear is the year a record is filed under. Known is false when
// the record carries no usable meta.parsedDate.
type PublicationYear struct {
	Year  int
	Known bool
}

// String returns the year, or UnknownPublicationDate.
func (y PublicationYear) String() string {
	if !y.Known {
		return UnknownPublicationDate
	}
	return strconv.Itoa(y.Year)
}

// Record is one Zotero item as returned with include=bib,csljson.
//
// Fields holds the item exactly as decoded (numbers as json.Number) so it
// can be written back or handed to templates unchanged. The remaining
// fields are the typed view the renderer uses; optional sub-fields take
// their defaults here and nowhere else.
type Record struct {
	Fields map[string]any

	// Key is the Zotero item key.
	Key string

	// Year comes from meta.parsedDate (first four characters).
	Year PublicationYear

	// Bib is the citation HTML produced by the server for the requested style.
	Bib string

	// Note is csljson.note; empty when absent.
	Note string

	// URL is csljson.URL; empty when absent.
	URL string

	// AlternateHref is links.alternate.href; empty when absent.
	AlternateHref string
}

// wireRecord mirrors the subset of the Zotero item JSON we read.
type wireRecord struct {
	Key  string `json:"key"`
	Meta struct {
		ParsedDate *string `json:"parsedDate"`
	} `json:"meta"`
	Bib     string `json:"bib"`
	CSLJSON struct {
		Note *string `json:"note"`
		URL  *string `json:"URL"`
	} `json:"csljson"`
	Links map[string]struct {
		Href string `json:"href"`
	} `json:"links"`
}

// ParseRecord decodes one item object.
func ParseRecord(data []byte) (Record, error) {
	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return Record{}, fmt.Errorf("decoding item: %w", err)
	}

	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return Record{}, fmt.Errorf("decoding item fields: %w", err)
	}

	r := Record{
		Fields: fields,
		Key:    w.Key,
		Bib:    w.Bib,
	}
	if w.Meta.ParsedDate != nil {
		r.Year = parseYear(*w.Meta.ParsedDate)
	}
	if w.CSLJSON.Note != nil {
		r.Note = *w.CSLJSON.Note
	}
	if w.CSLJSON.URL != nil {
		r.URL = *w.CSLJSON.URL
	}
	if alt, ok := w.Links["alternate"]; ok {
		r.AlternateHref = alt.Href
	}
	return r, nil
}

// parseYear reads the leading YYYY of a Zotero parsedDate ("2019", "2019-05",
// "2019-05-01").
func parseYear(parsedDate string) PublicationYear {
	if len(parsedDate) < 4 {
		return PublicationYear{}
	}
	year, err := strconv.Atoi(parsedDate[:4])
	if err != nil {
		return PublicationYear{}
	}
	return PublicationYear{Year: year, Known: true}
}
