// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package csl exports downloaded Zotero records as a CSL-YAML bibliography
// that Pandoc and reference managers can read.
package csl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/zotero-html/pkg/types"
)

// Item represents a bibliographic entry in CSL (Citation Style Language)
// format. Field names follow the CSL-JSON/CSL-YAML schema.
type Item struct {
	ID             string `json:"id" yaml:"id"`
	Type           string `json:"type" yaml:"type"`
	Title          string `json:"title" yaml:"title"`
	Author         []Name `json:"author,omitempty" yaml:"author,omitempty"`
	ContainerTitle string `json:"container-title,omitempty" yaml:"container-title,omitempty"`
	Issued         *Date  `json:"issued,omitempty" yaml:"issued,omitempty"`
	Page           string `json:"page,omitempty" yaml:"page,omitempty"`
	Abstract       string `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	DOI            string `json:"DOI,omitempty" yaml:"DOI,omitempty"`
	URL            string `json:"URL,omitempty" yaml:"URL,omitempty"`
	Note           string `json:"note,omitempty" yaml:"note,omitempty"`
}

// Name represents a person's name in CSL format.
type Name struct {
	Family  string `json:"family,omitempty" yaml:"family,omitempty"`
	Given   string `json:"given,omitempty" yaml:"given,omitempty"`
	Literal string `json:"literal,omitempty" yaml:"literal,omitempty"`
}

// Date represents a date in CSL format using date-parts.
type Date struct {
	DateParts DateParts `json:"date-parts" yaml:"date-parts"`
}

// DateParts holds [[year, month, day], ...]. Zotero emits the parts as
// strings or numbers depending on the field, so decoding accepts both.
type DateParts [][]int

// UnmarshalJSON implements json.Unmarshaler.
func (d *DateParts) UnmarshalJSON(data []byte) error {
	var raw [][]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decoding date-parts: %w", err)
	}
	parts := make(DateParts, 0, len(raw))
	for _, date := range raw {
		var ints []int
		for _, p := range date {
			n, ok := datePart(p)
			if !ok {
				break
			}
			ints = append(ints, n)
		}
		if len(ints) > 0 {
			parts = append(parts, ints)
		}
	}
	*d = parts
	return nil
}

func datePart(v any) (int, bool) {
	switch p := v.(type) {
	case json.Number:
		n, err := p.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(p))
		return n, err == nil
	}
	return 0, false
}

// FromRecord converts the csljson sub-object of r. ok is false when the
// record was downloaded without csljson.
func FromRecord(r types.Record) (item Item, ok bool, err error) {
	raw, found := r.Fields["csljson"]
	if !found || raw == nil {
		return Item{}, false, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return Item{}, false, fmt.Errorf("item %s: encoding csljson: %w", r.Key, err)
	}
	if err := json.Unmarshal(data, &item); err != nil {
		return Item{}, false, fmt.Errorf("item %s: decoding csljson: %w", r.Key, err)
	}
	if item.ID == "" {
		item.ID = r.Key
	}
	if item.Issued != nil && len(item.Issued.DateParts) == 0 {
		item.Issued = nil
	}
	return item, true, nil
}

// Convert converts every record that carries csljson and reports how many
// were skipped.
func Convert(records []types.Record) ([]Item, int, error) {
	items := make([]Item, 0, len(records))
	skipped := 0
	for _, r := range records {
		item, ok, err := FromRecord(r)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			skipped++
			continue
		}
		items = append(items, item)
	}
	return items, skipped, nil
}

// Format writes items as a CSL-YAML list to w.
func Format(items []Item, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}
