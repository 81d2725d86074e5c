// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package zotero downloads a tagged bibliography from the Zotero Web API v3.
// Downloads are conditional on the last synchronized library version and
// walk every result page through the Link header.
package zotero

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/zotero-html/internal/httputil"
	"github.com/pdiddy/zotero-html/pkg/types"
)

const (
	apiVersion       = "3"
	defaultPageLimit = 100
	maxErrorBody     = 512

	headerIfModifiedSinceVersion = "If-Modified-Since-Version"
	headerLastModifiedVersion    = "Last-Modified-Version"
	headerAPIVersion             = "Zotero-API-Version"
)

// Page is one response of the items endpoint.
type Page struct {
	// NotModified is set when the library has not changed since the
	// requested version. No other field is populated then.
	NotModified bool

	// Records holds the items of this page, undecoded.
	Records []json.RawMessage

	// LibraryVersion is the Last-Modified-Version header; HasVersion is
	// false when the header is absent.
	LibraryVersion int64
	HasVersion     bool

	// Next is the start offset of the following page; HasNext is false on
	// the last page.
	Next    int
	HasNext bool
}

// Client fetches single pages of a Zotero library's items.
type Client struct {
	HTTP *http.Client
	cfg  types.ZoteroConfig
}

// NewClient returns a Client for the library and tag in cfg.
func NewClient(httpClient *http.Client, cfg types.ZoteroConfig) *Client {
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = defaultPageLimit
	}
	return &Client{HTTP: httpClient, cfg: cfg}
}

// itemsURL builds the items request for the page starting at start.
func (c *Client) itemsURL(start int) string {
	params := url.Values{
		"v":       {apiVersion},
		"sort":    {"date"},
		"format":  {"json"},
		"include": {"bib,csljson"},
		"start":   {strconv.Itoa(start)},
		"limit":   {strconv.Itoa(c.cfg.PageLimit)},
	}
	if c.cfg.SearchTag != "" {
		params.Set("tag", c.cfg.SearchTag)
	}
	if c.cfg.CiteprocStyle != "" {
		params.Set("style", c.cfg.CiteprocStyle)
	}
	base := strings.TrimRight(c.cfg.APIBase, "/")
	prefix := strings.Trim(c.cfg.SearchPrefixURI, "/")
	return base + "/" + prefix + "/items?" + params.Encode()
}

// FetchPage requests the page starting at start, conditional on the library
// having changed since sinceVersion.
func (c *Client) FetchPage(ctx context.Context, sinceVersion int64, start int) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.itemsURL(start), nil)
	if err != nil {
		return Page{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set(headerIfModifiedSinceVersion, strconv.FormatInt(sinceVersion, 10))
	req.Header.Set(headerAPIVersion, apiVersion)
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("Zotero API request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		return Page{NotModified: true}, nil
	case http.StatusOK:
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Page{}, &StatusError{
			StatusCode: resp.StatusCode,
			Start:      start,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page.Records); err != nil {
		return Page{}, fmt.Errorf("parsing Zotero response (start=%d): %w", start, err)
	}

	if v := resp.Header.Get(headerLastModifiedVersion); v != "" {
		version, err := strconv.ParseInt(v, 10, 64)
		if err != nil || version < 0 {
			return Page{}, fmt.Errorf("%w: invalid %s header %q", ErrRemoteInconsistent, headerLastModifiedVersion, v)
		}
		page.LibraryVersion = version
		page.HasVersion = true
	}

	page.Next, page.HasNext = httputil.NextStart(resp.Header.Get("Link"))
	return page, nil
}
