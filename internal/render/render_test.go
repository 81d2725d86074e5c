// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/zotero-html/internal/zotero"
	"github.com/pdiddy/zotero-html/pkg/types"
)

// fakeTemplates renders every template as a bracketed marker so tests can
// check fragment order.
type fakeTemplates struct {
	fail string
}

func (f fakeTemplates) Render(name string, data map[string]any) (string, error) {
	if name == f.fail {
		return "", errors.New("boom")
	}
	switch name {
	case TemplateYear:
		return fmt.Sprintf("[year %v]", data["year"]), nil
	case TemplateEntry:
		return fmt.Sprintf("[entry %v]", data["key"]), nil
	case TemplateFooter:
		return fmt.Sprintf("[footer %v|%v]", data["css"], data["js"]), nil
	case TemplateCSS:
		return "css", nil
	case TemplateJS:
		return "js", nil
	}
	return "", fmt.Errorf("unknown template %q", name)
}

func recordsJSON(t *testing.T, dates ...string) []types.Record {
	t.Helper()
	var items []string
	for i, d := range dates {
		meta := "{}"
		if d != "" {
			meta = fmt.Sprintf(`{"parsedDate": %q}`, d)
		}
		items = append(items, fmt.Sprintf(`{"key": "K%d", "meta": %s, "csljson": {}, "links": {}}`, i, meta))
	}
	records, err := LoadRecords(strings.NewReader("[" + strings.Join(items, ",") + "]"))
	require.NoError(t, err)
	return records
}

func newTestRenderer(tmpl TemplateRenderer) *Renderer {
	return New(tmpl, types.RenderConfig{TemplateDir: "unused", LibraryURL: libraryURL}, zerolog.Nop())
}

func TestRenderSectionBoundaries(t *testing.T) {
	records := recordsJSON(t, "2020-05-01", "2020-01-01", "2019-12", "2019")

	var out bytes.Buffer
	summary, err := newTestRenderer(fakeTemplates{}).Render(records, &out)
	require.NoError(t, err)

	assert.Equal(t,
		"[year 2020][entry K0][entry K1][year 2019][entry K2][entry K3][footer css|js]",
		out.String())
	assert.Equal(t, Summary{Sections: 2, Entries: 4}, summary)
}

func TestRenderUnknownDates(t *testing.T) {
	records := recordsJSON(t, "", "", "2018", "")

	var out bytes.Buffer
	summary, err := newTestRenderer(fakeTemplates{}).Render(records, &out)
	require.NoError(t, err)

	assert.Equal(t,
		"[year Unknown Publication Date][entry K0][entry K1][year 2018][entry K2][year Unknown Publication Date][entry K3][footer css|js]",
		out.String())
	assert.Equal(t, 3, summary.Sections)
}

func TestRenderEmpty(t *testing.T) {
	var out bytes.Buffer
	summary, err := newTestRenderer(fakeTemplates{}).Render(nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "[footer css|js]", out.String())
	assert.Equal(t, Summary{}, summary)
}

func TestRenderTemplateError(t *testing.T) {
	records := recordsJSON(t, "2020")
	for _, name := range []string{TemplateYear, TemplateEntry, TemplateCSS, TemplateJS, TemplateFooter} {
		t.Run(name, func(t *testing.T) {
			_, err := newTestRenderer(fakeTemplates{fail: name}).Render(records, &bytes.Buffer{})
			assert.Error(t, err)
		})
	}
}

func TestLoadRecordsInvalid(t *testing.T) {
	_, err := LoadRecords(strings.NewReader(`{"key": "not an array"}`))
	assert.Error(t, err)

	_, err = LoadRecords(strings.NewReader(`[{"key": "ok"}, "not an object"]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1")
}

func TestLoadTemplates(t *testing.T) {
	tmpl, err := LoadTemplates(filepath.Join("..", "..", "tmpl"))
	require.NoError(t, err)

	got, err := tmpl.Render(TemplateYear, map[string]any{"year": "2021"})
	require.NoError(t, err)
	assert.Contains(t, got, "2021")

	_, err = tmpl.Render("missing.html", nil)
	assert.Error(t, err)
}

func TestEntryTemplateWithoutKey(t *testing.T) {
	tmpl, err := LoadTemplates(filepath.Join("..", "..", "tmpl"))
	require.NoError(t, err)

	got, err := tmpl.Render(TemplateEntry, map[string]any{"bibclean": "cite", "more": []string{"m"}})
	require.NoError(t, err)
	assert.NotContains(t, got, "no value")
	assert.NotContains(t, got, "id=")
	assert.Contains(t, got, `<div class="bib-entry">`)
	assert.Contains(t, got, "<li>m</li>")

	got, err = tmpl.Render(TemplateEntry, map[string]any{"key": "K1", "bibclean": "cite"})
	require.NoError(t, err)
	assert.Contains(t, got, `id="zotero-K1"`)
	assert.Contains(t, got, `data-target="more-K1"`)
	assert.Contains(t, got, `id="more-K1"`)
}

func TestLoadTemplatesMissingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, TemplateYear+".tmpl"), []byte("{{.year}}"), 0o644))

	_, err := LoadTemplates(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), TemplateEntry)
}

func TestLoadTemplatesParseError(t *testing.T) {
	dir := t.TempDir()
	for _, name := range templateNames {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".tmpl"), []byte("ok"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, TemplateEntry+".tmpl"), []byte("{{.key"), 0o644))

	_, err := LoadTemplates(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing template "+TemplateEntry)
}

const sampleItem = `{
  "key": "ABCD2345",
  "version": 1187,
  "library": {"type": "group", "id": 14159, "name": "grouplens"},
  "links": {
    "self": {"href": "https://api.zotero.org/groups/14159/items/ABCD2345", "type": "application/json"},
    "alternate": {"href": "https://www.zotero.org/groups/grouplens/items/ABCD2345", "type": "text/html"}
  },
  "meta": {"creatorSummary": "Konstan and Riedl", "parsedDate": "2012-04", "numChildren": 1},
  "bib": "<div class=\"csl-bib-body\"><div class=\"csl-entry\"><div class=\"csl-left-margin\">1.</div><div class=\"csl-right-inline\">Joseph A. Konstan and John Riedl. 2012. <i>Recommender systems: from algorithms to user experience</i>.</div></div></div>",
  "csljson": {
    "id": "14159/ABCD2345",
    "type": "article-journal",
    "title": "Recommender systems: from algorithms to user experience",
    "note": "Invited paper\nhttps://grouplens.org/papers/konstan2012.pdf",
    "URL": "https://doi.org/10.1007/s11257-011-9112-x",
    "issued": {"date-parts": [["2012", 4]]},
    "page": "101-123",
    "volume": 22
  }
}`

// TestDownloadThenRender runs the downloader against a fake API and renders
// what it wrote: every field must reach the template as fetched.
func TestDownloadThenRender(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Last-Modified-Version", "1187")
		w.Header().Set("Link", `<https://www.zotero.org/groups/grouplens/items>; rel="alternate"`)
		fmt.Fprint(w, "["+sampleItem+"]")
	}))
	defer ts.Close()

	dir := t.TempDir()
	bibPath := filepath.Join(dir, "bib.json")
	f, err := zotero.NewFetcher(types.ZoteroConfig{
		APIBase:         ts.URL,
		SearchPrefixURI: "groups/14159",
		VersionFile:     filepath.Join(dir, "version"),
	}, ts.Client(), nil, zerolog.Nop())
	require.NoError(t, err)
	_, err = f.Run(context.Background(), bibPath)
	require.NoError(t, err)

	file, err := os.Open(bibPath)
	require.NoError(t, err)
	defer file.Close()
	records, err := LoadRecords(file)
	require.NoError(t, err)
	require.Len(t, records, 1)

	entry, err := NewEntry(records[0], libraryURL)
	require.NoError(t, err)
	ctx := entry.Context()

	// Every original field survives verbatim.
	var original map[string]any
	dec := json.NewDecoder(strings.NewReader(sampleItem))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&original))
	for k, v := range original {
		assert.Equal(t, v, ctx[k], "field %s", k)
	}

	assert.Equal(t, "Joseph A. Konstan and John Riedl. 2012. <i>Recommender systems: from algorithms to user experience</i>.", ctx["bibclean"])
	assert.Equal(t, []string{
		"Invited paper",
		`<a href="https://grouplens.org/papers/konstan2012.pdf">https://grouplens.org/papers/konstan2012.pdf</a>`,
		`<a href="https://doi.org/10.1007/s11257-011-9112-x">https://doi.org/10.1007/s11257-011-9112-x</a>`,
		`zotero: <a href="https://www.zotero.org/groups/grouplens/items/itemKey/ABCD2345">https://www.zotero.org/groups/grouplens/items/itemKey/ABCD2345</a>`,
	}, ctx["more"])

	tmpl, err := LoadTemplates(filepath.Join("..", "..", "tmpl"))
	require.NoError(t, err)
	var out bytes.Buffer
	_, err = newTestRenderer(tmpl).Render(records, &out)
	require.NoError(t, err)

	html := out.String()
	assert.Contains(t, html, `<h3 class="bib-year">2012</h3>`)
	assert.Contains(t, html, `id="zotero-ABCD2345"`)
	assert.Contains(t, html, "<i>Recommender systems: from algorithms to user experience</i>")
	assert.Contains(t, html, "<li>Invited paper</li>")
	assert.Contains(t, html, "<style")
	assert.Contains(t, html, ".bib-entry")
	assert.Contains(t, html, "<script")
	assert.Less(t, strings.Index(html, "bib-year"), strings.Index(html, "bib-citation"))
	assert.Less(t, strings.Index(html, "bib-citation"), strings.Index(html, "<style"))
}
