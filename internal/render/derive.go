// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/zotero-html/pkg/types"
)

// hyperlinkPattern matches a bare http(s) URL up to the next space.
var hyperlinkPattern = regexp.MustCompile(`(https?://[^ ]+)`)

// citationSelectors are tried in order to find the citation body inside the
// bib HTML Zotero returns. Styles with a left margin (numbered styles) put
// the text in csl-right-inline; the others only have csl-entry.
var citationSelectors = []string{"div.csl-right-inline", "div.csl-entry"}

// Hyperlink wraps every bare URL in s in an <a> tag.
func Hyperlink(s string) string {
	return hyperlinkPattern.ReplaceAllString(s, `<a href="${1}">${1}</a>`)
}

// SplitLines splits s on line breaks and drops empty lines.
func SplitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// CleanCitation strips the csl-bib-body wrapper from a bib fragment and
// returns the inner HTML of the citation itself. It returns "" when bib has
// no citation element.
func CleanCitation(bib string) (string, error) {
	if strings.TrimSpace(bib) == "" {
		return "", nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(bib))
	if err != nil {
		return "", fmt.Errorf("parsing citation HTML: %w", err)
	}
	for _, sel := range citationSelectors {
		found := doc.Find(sel).First()
		if found.Length() == 0 {
			continue
		}
		inner, err := found.Html()
		if err != nil {
			return "", fmt.Errorf("serializing citation HTML: %w", err)
		}
		return strings.TrimSpace(inner), nil
	}
	return "", nil
}

// EditLink returns a link that opens the item in the Zotero web library
// with an edit button. The API's alternate link lacks one; inserting the
// itemKey segment after "items" fixes that. Without an alternate link the
// library URL is returned.
func EditLink(alternateHref, libraryURL string) string {
	if alternateHref == "" {
		return libraryURL
	}
	u, err := url.Parse(alternateHref)
	if err != nil {
		return strings.Replace(alternateHref, "/items", "/items/itemKey", 1)
	}
	segments := strings.Split(u.Path, "/")
	for i, seg := range segments {
		if seg == "items" {
			segments[i] = "items/itemKey"
			break
		}
	}
	u.Path = strings.Join(segments, "/")
	u.RawPath = ""
	return u.String()
}

// MoreInfo builds the "more info" lines of an entry: the note split into
// lines, the item URL, and the Zotero edit link. Each line is HTML-escaped
// and then has its URLs hyperlinked.
func MoreInfo(r types.Record, libraryURL string) []string {
	lines := SplitLines(r.Note)
	if r.URL != "" {
		lines = append(lines, r.URL)
	}
	lines = append(lines, "zotero: "+EditLink(r.AlternateHref, libraryURL))
	for i, line := range lines {
		lines[i] = Hyperlink(html.EscapeString(line))
	}
	return lines
}

// Entry is a record with its presentation fields.
type Entry struct {
	Record   types.Record
	BibClean string
	More     []string
}

// NewEntry derives the presentation fields of r.
func NewEntry(r types.Record, libraryURL string) (Entry, error) {
	bib, err := CleanCitation(r.Bib)
	if err != nil {
		return Entry{}, fmt.Errorf("item %s: %w", r.Key, err)
	}
	return Entry{
		Record:   r,
		BibClean: bib,
		More:     MoreInfo(r, libraryURL),
	}, nil
}

// Context returns the template data for the entry: every field of the
// record as fetched, plus bibclean and more.
func (e Entry) Context() map[string]any {
	ctx := make(map[string]any, len(e.Record.Fields)+2)
	for k, v := range e.Record.Fields {
		ctx[k] = v
	}
	ctx["bibclean"] = e.BibClean
	ctx["more"] = e.More
	return ctx
}
