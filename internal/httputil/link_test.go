// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	linkWithNext = `<https://api.zotero.org/groups/14159/items?include=bib%2Ccsljson&limit=100&sort=date&start=300&style=acm-sigchi-proceedings&v=3>; rel="next", ` +
		`<https://api.zotero.org/groups/14159/items?include=bib%2Ccsljson&limit=100&sort=date&start=400&style=acm-sigchi-proceedings&v=3>; rel="last", ` +
		`<https://www.zotero.org/groups/14159/items>; rel="alternate"`

	linkWithoutNext = `<https://api.zotero.org/groups/14159/items?include=bib%2Ccsljson&limit=100&sort=date&style=acm-sigchi-proceedings&v=3>; rel="first", ` +
		`<https://www.zotero.org/groups/14159/items>; rel="alternate"`

	// Middle page: first and prev come before next and carry smaller starts.
	linkMiddlePage = `<https://api.zotero.org/groups/1/items?limit=100>; rel="first", ` +
		`<https://api.zotero.org/groups/1/items?limit=100&start=100>; rel="prev", ` +
		`<https://api.zotero.org/groups/1/items?limit=100&start=300>; rel="next", ` +
		`<https://api.zotero.org/groups/1/items?limit=100&start=900>; rel="last"`
)

func TestParseLinks(t *testing.T) {
	got := ParseLinks(linkWithNext)
	assert.Len(t, got, 3)
	assert.Equal(t, "https://www.zotero.org/groups/14159/items", got["alternate"])
	assert.Contains(t, got["next"], "start=300")
	assert.Contains(t, got["last"], "start=400")
}

func TestParseLinksEdgeCases(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   map[string]string
	}{
		{"empty", "", map[string]string{}},
		{"garbage", "not a link header", map[string]string{}},
		{"unterminated target", "<https://example.com; rel=\"next\"", map[string]string{}},
		{"no rel", "<https://example.com/a>; type=\"text/html\"", map[string]string{}},
		{"unquoted rel", "<https://example.com/a>; rel=next", map[string]string{"next": "https://example.com/a"}},
		{"multiple rels", `<https://example.com/a>; rel="next last"`, map[string]string{"next": "https://example.com/a", "last": "https://example.com/a"}},
		{"case insensitive", `<https://example.com/a>; REL="Next"`, map[string]string{"next": "https://example.com/a"}},
		{"first occurrence wins", `<https://example.com/a>; rel="next", <https://example.com/b>; rel="next"`, map[string]string{"next": "https://example.com/a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLinks(tt.header))
		})
	}
}

func TestNextStart(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantStart int
		wantOK    bool
	}{
		{"next present", linkWithNext, 300, true},
		{"no next relation", linkWithoutNext, 0, false},
		{"next after first and prev", linkMiddlePage, 300, true},
		{"empty header", "", 0, false},
		{"next without start", `<https://api.zotero.org/groups/1/items?limit=100>; rel="next"`, 0, false},
		{"next with non-numeric start", `<https://api.zotero.org/groups/1/items?start=abc>; rel="next"`, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, ok := NextStart(tt.header)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantStart, start)
		})
	}
}
