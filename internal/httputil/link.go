// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"net/url"
	"strconv"
	"strings"
)

// ParseLinks parses an RFC 8288 Link header into a map of relation type to
// target URL. Entries without a rel parameter are ignored. When a relation
// appears more than once the first occurrence wins. A link with several
// space-separated relation types is recorded under each of them.
func ParseLinks(header string) map[string]string {
	links := make(map[string]string)
	rest := header
	for {
		open := strings.IndexByte(rest, '<')
		if open < 0 {
			return links
		}
		closing := strings.IndexByte(rest[open:], '>')
		if closing < 0 {
			return links
		}
		target := rest[open+1 : open+closing]
		rest = rest[open+closing+1:]

		// Parameters run until the next link-value.
		params := rest
		if next := strings.IndexByte(rest, '<'); next >= 0 {
			params = rest[:next]
		}
		for _, rel := range relations(params) {
			if _, seen := links[rel]; !seen {
				links[rel] = target
			}
		}
	}
}

// relations extracts the rel values from a ';'-separated parameter list.
func relations(params string) []string {
	for _, p := range strings.Split(params, ";") {
		p = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(p), ","))
		name, value, ok := strings.Cut(p, "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "rel") {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"`)
		return strings.Fields(strings.ToLower(value))
	}
	return nil
}

// NextStart returns the start query parameter of the rel="next" link in a
// Link header. ok is false when there is no next link or the next link has
// no numeric start parameter.
func NextStart(header string) (start int, ok bool) {
	next, found := ParseLinks(header)["next"]
	if !found {
		return 0, false
	}
	u, err := url.Parse(next)
	if err != nil {
		return 0, false
	}
	start, err = strconv.Atoi(u.Query().Get("start"))
	if err != nil {
		return 0, false
	}
	return start, true
}
