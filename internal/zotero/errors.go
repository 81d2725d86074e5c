// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package zotero

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrPaginationRegressed is returned when a page's next start offset is
	// not past the current one. Continuing would loop or silently truncate.
	ErrPaginationRegressed = errors.New("pagination going backwards")

	// ErrRemoteInconsistent is returned when the API answers in a way that
	// contradicts earlier pages of the same run (missing or invalid
	// Last-Modified-Version, not-modified after the first page).
	ErrRemoteInconsistent = errors.New("inconsistent response from Zotero API")
)

// StatusError reports an HTTP status other than 200 or 304.
type StatusError struct {
	StatusCode int
	Start      int
	Message    string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("Zotero API returned HTTP %d %s (start=%d): %s",
			e.StatusCode, http.StatusText(e.StatusCode), e.Start, e.Message)
	}
	return fmt.Sprintf("Zotero API returned HTTP %d %s (start=%d)",
		e.StatusCode, http.StatusText(e.StatusCode), e.Start)
}
