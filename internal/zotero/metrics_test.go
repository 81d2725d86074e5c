// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package zotero

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.observeRequest(200)
	m.observeRequest(200)
	m.observePage(100)
	m.observePage(42)
	m.observeSuccess(731, time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "textfile", "zth.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `zth_requests_total{status="200"} 2`)
	assert.Contains(t, text, "zth_pages_fetched_total 2")
	assert.Contains(t, text, "zth_records_fetched_total 142")
	assert.Contains(t, text, "zth_library_version 731")
	assert.Contains(t, text, "zth_last_success_timestamp_seconds 1.7e+09")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.observeRequest(200)
	m.observePage(3)
	m.observeSuccess(1, time.Now())
	path := filepath.Join(t.TempDir(), "never.prom")
	assert.NoError(t, m.WriteTextfile(path))
	assert.NoFileExists(t, path)
}
