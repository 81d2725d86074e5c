// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package zotero

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records one download run. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal  *prometheus.CounterVec
	pagesTotal     prometheus.Counter
	recordsTotal   prometheus.Counter
	libraryVersion prometheus.Gauge
	lastSuccess    prometheus.Gauge
}

// NewMetrics creates the run metrics on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "zth_requests_total",
			Help: "Zotero API requests by HTTP status",
		}, []string{"status"}),
		pagesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "zth_pages_fetched_total",
			Help: "Result pages downloaded",
		}),
		recordsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "zth_records_fetched_total",
			Help: "Bibliography records downloaded",
		}),
		libraryVersion: factory.NewGauge(prometheus.GaugeOpts{
			Name: "zth_library_version",
			Help: "Library version after the last successful run",
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "zth_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
	}
}

func (m *Metrics) observeRequest(status int) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

func (m *Metrics) observePage(records int) {
	if m == nil {
		return
	}
	m.pagesTotal.Inc()
	m.recordsTotal.Add(float64(records))
}

func (m *Metrics) observeSuccess(version int64, at time.Time) {
	if m == nil {
		return
	}
	m.libraryVersion.Set(float64(version))
	m.lastSuccess.Set(float64(at.Unix()))
}

// WriteTextfile writes the registry in the Prometheus text format for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics file: %w", err)
	}
	return nil
}
