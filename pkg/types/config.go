// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrConfig marks a missing or invalid configuration value. Validation
// errors wrap it so callers can tell configuration failures from I/O.
var ErrConfig = errors.New("configuration error")

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "zth/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ZoteroConfig holds settings for the download stage.
type ZoteroConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIBase is the Zotero Web API root (default https://api.zotero.org).
	APIBase string `json:"api_base" yaml:"api_base"`

	// SearchPrefixURI scopes the library, e.g. "groups/14159" or "users/475425".
	SearchPrefixURI string `json:"search_prefix_uri" yaml:"search_prefix_uri"`

	// SearchTag restricts the download to items carrying this tag.
	SearchTag string `json:"search_tag" yaml:"search_tag"`

	// CiteprocStyle is the CSL style used for the bib format (e.g. "acm-sigchi-proceedings").
	CiteprocStyle string `json:"citeproc_style" yaml:"citeproc_style"`

	// APIKey is the Zotero API key. Public libraries work without one.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// VersionFile stores the last synchronized library version.
	VersionFile string `json:"version_file" yaml:"version_file"`

	// PageLimit is the number of items requested per page (default 100, Zotero max).
	PageLimit int `json:"page_limit" yaml:"page_limit"`

	// MetricsFile, when set, receives a Prometheus textfile after each run.
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
}

// Validate reports missing required download settings.
func (c ZoteroConfig) Validate() error {
	var missing []string
	if c.SearchPrefixURI == "" {
		missing = append(missing, "ZTH_SEARCH_PREFIX_URI")
	}
	if c.VersionFile == "" {
		missing = append(missing, "ZTH_VERSION_FILE")
	}
	if c.APIBase == "" {
		missing = append(missing, "ZTH_API_BASE")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s not set", ErrConfig, strings.Join(missing, ", "))
	}
	return nil
}

// RenderConfig holds settings for the render stage.
type RenderConfig struct {
	// TemplateDir contains the *.tmpl fragment templates (default "tmpl").
	TemplateDir string `json:"template_dir" yaml:"template_dir"`

	// LibraryURL is the fallback edit link when an item has no alternate link.
	// Defaults to https://www.zotero.org/<search_prefix_uri>.
	LibraryURL string `json:"library_url" yaml:"library_url"`
}

// Validate reports missing required render settings.
func (c RenderConfig) Validate() error {
	if c.TemplateDir == "" {
		return fmt.Errorf("%w: ZTH_TEMPLATE_DIR not set", ErrConfig)
	}
	if c.LibraryURL == "" {
		return fmt.Errorf("%w: ZTH_LIBRARY_URL not set and no ZTH_SEARCH_PREFIX_URI to derive it from", ErrConfig)
	}
	return nil
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is debug, info, warn or error (default info).
	Level string `json:"level" yaml:"level"`

	// File, when set, receives log output instead of stderr.
	File string `json:"file,omitempty" yaml:"file,omitempty"`

	// Pretty selects human-readable console output over JSON lines.
	Pretty bool `json:"pretty" yaml:"pretty"`
}

// Config groups all stage configurations.
type Config struct {
	Zotero  ZoteroConfig  `json:"zotero" yaml:"zotero"`
	Render  RenderConfig  `json:"render" yaml:"render"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}
