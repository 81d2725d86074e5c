// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads zth settings with viper. Precedence, highest first:
// ZTH_* environment variables, the YAML config file, .env.local, .env,
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/zotero-html/pkg/types"
)

const (
	envPrefix = "ZTH"

	// SecretAPIKey is the .secrets/ file holding the Zotero API key.
	SecretAPIKey = "zotero-api-key"

	defaultAPIBase     = "https://api.zotero.org"
	defaultLibraryHost = "https://www.zotero.org"
	defaultTemplateDir = "tmpl"
	defaultTimeout     = 60 * time.Second
	defaultPageLimit   = 100
)

// dotenvFiles are read in order; later files override earlier ones.
var dotenvFiles = []string{".env", ".env.local"}

// Options controls where Load looks for settings.
type Options struct {
	// ConfigFile is an explicit YAML config file. When empty, zth.yaml is
	// looked up in Dir and ~/.config/zth.
	ConfigFile string

	// Dir holds the dotenv files and the default config file.
	Dir string

	// Secrets supplies fallbacks loaded from the secrets directory.
	Secrets map[string]string

	// Version is used in the default User-Agent.
	Version string
}

// Load reads settings into a types.Config. It does not validate stage
// requirements; each stage calls Validate on its section.
func Load(v *viper.Viper, opts Options) (types.Config, error) {
	setDefaults(v, opts.Version)

	for _, name := range dotenvFiles {
		if err := mergeDotenv(v, filepath.Join(opts.Dir, name)); err != nil {
			return types.Config{}, err
		}
	}

	if err := readConfigFile(v, opts); err != nil {
		return types.Config{}, err
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	if err := v.BindEnv("log_level", envPrefix+"_LOG_LEVEL", "LOG_LEVEL"); err != nil {
		return types.Config{}, fmt.Errorf("binding log level: %w", err)
	}

	cfg := types.Config{
		Zotero: types.ZoteroConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("timeout"),
				UserAgent: v.GetString("user_agent"),
			},
			APIBase:         v.GetString("api_base"),
			SearchPrefixURI: strings.Trim(v.GetString("search_prefix_uri"), "/"),
			SearchTag:       v.GetString("search_tag"),
			CiteprocStyle:   v.GetString("citeproc_style"),
			APIKey:          v.GetString("api_key"),
			VersionFile:     v.GetString("version_file"),
			PageLimit:       v.GetInt("page_limit"),
			MetricsFile:     v.GetString("metrics_file"),
		},
		Render: types.RenderConfig{
			TemplateDir: v.GetString("template_dir"),
			LibraryURL:  v.GetString("library_url"),
		},
		Logging: types.LoggingConfig{
			Level:  v.GetString("log_level"),
			File:   v.GetString("log_file"),
			Pretty: v.GetBool("log_pretty"),
		},
	}

	if cfg.Zotero.APIKey == "" {
		cfg.Zotero.APIKey = opts.Secrets[SecretAPIKey]
	}
	if cfg.Render.LibraryURL == "" && cfg.Zotero.SearchPrefixURI != "" {
		cfg.Render.LibraryURL = defaultLibraryHost + "/" + cfg.Zotero.SearchPrefixURI
	}
	if cfg.Zotero.PageLimit <= 0 || cfg.Zotero.PageLimit > defaultPageLimit {
		return types.Config{}, fmt.Errorf("%w: ZTH_PAGE_LIMIT must be between 1 and %d, got %d",
			types.ErrConfig, defaultPageLimit, cfg.Zotero.PageLimit)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, version string) {
	if version == "" {
		version = "dev"
	}
	v.SetDefault("api_base", defaultAPIBase)
	v.SetDefault("search_prefix_uri", "")
	v.SetDefault("search_tag", "")
	v.SetDefault("citeproc_style", "")
	v.SetDefault("api_key", "")
	v.SetDefault("version_file", "")
	v.SetDefault("page_limit", defaultPageLimit)
	v.SetDefault("metrics_file", "")
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("user_agent", "zth/"+version)
	v.SetDefault("template_dir", defaultTemplateDir)
	v.SetDefault("library_url", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("log_pretty", false)
}

// mergeDotenv reads a dotenv file and installs its ZTH_* entries (and
// LOG_LEVEL) as defaults. A missing file is skipped.
func mergeDotenv(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	d := viper.New()
	d.SetConfigFile(path)
	d.SetConfigType("env")
	if err := d.ReadInConfig(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	prefix := strings.ToLower(envPrefix) + "_"
	for _, key := range d.AllKeys() {
		switch {
		case strings.HasPrefix(key, prefix):
			v.SetDefault(strings.TrimPrefix(key, prefix), d.Get(key))
		case key == "log_level":
			v.SetDefault(key, d.Get(key))
		}
	}
	return nil
}

// readConfigFile merges the YAML config file. An explicit file must exist;
// the default lookup may find nothing.
func readConfigFile(v *viper.Viper, opts Options) error {
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", opts.ConfigFile, err)
		}
		return nil
	}

	v.SetConfigName("zth")
	v.SetConfigType("yaml")
	v.AddConfigPath(opts.Dir)
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "zth"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	return nil
}
