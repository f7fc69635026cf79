// Package config provides the YAML configuration model with full
// load/save behavior, including first-run config creation and 0600
// permissions.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"eventcal/internal/model"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the widget server.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the widget server.
	Listen string `yaml:"listen" json:"listen"`

	// FeedURL is the calendar feed endpoint, including any fixed query
	// parameters. Tag filters are appended to it per request.
	FeedURL string `yaml:"feed_url" json:"feed_url"`

	// FeedFormat declares how the feed body is parsed: "rss" (default)
	// or "ics". The format is never sniffed from the response.
	FeedFormat string `yaml:"feed_format" json:"feed_format"`

	// Timezone is the IANA timezone timestamps without an offset are
	// interpreted in (e.g. "America/New_York").
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is a cron-style schedule (e.g. "*/15 * * * *") for
	// re-rendering widgets that have an output file. Empty disables the
	// scheduler.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// ReportURL is the monitoring endpoint error messages are posted to.
	// Empty means errors only go to the log.
	ReportURL string `yaml:"report_url" json:"report_url"`

	// Widgets is the list of configured render targets.
	Widgets []model.Widget `yaml:"widgets" json:"widgets"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		FeedFormat:  "rss",
		Timezone:    "UTC",
		RefreshCron: "*/15 * * * *",
		Widgets:     []model.Widget{},
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	switch c.FeedFormat {
	case "rss", "ics":
		// ok
	default:
		c.FeedFormat = "rss"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.Widgets == nil {
		c.Widgets = []model.Widget{}
	}
}

// Location resolves the configured timezone, falling back to UTC when the
// name does not resolve.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Widget returns the configured widget with the given id.
func (c *Config) Widget(id string) (model.Widget, bool) {
	for _, w := range c.Widgets {
		if w.ID == id {
			return w, true
		}
	}
	return model.Widget{}, false
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there (parent
// directory created as needed) and returned. Otherwise the YAML is
// unmarshaled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save normalizes cfg and writes it to path, creating the parent directory
// if needed. The file ends up with 0600 permissions and is never visible in
// a half-written state.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic lands data at path via a same-directory temp file and a
// rename, so readers see either the old config or the new one.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".eventcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	_, werr := tmp.Write(data)
	if serr := tmp.Sync(); werr == nil {
		werr = serr
	}
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return werr
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
