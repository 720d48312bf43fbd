package config

import "time"

// Config holds runtime settings for the Omnisent CLI.
//
// Fields:
//   - ServerURL: base URL of the backend REST API.
//   - DatabasePath: sqlite file holding the scoped credential store.
//   - RevalidateInterval: how often the session re-checks token expiry.
//   - UploadConcurrency: how many file transfers run at once.
type Config struct {
	ServerURL          string
	DatabasePath       string
	RevalidateInterval time.Duration
	UploadConcurrency  int64
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.DatabasePath = "omnisent.db"
	c.RevalidateInterval = 5 * time.Minute
	c.UploadConcurrency = 4
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
