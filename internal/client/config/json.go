package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/omnisent/omnisent/internal/flagx"
	"github.com/omnisent/omnisent/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "5m"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config.
type JsonConfig struct {
	ServerURL          string         `json:"server_url"`
	DatabasePath       string         `json:"database_path"`
	RevalidateInterval timex.Duration `json:"revalidate_interval"`
	UploadConcurrency  int64          `json:"upload_concurrency"`
}

// parseJson overlays Config with values loaded from a JSON file resolved via
// the -c/-config flags. When no file is given the function returns without
// touching cfg. Read or unmarshal errors panic; intended usage is
// defaults -> parseJson -> parseFlags, where later stages override earlier
// ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RevalidateInterval.Duration != 0 {
		cfg.RevalidateInterval = time.Duration(jc.RevalidateInterval.Duration)
	}
	if jc.UploadConcurrency != 0 {
		cfg.UploadConcurrency = jc.UploadConcurrency
	}
}
