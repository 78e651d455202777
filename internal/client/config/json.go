package config

import (
	"encoding/json"
	"os"

	"github.com/avetisov/credkeeper/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerURL string `json:"server_url"`
}

// parseJson overlays Config with values loaded from a JSON file selected
// via -c or -config. Missing flag means no JSON is loaded. Read or
// unmarshal errors panic; the caller should treat them as fatal.
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
}
