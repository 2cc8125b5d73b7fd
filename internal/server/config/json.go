package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/keywarden/internal/flagx"
	"github.com/dmitrijs2005/keywarden/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "336h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr                 string         `json:"endpoint_addr"`
	DatabaseDriver               string         `json:"database_driver"`
	DatabaseDSN                  string         `json:"database_dsn"`
	CryptProvider                string         `json:"crypt_provider"`
	SessionTokenValidityDuration timex.Duration `json:"session_token_validity_duration"`
	ResourceKinds                []string       `json:"resource_kinds"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; if
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDriver = c.DatabaseDriver
	config.DatabaseDSN = c.DatabaseDSN
	config.CryptProvider = c.CryptProvider
	config.SessionTokenValidityDuration = time.Duration(c.SessionTokenValidityDuration.Duration)
	config.ResourceKinds = c.ResourceKinds
}
