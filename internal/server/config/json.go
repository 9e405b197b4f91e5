package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/dailyreflect/internal/flagx"
	"github.com/dmitrijs2005/dailyreflect/internal/timex"
)

// ConfigEnvVar names the environment variable consulted when no -c/-config
// flag is given.
const ConfigEnvVar = "DAILYREFLECT_SERVER_CONFIG"

// JsonConfig is the JSON form of Config. Durations accept "15m" or integer
// nanoseconds; absent keys keep the current value.
type JsonConfig struct {
	EndpointAddr                 *string         `json:"endpoint_addr"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	SecretKey                    *string         `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	LogLevel                     *string         `json:"log_level"`
	AllowedOrigins               []string        `json:"allowed_origins"`
}

// parseJson overlays config with the file named by -c/-config or
// DAILYREFLECT_SERVER_CONFIG. It panics if that file is unusable.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:], ConfigEnvVar)
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != nil {
		config.EndpointAddr = *c.EndpointAddr
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.SecretKey != nil {
		config.SecretKey = *c.SecretKey
	}
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.LogLevel != nil {
		config.LogLevel = *c.LogLevel
	}
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
}
