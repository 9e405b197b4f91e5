package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/dailyreflect/internal/flagx"
	"github.com/dmitrijs2005/dailyreflect/internal/timex"
)

// ConfigEnvVar names the environment variable consulted when no -c/-config
// flag is given.
const ConfigEnvVar = "DAILYREFLECT_CONFIG"

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from zero values.
type JsonConfig struct {
	ServerURL           *string         `json:"server_url"`
	DatabasePath        *string         `json:"database_path"`
	LogFile             *string         `json:"log_file"`
	LogLevel            *string         `json:"log_level"`
	Remote              *string         `json:"remote"`
	RemoteTimeout       *timex.Duration `json:"remote_timeout"`
	AuthMode            *string         `json:"auth_mode"`
	StaticUser          *string         `json:"static_user"`
	StaticEmail         *string         `json:"static_email"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	FakeLatency         *timex.Duration `json:"fake_latency"`

	S3Bucket       *string `json:"s3_bucket"`
	S3Region       *string `json:"s3_region"`
	S3Endpoint     *string `json:"s3_endpoint"`
	S3AccessKey    *string `json:"s3_access_key"`
	S3SecretKey    *string `json:"s3_secret_key"`
	S3UsePathStyle *bool   `json:"s3_use_path_style"`
	S3Passphrase   *string `json:"s3_passphrase"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Panics on read or unmarshal errors: a config file that was asked for but
// cannot be used is a startup failure.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:], ConfigEnvVar)
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

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.LogFile, jc.LogFile)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.Remote, jc.Remote)
	setString(&cfg.AuthMode, jc.AuthMode)
	setString(&cfg.StaticUser, jc.StaticUser)
	setString(&cfg.StaticEmail, jc.StaticEmail)

	if jc.RemoteTimeout != nil {
		cfg.RemoteTimeout = jc.RemoteTimeout.Duration
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.FakeLatency != nil {
		cfg.FakeLatency = jc.FakeLatency.Duration
	}

	setString(&cfg.S3.Bucket, jc.S3Bucket)
	setString(&cfg.S3.Region, jc.S3Region)
	setString(&cfg.S3.Endpoint, jc.S3Endpoint)
	setString(&cfg.S3.AccessKey, jc.S3AccessKey)
	setString(&cfg.S3.SecretKey, jc.S3SecretKey)
	setString(&cfg.S3.Passphrase, jc.S3Passphrase)
	if jc.S3UsePathStyle != nil {
		cfg.S3.UsePathStyle = *jc.S3UsePathStyle
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
