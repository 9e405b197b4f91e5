package config

import "time"

// Remote store kinds selectable with -r / "remote".
const (
	RemoteNone = "none"
	RemoteREST = "rest"
	RemoteS3   = "s3"
	RemoteFake = "fake"
)

// Auth modes selectable with "auth_mode".
const (
	AuthSession = "session"
	AuthStatic  = "static"
	AuthNone    = "none"
)

// S3Config describes the bucket used by the single-file blob store.
// Endpoint is only set for S3-compatible services such as MinIO.
// A non-empty Passphrase encrypts the object before it leaves the machine.
type S3Config struct {
	Bucket       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	Passphrase   string
}

// Config holds runtime settings for the journaling CLI.
//
// Units: all durations are time.Duration values.
type Config struct {
	// ServerURL is the base URL of the reflections server, used by the
	// REST remote store, session auth and the online check.
	ServerURL string

	DatabasePath string
	LogFile      string
	LogLevel     string

	Remote        string
	RemoteTimeout time.Duration

	AuthMode    string
	StaticUser  string
	StaticEmail string

	OnlineCheckInterval time.Duration

	// FakeLatency delays every call of the in-memory remote store.
	FakeLatency time.Duration

	S3 S3Config
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DatabasePath = "reflections.db"
	c.LogFile = "dailyreflect.log"
	c.LogLevel = "info"
	c.Remote = RemoteREST
	c.RemoteTimeout = 15 * time.Second
	c.AuthMode = AuthSession
	c.StaticUser = "local-user"
	c.StaticEmail = "me@localhost"
	c.OnlineCheckInterval = 10 * time.Second
	c.S3.Region = "us-east-1"
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
