// Package config loads runtime configuration for the journaling CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c / -config, or the
//     DAILYREFLECT_CONFIG environment variable.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the reflections server
//	-d string   path of the local SQLite database
//	-r string   remote store: none, rest, s3 or fake
//	-i int      online status check interval (seconds)
//	-l string   log file
//	-t int      timeout of a single remote call (seconds)
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "15s"
// or integer nanoseconds. Only keys present in the file override defaults:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "database_path": "reflections.db",
//	  "log_file": "dailyreflect.log",
//	  "log_level": "debug",
//	  "remote": "s3",
//	  "remote_timeout": "15s",
//	  "auth_mode": "static",
//	  "static_user": "local-user",
//	  "static_email": "me@localhost",
//	  "online_check_interval": "10s",
//	  "fake_latency": "300ms",
//	  "s3_bucket": "journal",
//	  "s3_region": "us-east-1",
//	  "s3_endpoint": "http://127.0.0.1:9000",
//	  "s3_access_key": "minio",
//	  "s3_secret_key": "minio123",
//	  "s3_use_path_style": true,
//	  "s3_passphrase": "correct horse battery staple"
//	}
package config
