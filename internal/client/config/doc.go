// Package config loads runtime configuration for the terminal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the accounts API
//	-d string   directory holding the local database
//	-i int      online status check interval (seconds)
//	-t int      saved-session check timeout (seconds, 0 waits forever)
//	-l string   log level: debug, info, warn, error
//
// # JSON schema
//
// Intervals use timex.Duration, so they can be strings like "3s" or integer
// nanoseconds. Keys missing from the file keep their previous value:
//
//	{
//	  "server_url": "http://127.0.0.1:8000",
//	  "data_dir": ".ocrdesk",
//	  "online_check_interval": "3s",
//	  "reconcile_timeout": "15s",
//	  "log_level": "info"
//	}
package config
