// Package config loads runtime configuration for the Aither CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment, after loading a .env file from the working directory if
//     one exists.
//  4. Command-line flags.
//
// Supported flags
//
//	-d string   path of the SQLite database file
//	-m string   Gemini model name
//	-l string   log level (debug, info, warn, error)
//	-r          render assistant replies as Markdown (-r=false to disable)
//
// Environment
//
//	GEMINI_API_KEY (or API_KEY)  key for the Gemini API
//	AITHER_S3_BUCKET, AITHER_S3_REGION, AITHER_S3_ENDPOINT,
//	AITHER_S3_ACCESS_KEY, AITHER_S3_SECRET_KEY
//
// # JSON schema
//
// Durations are timex.Duration, so "5s" and integer nanoseconds both work:
//
//	{
//	  "database_path": "/var/lib/aither/aither.db",
//	  "gemini_model": "gemini-3-pro-preview",
//	  "owner_email": "owner@aither.local",
//	  "render_markdown": true,
//	  "s3_bucket": "aither-backups",
//	  "shutdown_timeout": "5s"
//	}
//
// Only keys present in the file override earlier values.
package config
