package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the Aither CLI.
type Config struct {
	DatabasePath string

	GeminiAPIKey string
	GeminiModel  string

	OwnerEmail string
	OwnerName  string
	OwnerPIN   string

	LogLevel       string
	RenderMarkdown bool

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	// ShutdownTimeout bounds how long pending work may run after an interrupt.
	ShutdownTimeout time.Duration
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = defaultDatabasePath()
	c.GeminiModel = "gemini-3-pro-preview"
	c.OwnerEmail = "owner@aither.local"
	c.OwnerName = "Owner"
	c.OwnerPIN = "2011"
	c.LogLevel = "info"
	c.RenderMarkdown = true
	c.S3Region = "us-east-1"
	c.ShutdownTimeout = 5 * time.Second
}

// LoadConfig builds a Config from defaults, then the JSON file, then the
// environment, then flags. Later sources win.
func LoadConfig() *Config {
	args := os.Args[1:]

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseEnv(cfg)
	parseFlags(cfg, args)
	return cfg
}

func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "aither.db"
	}
	return filepath.Join(dir, "aither", "aither.db")
}
