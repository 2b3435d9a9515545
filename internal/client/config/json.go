package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/aither/internal/flagx"
	"github.com/dmitrijs2005/aither/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields tell an
// absent key from a zero value.
type JsonConfig struct {
	DatabasePath    *string         `json:"database_path"`
	GeminiAPIKey    *string         `json:"gemini_api_key"`
	GeminiModel     *string         `json:"gemini_model"`
	OwnerEmail      *string         `json:"owner_email"`
	OwnerName       *string         `json:"owner_name"`
	OwnerPIN        *string         `json:"owner_pin"`
	LogLevel        *string         `json:"log_level"`
	RenderMarkdown  *bool           `json:"render_markdown"`
	S3Bucket        *string         `json:"s3_bucket"`
	S3Region        *string         `json:"s3_region"`
	S3Endpoint      *string         `json:"s3_endpoint"`
	S3AccessKey     *string         `json:"s3_access_key"`
	S3SecretKey     *string         `json:"s3_secret_key"`
	ShutdownTimeout *timex.Duration `json:"shutdown_timeout"`
}

// parseJson overlays cfg with the file named by -c/-config in args. It panics
// when the file cannot be read or decoded.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.GeminiAPIKey, jc.GeminiAPIKey)
	setString(&cfg.GeminiModel, jc.GeminiModel)
	setString(&cfg.OwnerEmail, jc.OwnerEmail)
	setString(&cfg.OwnerName, jc.OwnerName)
	setString(&cfg.OwnerPIN, jc.OwnerPIN)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3Endpoint, jc.S3Endpoint)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	if jc.RenderMarkdown != nil {
		cfg.RenderMarkdown = *jc.RenderMarkdown
	}
	if jc.ShutdownTimeout != nil {
		cfg.ShutdownTimeout = jc.ShutdownTimeout.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
