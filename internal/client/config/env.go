package config

import (
	"os"

	"github.com/joho/godotenv"
)

// parseEnv overlays cfg with environment variables. A .env file in the
// working directory is loaded first; variables already set take precedence
// over it.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := firstEnv("GEMINI_API_KEY", "API_KEY"); v != "" {
		cfg.GeminiAPIKey = v
	}

	for name, dst := range map[string]*string{
		"AITHER_S3_BUCKET":     &cfg.S3Bucket,
		"AITHER_S3_REGION":     &cfg.S3Region,
		"AITHER_S3_ENDPOINT":   &cfg.S3Endpoint,
		"AITHER_S3_ACCESS_KEY": &cfg.S3AccessKey,
		"AITHER_S3_SECRET_KEY": &cfg.S3SecretKey,
	} {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}
