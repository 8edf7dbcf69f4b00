package config

import "os"

type Config struct {
	AppEnv   string
	LogLevel string

	// DataDir holds the file-backed snapshot blobs. Ignored when
	// DatabaseURL is set.
	DataDir string
	// StoreName is the logical name the snapshot blobs are keyed under.
	StoreName string
	// DatabaseURL, when non-empty, switches persistence to Postgres.
	DatabaseURL string
	// Currency is the fallback currency code for a store that has never
	// been saved.
	Currency string
}

func Load() Config {
	return Config{
		AppEnv:      getEnv("APP_ENV", "dev"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DataDir:     getEnv("POS_DATA_DIR", "data"),
		StoreName:   getEnv("POS_STORE_NAME", "default"),
		DatabaseURL: getEnv("POS_DATABASE_URL", ""),
		Currency:    getEnv("POS_CURRENCY", "USD"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
