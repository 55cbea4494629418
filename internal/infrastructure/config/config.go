// Package config provides the runtime configuration for the console.
//
// Configuration is split into four sections (api, processing, ui, export).
// Every field has a built-in default; values persisted in the settings file
// are merged over the defaults at startup.
//
// Example usage:
//
//	store, _ := config.NewStore("settings.yaml")
//	baseURL := store.Get().API.BaseURL
package config

import (
	"fmt"
	"os"
)

// Config is the full console configuration snapshot.
type Config struct {
	API        APIConfig        `yaml:"api" json:"api"`
	Processing ProcessingConfig `yaml:"processing" json:"processing"`
	UI         UIConfig         `yaml:"ui" json:"ui"`
	Export     ExportConfig     `yaml:"export" json:"export"`
}

// APIConfig holds settings for reaching the processing backend.
type APIConfig struct {
	BaseURL     string `yaml:"base_url" json:"base_url"`
	TimeoutMs   int    `yaml:"timeout_ms" json:"timeout_ms"`
	Credentials bool   `yaml:"credentials" json:"credentials"`
}

// ProcessingConfig holds defaults applied to process/export requests
// and limits applied to locally chosen files.
type ProcessingConfig struct {
	IncludeClosedOrders  bool     `yaml:"include_closed_orders" json:"include_closed_orders"`
	IncludeOfflineOrders bool     `yaml:"include_offline_orders" json:"include_offline_orders"`
	MaxFileSize          int64    `yaml:"max_file_size" json:"max_file_size"`
	SupportedFormats     []string `yaml:"supported_formats" json:"supported_formats"`
}

// UIConfig holds presentation preferences for the browser console.
type UIConfig struct {
	Theme    string `yaml:"theme" json:"theme"`
	Language string `yaml:"language" json:"language"`
	PageSize int    `yaml:"page_size" json:"page_size"`
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	DefaultFormat  string `yaml:"default_format" json:"default_format"`
	IncludeHeaders bool   `yaml:"include_headers" json:"include_headers"`
	DateFormat     string `yaml:"date_format" json:"date_format"`
}

// Defaults returns the built-in default configuration.
func Defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL:     getEnv("RECON_API_BASE_URL", "http://localhost:8000"),
			TimeoutMs:   getEnvInt("RECON_API_TIMEOUT_MS", 30000),
			Credentials: false,
		},
		Processing: ProcessingConfig{
			IncludeClosedOrders:  false,
			IncludeOfflineOrders: false,
			MaxFileSize:          50 * 1024 * 1024,
			SupportedFormats:     []string{".xlsx", ".xls"},
		},
		UI: UIConfig{
			Theme:    "system",
			Language: "zh",
			PageSize: 20,
		},
		Export: ExportConfig{
			DefaultFormat:  "xlsx",
			IncludeHeaders: true,
			DateFormat:     "YYYY-MM-DD",
		},
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}
