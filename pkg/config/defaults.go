package config

import (
	"strings"
	"time"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Zero values (0, "", nil) are replaced with defaults; explicit values
// are preserved.
func ApplyDefaults(cfg *Settings) {
	if cfg.ProjectRoot == "" {
		cfg.ProjectRoot = "."
	}
	applyLoggingDefaults(&cfg.Logging)
	applyComposeDefaults(&cfg.Compose)
	applyReadinessDefaults(&cfg.Readiness)
	applyDatasetDefaults(&cfg.Dataset)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyComposeDefaults(cfg *ComposeConfig) {
	if cfg.File == "" {
		cfg.File = "docker-compose.yml"
	}
	if cfg.Project == "" {
		cfg.Project = "datalab"
	}
}

func applyReadinessDefaults(cfg *ReadinessConfig) {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 30
	}
	if cfg.Interval == 0 {
		cfg.Interval = 2 * time.Second
	}
}

// applyDatasetDefaults sets the sample sales dataset shipped with the
// course. The archive carries a binary dump plus the schema that loads
// it; both land in the MySQL initialization directory.
func applyDatasetDefaults(cfg *DatasetConfig) {
	if cfg.Name == "" {
		cfg.Name = "ventas"
	}
	if cfg.URL == "" {
		cfg.URL = "https://github.com/maestria-datos/curso-datasets/releases/download/v1.0.0/ventas-mysql.zip"
	}
	if len(cfg.Files) == 0 {
		cfg.Files = map[string]string{
			"ventas/ventas.dump": "ventas.dump",
			"ventas/schema.sql":  "01-ventas-schema.sql",
		}
	}
	if cfg.Marker == "" {
		cfg.Marker = "ventas.dump"
	}
}

// GetDefaultSettings returns a Settings struct with all default values
// applied. Useful for generating sample configuration files and testing.
func GetDefaultSettings() *Settings {
	cfg := &Settings{}
	ApplyDefaults(cfg)
	return cfg
}
