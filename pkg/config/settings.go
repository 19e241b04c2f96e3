// Package config loads and validates the datalab tool settings, and
// manages the environment file consumed by the orchestrated stack.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Settings captures the static configuration of the datalab tool itself.
//
// This is distinct from the stack's environment file (.env): Settings
// controls how datalab behaves (paths, retry policy, logging), while the
// environment file feeds credentials and ports into the containers.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (DATALAB_*)
//  2. Configuration file (datalab.yaml in the project root)
//  3. Default values
type Settings struct {
	// ProjectRoot is the directory holding the compose file and all
	// mutable stack state (data, logs, backups, notebooks).
	ProjectRoot string `mapstructure:"project_root" validate:"required" yaml:"project_root"`

	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Compose configures the external container-orchestration layer
	Compose ComposeConfig `mapstructure:"compose" yaml:"compose"`

	// Readiness is the retry policy for the database readiness poll
	Readiness ReadinessConfig `mapstructure:"readiness" yaml:"readiness"`

	// Dataset describes the sample dataset acquired during setup
	Dataset DatasetConfig `mapstructure:"dataset" yaml:"dataset"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format (text or json)
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written (stdout, stderr, or a file path)
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// ComposeConfig configures how datalab drives docker compose.
type ComposeConfig struct {
	// File is the compose file path, relative to the project root.
	File string `mapstructure:"file" validate:"required" yaml:"file"`

	// Project is the compose project name (-p). A fixed name keeps
	// teardown and cleanup scoped to this stack only.
	Project string `mapstructure:"project" validate:"required" yaml:"project"`
}

// ReadinessConfig is the retry policy for the database readiness poll.
// The interval is fixed; there is no backoff. Database startup time is
// short and bounded, so constant polling is sufficient.
type ReadinessConfig struct {
	// MaxAttempts is the number of health checks before giving up.
	MaxAttempts int `mapstructure:"max_attempts" validate:"required,gte=1" yaml:"max_attempts"`

	// Interval is the fixed delay between attempts.
	Interval time.Duration `mapstructure:"interval" validate:"required,gt=0" yaml:"interval"`
}

// DatasetConfig describes the sample dataset placed into the database
// initialization directory during setup.
type DatasetConfig struct {
	// Name identifies the dataset in logs and reports.
	Name string `mapstructure:"name" validate:"required" yaml:"name"`

	// URL is the remote archive (zip) containing the dataset files.
	URL string `mapstructure:"url" validate:"required,url" yaml:"url"`

	// Files maps archive member paths to their destination file names
	// inside the initialization directory. Members not listed here are
	// discarded after extraction.
	Files map[string]string `mapstructure:"files" validate:"required,min=1" yaml:"files"`

	// Marker is the destination file whose presence means the dataset
	// is already available and acquisition is skipped entirely.
	Marker string `mapstructure:"marker" validate:"required" yaml:"marker"`
}

// EnvFilePath returns the path of the stack environment file.
func (s *Settings) EnvFilePath() string {
	return filepath.Join(s.ProjectRoot, ".env")
}

// EnvTemplatePath returns the path of the checked-in environment template.
func (s *Settings) EnvTemplatePath() string {
	return filepath.Join(s.ProjectRoot, ".env.example")
}

// ComposeFilePath returns the absolute compose file path.
func (s *Settings) ComposeFilePath() string {
	if filepath.IsAbs(s.Compose.File) {
		return s.Compose.File
	}
	return filepath.Join(s.ProjectRoot, s.Compose.File)
}

// ConfigFileName is the tool configuration file searched for in the
// project root.
const ConfigFileName = "datalab"

// Load loads settings from file, environment, and defaults.
//
// Parameters:
//   - configPath: explicit config file path (empty uses datalab.yaml in
//     the working directory, falling back to defaults when absent)
func Load(configPath string) (*Settings, error) {
	v := viper.New()
	setupViper(v, configPath)
	seedDefaults(v)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Settings
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the DATALAB_ prefix and underscores.
	// Example: DATALAB_READINESS_MAX_ATTEMPTS=60
	v.SetEnvPrefix("DATALAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(ConfigFileName)
		v.SetConfigType("yaml")
	}
}

// seedDefaults registers every settings key with viper. AutomaticEnv
// only resolves keys viper already knows about, so without this
// registration DATALAB_* variables would be ignored whenever no config
// file exists.
func seedDefaults(v *viper.Viper) {
	def := GetDefaultSettings()
	v.SetDefault("project_root", def.ProjectRoot)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.output", def.Logging.Output)
	v.SetDefault("compose.file", def.Compose.File)
	v.SetDefault("compose.project", def.Compose.Project)
	v.SetDefault("readiness.max_attempts", def.Readiness.MaxAttempts)
	v.SetDefault("readiness.interval", def.Readiness.Interval)
	v.SetDefault("dataset.name", def.Dataset.Name)
	v.SetDefault("dataset.url", def.Dataset.URL)
	v.SetDefault("dataset.files", def.Dataset.Files)
	v.SetDefault("dataset.marker", def.Dataset.Marker)
}

// readConfigFile reads the configuration file if it exists. A missing
// file is not an error; defaults and environment variables still apply.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// durationDecodeHook converts strings like "30s" or "5m" to time.Duration
// so the config file can use human-readable intervals.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}
