// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// AppConfig holds all application configuration.
// It is instantiated by NewConfig() and passed to components that need it (dependency injection).
type AppConfig struct {
	Log     LogConfig                 `mapstructure:"log"`
	Storage StorageConfig             `mapstructure:"storage"`
	Env     EnvConfig                 `mapstructure:"env"`
	Envs    map[string]map[string]any `mapstructure:"envs"`
	Git     GitConfig                 `mapstructure:"git"`
	Orgs    map[string]OrgConfig      `mapstructure:"orgs"`
}

// LogConfig holds comprehensive logging configuration
type LogConfig struct {
	Level    string            `mapstructure:"level"`
	Format   string            `mapstructure:"format"`
	Output   []LogOutputConfig `mapstructure:"output"`
	Levels   map[string]string `mapstructure:"levels"`
	Context  LogContextConfig  `mapstructure:"context"`
	Sampling LogSamplingConfig `mapstructure:"sampling"`
}

// LogOutputConfig defines where logs are written
type LogOutputConfig struct {
	Type    string          `mapstructure:"type"` // "file", "console"
	Enabled bool            `mapstructure:"enabled"`
	Path    string          `mapstructure:"path"`   // For file output
	Rotate  LogRotateConfig `mapstructure:"rotate"` // For file output
}

// LogRotateConfig defines log rotation settings
type LogRotateConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	Compress   bool `mapstructure:"compress"`
}

// LogContextConfig defines what context to include in logs
type LogContextConfig struct {
	IncludeCaller     bool   `mapstructure:"include_caller"`
	IncludeTimestamp  bool   `mapstructure:"include_timestamp"`
	IncludeLevel      bool   `mapstructure:"include_level"`
	IncludeStackTrace string `mapstructure:"include_stack_trace"` // Level at which to include stack trace
}

// LogSamplingConfig defines log sampling settings
type LogSamplingConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Initial    uint32        `mapstructure:"initial"`
	Thereafter uint32        `mapstructure:"thereafter"`
	Tick       time.Duration `mapstructure:"tick"`
}

// StorageConfig holds the roots of persisted state.
type StorageConfig struct {
	Data  string `mapstructure:"data"`
	Cache string `mapstructure:"cache"`
}

// EnvConfig holds defaults for the env commands.
type EnvConfig struct {
	Dev DevEnvConfig `mapstructure:"dev"`
	QA  QAEnvConfig  `mapstructure:"qa"`
}

// DevEnvConfig holds developer environment defaults.
type DevEnvConfig struct {
	DefaultType    string `mapstructure:"default_type"`
	Editor         string `mapstructure:"editor"`
	CloneRepos     bool   `mapstructure:"clone_repos"`
	UniversalShell bool   `mapstructure:"universal_shell"`
}

// QAEnvConfig holds QA environment defaults.
type QAEnvConfig struct {
	DefaultType string `mapstructure:"default_type"`
	E2E         bool   `mapstructure:"e2e"`
}

// GitConfig holds the identity forwarded into developer environments.
type GitConfig struct {
	User GitUserConfig `mapstructure:"user"`
}

// GitUserConfig is a git author identity.
type GitUserConfig struct {
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email"`
}

// OrgConfig holds the credentials and endpoints of a Datadog organization.
type OrgConfig struct {
	APIKey  string `mapstructure:"api_key"`
	AppKey  string `mapstructure:"app_key"`
	Site    string `mapstructure:"site"`
	DDURL   string `mapstructure:"dd_url"`
	LogsURL string `mapstructure:"logs_url"`
}

// NewConfig creates a new AppConfig by reading from a file, environment variables,
// and applying defaults.
func NewConfig(configPath string) (*AppConfig, error) {
	cfg := defaultConfig()

	v := viper.New()

	// Set config file if provided, otherwise search in standard locations
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "dda"))
		}
		v.AddConfigPath("$HOME/.config/dda")
		v.AddConfigPath("/etc/dda/")
	}

	// Configure viper to use environment variables
	v.SetEnvPrefix("DDA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	// Read the config file. It's okay if it doesn't exist.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configPath != "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDerivedDefaults()
	cfg.expandPaths()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// bindEnvKeys makes AutomaticEnv see keys that have no default, which
// Unmarshal would otherwise skip.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"log.level",
		"storage.data",
		"storage.cache",
		"env.dev.default_type",
		"env.dev.editor",
		"env.dev.clone_repos",
		"env.dev.universal_shell",
		"env.qa.default_type",
		"env.qa.e2e",
		"git.user.name",
		"git.user.email",
	} {
		_ = v.BindEnv(key)
	}
}

// defaultConfig returns an AppConfig with default values.
// This is more type-safe than using viper.SetDefault().
func defaultConfig() AppConfig {
	return AppConfig{
		Log: LogConfig{
			Level:  "INFO",
			Format: "console",
			Output: []LogOutputConfig{
				{
					Type:    "file",
					Enabled: true,
					Rotate: LogRotateConfig{
						MaxSizeMB:  100,
						MaxBackups: 7,
						MaxAgeDays: 30,
						Compress:   true,
					},
				},
				{
					Type:    "console",
					Enabled: false, // Progress goes to stderr, logs only with --verbose
				},
			},
			Levels: map[string]string{
				"env":         "INFO",
				"container":   "INFO",
				"process":     "INFO",
				"ssh":         "INFO",
				"transfer":    "INFO",
				"agentconfig": "INFO",
				"cli":         "INFO",
			},
			Context: LogContextConfig{
				IncludeCaller:     false,
				IncludeTimestamp:  true,
				IncludeLevel:      true,
				IncludeStackTrace: "ERROR",
			},
			Sampling: LogSamplingConfig{
				Enabled:    false,
				Initial:    100,
				Thereafter: 100,
				Tick:       time.Second,
			},
		},
		Env: EnvConfig{
			Dev: DevEnvConfig{
				DefaultType: "linux-container",
				Editor:      "vscode",
			},
			QA: QAEnvConfig{
				DefaultType: "linux-container",
			},
		},
		Envs: map[string]map[string]any{},
		Orgs: map[string]OrgConfig{},
	}
}

// applyDerivedDefaults fills values that depend on other settings
func (c *AppConfig) applyDerivedDefaults() {
	if c.Storage.Data == "" {
		c.Storage.Data = defaultStorageDir("XDG_DATA_HOME", ".local", "share")
	}
	if c.Storage.Cache == "" {
		c.Storage.Cache = defaultStorageDir("XDG_CACHE_HOME", ".cache")
	}
	for i, output := range c.Log.Output {
		if output.Type == "file" && output.Path == "" {
			c.Log.Output[i].Path = filepath.Join(c.Storage.Data, "logs", "dda.log")
		}
	}
	if c.Envs == nil {
		c.Envs = map[string]map[string]any{}
	}
	if c.Orgs == nil {
		c.Orgs = map[string]OrgConfig{}
	}
}

func defaultStorageDir(xdgVar string, homeParts ...string) string {
	if dir := os.Getenv(xdgVar); dir != "" {
		return filepath.Join(dir, "dda")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "dda")
	}
	return filepath.Join(append(append([]string{home}, homeParts...), "dda")...)
}

// expandPaths expands ~ and environment variables in path configuration values
func (c *AppConfig) expandPaths() {
	c.Storage.Data = expandPath(c.Storage.Data)
	c.Storage.Cache = expandPath(c.Storage.Cache)
	for i := range c.Log.Output {
		c.Log.Output[i].Path = expandPath(c.Log.Output[i].Path)
	}
}

// expandPath expands ~ to home directory and environment variables
func expandPath(path string) string {
	if path == "" {
		return path
	}

	// Expand ~ to home directory
	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[1:])
		}
	}

	// Expand environment variables
	path = os.ExpandEnv(path)

	return path
}

// validate checks if the configuration is valid.
func (c *AppConfig) validate() error {
	validLogLevels := map[string]bool{
		"TRACE": true, "DEBUG": true, "INFO": true, "WARN": true, "ERROR": true, "FATAL": true, "PANIC": true,
	}
	if !validLogLevels[strings.ToUpper(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	if c.Storage.Data == "" {
		return errors.New("storage.data is required")
	}

	if c.Env.Dev.DefaultType == "" {
		return errors.New("env.dev.default_type is required")
	}
	if c.Env.QA.DefaultType == "" {
		return errors.New("env.qa.default_type is required")
	}

	return nil
}

// EnvDefaults returns the user defaults for an environment type, never nil.
func (c *AppConfig) EnvDefaults(envType string) map[string]any {
	if defaults, ok := c.Envs[envType]; ok && defaults != nil {
		return defaults
	}
	return map[string]any{}
}

// Org returns the named organization, or an empty one.
func (c *AppConfig) Org(name string) OrgConfig {
	return c.Orgs[name]
}
