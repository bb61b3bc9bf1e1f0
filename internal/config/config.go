package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/spf13/viper"

	"treemerge/internal/classify"
	"treemerge/internal/output"
	"treemerge/internal/slogutil"
)

// CurrentVersion is the only config schema version understood.
const CurrentVersion = 1

// Dir is the directory searched for config.{yaml,toml,json}.
const Dir = ".treemerge"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TREEMERGE"

// Config is the complete treemerge configuration.
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Profile ProfileConfig `json:"profile" mapstructure:"profile"`
	Source  SourceConfig  `json:"source" mapstructure:"source"`
	Output  OutputConfig  `json:"output" mapstructure:"output"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ProfileConfig selects the classifiers. Path wins over inline
// Classifiers; with neither the built-in profile is used.
type ProfileConfig struct {
	Path          string                `json:"path,omitempty" mapstructure:"path"`
	FoldCacheSize int                   `json:"foldCacheSize" mapstructure:"fold_cache_size"`
	Classifiers   []classify.Definition `json:"classifiers,omitempty" mapstructure:"classifiers"`
}

// SourceConfig controls how directory sources are read.
type SourceConfig struct {
	Ignore []string `json:"ignore" mapstructure:"ignore"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format string `json:"format" mapstructure:"format"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level      string `json:"level" mapstructure:"level"`
	File       string `json:"file,omitempty" mapstructure:"file"`
	MaxSize    string `json:"maxSize,omitempty" mapstructure:"max_size"`
	MaxBackups int    `json:"maxBackups" mapstructure:"max_backups"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Profile: ProfileConfig{
			FoldCacheSize: classify.DefaultFoldCacheSize,
		},
		Source: SourceConfig{
			Ignore: []string{".git"},
		},
		Output: OutputConfig{
			Format: string(output.FormatText),
		},
		Logging: LoggingConfig{
			Level:      "warn",
			MaxSize:    "10MB",
			MaxBackups: 3,
		},
	}
}

// envBindings maps config keys to their environment variables.
var envBindings = []struct {
	key string
	env string
}{
	{"profile.path", "TREEMERGE_PROFILE"},
	{"profile.fold_cache_size", "TREEMERGE_PROFILE_FOLD_CACHE_SIZE"},
	{"source.ignore", "TREEMERGE_SOURCE_IGNORE"},
	{"output.format", "TREEMERGE_OUTPUT_FORMAT"},
	{"logging.level", "TREEMERGE_LOG_LEVEL"},
	{"logging.file", "TREEMERGE_LOG_FILE"},
	{"logging.max_size", "TREEMERGE_LOG_MAX_SIZE"},
	{"logging.max_backups", "TREEMERGE_LOG_MAX_BACKUPS"},
}

// ConfigPathEnv names an explicit config file.
const ConfigPathEnv = "TREEMERGE_CONFIG_PATH"

// GetSupportedEnvVars lists every environment variable read.
func GetSupportedEnvVars() []string {
	vars := []string{ConfigPathEnv}
	for _, b := range envBindings {
		vars = append(vars, b.env)
	}
	return vars
}

// EnvOverride records one environment variable that changed a setting.
type EnvOverride struct {
	Var   string
	Key   string
	Value string
}

// LoadResult describes where a configuration came from.
type LoadResult struct {
	Config       *Config
	ConfigPath   string
	UsedDefaults bool
	EnvOverrides []EnvOverride
}

// LoadConfig loads the configuration for dir.
func LoadConfig(dir string) (*Config, error) {
	result, err := LoadConfigWithDetails(dir, "")
	if err != nil {
		return nil, err
	}
	return result.Config, nil
}

// LoadConfigWithDetails reads path, or when empty the file named by
// TREEMERGE_CONFIG_PATH, or else dir/.treemerge/config.*. Environment
// overrides apply on top; unset fields take their defaults.
func LoadConfigWithDetails(dir, path string) (*LoadResult, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	for _, b := range envBindings {
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", b.env, err)
		}
	}

	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, &ConfigError{Field: "file", Message: err.Error()}
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(dir, Dir))
	}

	result := &LoadResult{}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &ConfigError{Field: "file", Message: err.Error()}
		}
		result.UsedDefaults = true
	} else {
		result.ConfigPath = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Field: "file", Message: err.Error()}
	}
	if err := mergo.Merge(&cfg, *DefaultConfig()); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	for _, b := range envBindings {
		if value, ok := os.LookupEnv(b.env); ok {
			result.EnvOverrides = append(result.EnvOverrides, EnvOverride{Var: b.env, Key: b.key, Value: value})
		}
	}

	if cfg.Profile.Path != "" && !filepath.IsAbs(cfg.Profile.Path) && result.ConfigPath != "" {
		cfg.Profile.Path = filepath.Join(filepath.Dir(result.ConfigPath), cfg.Profile.Path)
	}

	result.Config = &cfg
	return result, nil
}

// Validate checks the settings that can be checked without touching the
// file system.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: fmt.Sprintf("unsupported config version %d", c.Version)}
	}
	if _, err := output.ParseFormat(c.Output.Format); err != nil {
		return &ConfigError{Field: "output.format", Message: err.Error()}
	}
	if c.Profile.FoldCacheSize < 0 {
		return &ConfigError{Field: "profile.fold_cache_size", Message: "must not be negative"}
	}
	if _, ok := slogutil.ParseLevel(c.Logging.Level); !ok {
		return &ConfigError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	if c.Logging.MaxSize != "" && slogutil.ParseSize(c.Logging.MaxSize) == 0 {
		return &ConfigError{Field: "logging.max_size", Message: fmt.Sprintf("invalid size %q", c.Logging.MaxSize)}
	}
	if c.Logging.MaxBackups < 0 {
		return &ConfigError{Field: "logging.max_backups", Message: "must not be negative"}
	}
	return nil
}

// ClassifierProfile resolves the profile the configuration selects.
func (c *Config) ClassifierProfile() (classify.Profile, error) {
	var p classify.Profile
	switch {
	case c.Profile.Path != "":
		var err error
		if p, err = classify.LoadProfile(c.Profile.Path); err != nil {
			return classify.Profile{}, err
		}
	case len(c.Profile.Classifiers) > 0:
		p = classify.Profile{Name: "config", Classifiers: c.Profile.Classifiers}
	default:
		p = classify.DefaultProfile()
	}
	if p.FoldCacheSize == 0 {
		p.FoldCacheSize = c.Profile.FoldCacheSize
	}
	return p, nil
}

// ConfigError reports an invalid setting.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
