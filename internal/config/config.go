// Package config loads tasklist settings from defaults, <root>/config.yaml,
// TASKLIST_* environment variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "TASKLIST"
	configName     = "config"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	defaultDirName = ".tasklist"
)

type Config struct {
	Root    string        `mapstructure:"root" yaml:"root" json:"root"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage" json:"storage"`
	Export  ExportConfig  `mapstructure:"export" yaml:"export" json:"export"`
	Log     LogConfig     `mapstructure:"log" yaml:"log" json:"log"`
	Display DisplayConfig `mapstructure:"display" yaml:"display" json:"display"`
	Digest  DigestConfig  `mapstructure:"digest" yaml:"digest" json:"digest"`
}

type StorageConfig struct {
	Format        string `mapstructure:"format" yaml:"format" json:"format"`
	TasksFile     string `mapstructure:"tasks_file" yaml:"tasks_file" json:"tasks_file"`
	TemplatesFile string `mapstructure:"templates_file" yaml:"templates_file" json:"templates_file"`
}

type ExportConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir" json:"dir"`
}

type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level" json:"level"`
	Development bool   `mapstructure:"development" yaml:"development" json:"development"`
}

type DisplayConfig struct {
	Color bool `mapstructure:"color" yaml:"color" json:"color"`
}

type DigestConfig struct {
	Limit int `mapstructure:"limit" yaml:"limit" json:"limit"`
}

// DefaultRoot resolves the store root from TASKLIST_ROOT or ~/.tasklist.
func DefaultRoot() string {
	if env := strings.TrimSpace(os.Getenv(EnvPrefix + "_ROOT")); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		return defaultDirName
	}
	return filepath.Join(home, defaultDirName)
}

// Load reads configuration for the store rooted at root. A missing config
// file is not an error.
func Load(root string) (*Config, error) {
	// Best effort: a .env in the working directory may set TASKLIST_* values.
	_ = godotenv.Load()

	if strings.TrimSpace(root) == "" {
		root = DefaultRoot()
	}
	root = ExpandHome(root)

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(root)
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Root = root
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.format", FormatJSON)
	v.SetDefault("storage.tasks_file", "")
	v.SetDefault("storage.templates_file", "")
	v.SetDefault("export.dir", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.development", true)
	v.SetDefault("display.color", true)
	v.SetDefault("digest.limit", 5)
}

func (c *Config) normalize() error {
	c.Storage.Format = strings.ToLower(strings.TrimSpace(c.Storage.Format))
	switch c.Storage.Format {
	case FormatJSON, FormatYAML:
	case "yml":
		c.Storage.Format = FormatYAML
	default:
		return fmt.Errorf("storage.format: %q is not json or yaml", c.Storage.Format)
	}
	ext := "." + c.Storage.Format
	if c.Storage.TasksFile == "" {
		c.Storage.TasksFile = "tasks" + ext
	}
	if c.Storage.TemplatesFile == "" {
		c.Storage.TemplatesFile = "templates" + ext
	}
	c.Storage.TasksFile = c.resolve(c.Storage.TasksFile)
	c.Storage.TemplatesFile = c.resolve(c.Storage.TemplatesFile)
	if c.Export.Dir == "" {
		c.Export.Dir = "exports"
	}
	c.Export.Dir = c.resolve(c.Export.Dir)
	if c.Digest.Limit <= 0 {
		c.Digest.Limit = 5
	}
	return nil
}

// ConfigPath is where Load looks for the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Root, configName+".yaml")
}

func (c *Config) resolve(p string) string {
	p = ExpandHome(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Root, p)
}

func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~"+string(os.PathSeparator)) || path == "~" {
		home, _ := os.UserHomeDir()
		if home != "" {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
