// Package config loads brplaunch settings from .brplaunch.yaml, BRPLAUNCH_*
// environment variables and built-in defaults, in that order of precedence
// after command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/harshul/brplaunch/internal/cargo"
	"github.com/harshul/brplaunch/internal/launch"
	"github.com/harshul/brplaunch/internal/ports"
)

// FileName is the config file looked up in the working directory and $HOME.
const FileName = ".brplaunch.yaml"

// Config holds the brplaunch configuration
type Config struct {
	SearchRoots       []string      `mapstructure:"search_roots"`
	DefaultProfile    string        `mapstructure:"default_profile"`
	DefaultPort       uint16        `mapstructure:"default_port"`
	LogDir            string        `mapstructure:"log_dir"`
	MaxDepth          int           `mapstructure:"max_depth"`
	RequireDependency string        `mapstructure:"require_dependency"`
	BuildTimeout      time.Duration `mapstructure:"build_timeout"`
	LoadDotEnv        bool          `mapstructure:"load_dotenv"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SearchRoots:       []string{"."},
		DefaultProfile:    launch.ProfileDebug,
		DefaultPort:       ports.DefaultPort,
		LogDir:            launch.DefaultLogDir(),
		MaxDepth:          cargo.DefaultMaxDepth,
		RequireDependency: "bevy",
		BuildTimeout:      10 * time.Minute,
	}
}

// Load reads configuration. A non-empty path must exist; otherwise the file
// is optional and looked up in the working directory, then $HOME.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix("BRPLAUNCH")
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("search_roots", def.SearchRoots)
	v.SetDefault("default_profile", def.DefaultProfile)
	v.SetDefault("default_port", def.DefaultPort)
	v.SetDefault("log_dir", def.LogDir)
	v.SetDefault("max_depth", def.MaxDepth)
	v.SetDefault("require_dependency", def.RequireDependency)
	v.SetDefault("build_timeout", def.BuildTimeout)
	v.SetDefault("load_dotenv", def.LoadDotEnv)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late in a launch.
func (c *Config) Validate() error {
	if c.DefaultProfile != launch.ProfileDebug && c.DefaultProfile != launch.ProfileRelease {
		return fmt.Errorf("invalid configuration: default_profile must be debug or release, got %q", c.DefaultProfile)
	}
	if c.DefaultPort == 0 {
		return errors.New("invalid configuration: default_port must be between 1 and 65534")
	}
	if len(c.SearchRoots) == 0 {
		return errors.New("invalid configuration: search_roots is empty")
	}
	return nil
}

// fileConfig is the on-disk shape written by Write.
type fileConfig struct {
	SearchRoots       []string `yaml:"search_roots"`
	DefaultProfile    string   `yaml:"default_profile"`
	DefaultPort       uint16   `yaml:"default_port"`
	LogDir            string   `yaml:"log_dir,omitempty"`
	MaxDepth          int      `yaml:"max_depth"`
	RequireDependency string   `yaml:"require_dependency"`
	BuildTimeout      string   `yaml:"build_timeout"`
	LoadDotEnv        bool     `yaml:"load_dotenv"`
}

// Write writes cfg as a YAML file, creating parent directories.
func Write(path string, cfg Config) error {
	fc := fileConfig{
		SearchRoots:       cfg.SearchRoots,
		DefaultProfile:    cfg.DefaultProfile,
		DefaultPort:       cfg.DefaultPort,
		LogDir:            cfg.LogDir,
		MaxDepth:          cfg.MaxDepth,
		RequireDependency: cfg.RequireDependency,
		BuildTimeout:      cfg.BuildTimeout.String(),
		LoadDotEnv:        cfg.LoadDotEnv,
	}
	data, err := yaml.Marshal(&fc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
