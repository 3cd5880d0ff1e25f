package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Assets   AssetsConfig   `yaml:"assets" envconfig:"ASSETS"`
}

// ServerConfig contains HTTP server configuration. RequestTimeout bounds a
// single request's handling; zero disables the per-request timeout middleware.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8000"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"0s"`
}

// SecurityConfig contains security-related configuration.
// AllowedOrigins defaults to "*" so the generator can sit behind arbitrary
// authoring frontends. Not suitable for production as-is.
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"*"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"false"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"25"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// AssetsConfig contains the file system resources the renderer draws on.
// Everything here is optional at runtime: a missing logo or font file degrades
// the document, it never fails a request.
type AssetsConfig struct {
	LogoPath  string   `yaml:"logo_path" envconfig:"LOGO_PATH" default:"ci_logo.png"`
	FontPaths []string `yaml:"font_paths" envconfig:"FONT_PATHS" default:"fonts/NanumGothic.ttf,/usr/share/fonts/truetype/nanum/NanumGothic.ttf,/Library/Fonts/AppleGothic.ttf"`
	TempDir   string   `yaml:"temp_dir" envconfig:"TEMP_DIR"`
}

// envOverrides mirrors Config with pointer fields so a variable the
// environment actually sets is distinguishable from one left at its tag
// default. Only non-nil values override the merged file config.
type envOverrides struct {
	Server struct {
		Port            *int           `envconfig:"PORT"`
		ReadTimeout     *time.Duration `envconfig:"READ_TIMEOUT"`
		WriteTimeout    *time.Duration `envconfig:"WRITE_TIMEOUT"`
		IdleTimeout     *time.Duration `envconfig:"IDLE_TIMEOUT"`
		MaxHeaderBytes  *int           `envconfig:"MAX_HEADER_BYTES"`
		ShutdownTimeout *time.Duration `envconfig:"SHUTDOWN_TIMEOUT"`
		RequestTimeout  *time.Duration `envconfig:"REQUEST_TIMEOUT"`
	} `envconfig:"SERVER"`
	Security struct {
		AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`
		EnableCORS     *bool    `envconfig:"ENABLE_CORS"`
		RateLimit      struct {
			Enabled *bool    `envconfig:"ENABLED"`
			RPS     *float64 `envconfig:"RPS"`
			Burst   *int     `envconfig:"BURST"`
		} `envconfig:"RATE_LIMIT"`
	} `envconfig:"SECURITY"`
	Logging struct {
		Level    *string `envconfig:"LEVEL"`
		Format   *string `envconfig:"FORMAT"`
		Output   *string `envconfig:"OUTPUT"`
		FilePath *string `envconfig:"FILE_PATH"`
	} `envconfig:"LOGGING"`
	Assets struct {
		LogoPath  *string  `envconfig:"LOGO_PATH"`
		FontPaths []string `envconfig:"FONT_PATHS"`
		TempDir   *string  `envconfig:"TEMP_DIR"`
	} `envconfig:"ASSETS"`
}

// Load assembles the configuration in three layers: tag defaults, then the
// optional YAML file, then environment variables. Each layer overrides the one
// before it, and the YAML unmarshal touches only the keys the file carries.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("GHG", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config defaults: %w", err)
	}

	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	var env envOverrides
	if err := envconfig.Process("GHG", &env); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	applyEnvOverrides(&cfg, env)

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides copies every environment-set value onto the config
func applyEnvOverrides(cfg *Config, env envOverrides) {
	if env.Server.Port != nil {
		cfg.Server.Port = *env.Server.Port
	}
	if env.Server.ReadTimeout != nil {
		cfg.Server.ReadTimeout = *env.Server.ReadTimeout
	}
	if env.Server.WriteTimeout != nil {
		cfg.Server.WriteTimeout = *env.Server.WriteTimeout
	}
	if env.Server.IdleTimeout != nil {
		cfg.Server.IdleTimeout = *env.Server.IdleTimeout
	}
	if env.Server.MaxHeaderBytes != nil {
		cfg.Server.MaxHeaderBytes = *env.Server.MaxHeaderBytes
	}
	if env.Server.ShutdownTimeout != nil {
		cfg.Server.ShutdownTimeout = *env.Server.ShutdownTimeout
	}
	if env.Server.RequestTimeout != nil {
		cfg.Server.RequestTimeout = *env.Server.RequestTimeout
	}
	if env.Security.AllowedOrigins != nil {
		cfg.Security.AllowedOrigins = env.Security.AllowedOrigins
	}
	if env.Security.EnableCORS != nil {
		cfg.Security.EnableCORS = *env.Security.EnableCORS
	}
	if env.Security.RateLimit.Enabled != nil {
		cfg.Security.RateLimit.Enabled = *env.Security.RateLimit.Enabled
	}
	if env.Security.RateLimit.RPS != nil {
		cfg.Security.RateLimit.RPS = *env.Security.RateLimit.RPS
	}
	if env.Security.RateLimit.Burst != nil {
		cfg.Security.RateLimit.Burst = *env.Security.RateLimit.Burst
	}
	if env.Logging.Level != nil {
		cfg.Logging.Level = *env.Logging.Level
	}
	if env.Logging.Format != nil {
		cfg.Logging.Format = *env.Logging.Format
	}
	if env.Logging.Output != nil {
		cfg.Logging.Output = *env.Logging.Output
	}
	if env.Logging.FilePath != nil {
		cfg.Logging.FilePath = *env.Logging.FilePath
	}
	if env.Assets.LogoPath != nil {
		cfg.Assets.LogoPath = *env.Assets.LogoPath
	}
	if env.Assets.FontPaths != nil {
		cfg.Assets.FontPaths = env.Assets.FontPaths
	}
	if env.Assets.TempDir != nil {
		cfg.Assets.TempDir = *env.Assets.TempDir
	}
}

// getConfigFilePath returns the config file path, honoring GHG_CONFIG_FILE
func getConfigFilePath() string {
	if path := os.Getenv("GHG_CONFIG_FILE"); path != "" {
		return path
	}
	return "config.yaml"
}

// resolvePaths makes asset paths absolute relative to the working directory.
// Font paths are left as given: only existence at render time matters.
func (c *Config) resolvePaths() error {
	if c.Assets.LogoPath != "" && !filepath.IsAbs(c.Assets.LogoPath) {
		abs, err := filepath.Abs(c.Assets.LogoPath)
		if err != nil {
			return fmt.Errorf("failed to resolve logo path: %w", err)
		}
		c.Assets.LogoPath = abs
	}
	if c.Assets.TempDir == "" {
		c.Assets.TempDir = os.TempDir()
	}
	return nil
}

// validate checks configuration invariants
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative, got %s", c.Server.RequestTimeout)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validOutputs := map[string]bool{"stdout": true, "file": true, "both": true}
	if !validOutputs[c.Logging.Output] {
		return fmt.Errorf("invalid log output: %s", c.Logging.Output)
	}

	if c.Security.RateLimit.Enabled {
		if c.Security.RateLimit.RPS <= 0 {
			return fmt.Errorf("rate limit rps must be positive, got %f", c.Security.RateLimit.RPS)
		}
		if c.Security.RateLimit.Burst <= 0 {
			return fmt.Errorf("rate limit burst must be positive, got %d", c.Security.RateLimit.Burst)
		}
	}

	return nil
}

// GetAddress returns the server listen address
func (c *Config) GetAddress() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
