package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Paths      PathsConfig      `yaml:"paths"`
	Media      MediaConfig      `yaml:"media"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// PathsConfig contains directory paths
type PathsConfig struct {
	WorkDirectory string `yaml:"work_directory"`
}

// MediaConfig contains fetch and extraction settings
type MediaConfig struct {
	FFmpegPath     string        `yaml:"ffmpeg_path"`
	ExtractTimeout time.Duration `yaml:"extract_timeout"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
	YtDlpPath      string        `yaml:"ytdlp_path"`
	YtDlpHosts     []string      `yaml:"ytdlp_hosts"`
}

// Classifier modes
const (
	ClassifierCommand = "command"
	ClassifierHTTP    = "http"
)

// ClassifierConfig selects and configures the accent model adapter
type ClassifierConfig struct {
	Mode    string        `yaml:"mode"`
	Command string        `yaml:"command"`
	Args    []string      `yaml:"args"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ServerConfig contains web UI settings
type ServerConfig struct {
	ListenAddress string `yaml:"listen_address"`
	MaxUploadMB   int64  `yaml:"max_upload_mb"`
}

// LoggingConfig contains log level and rotation settings
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every empty value with its default
func (c *Config) ApplyDefaults() {
	if c.Paths.WorkDirectory == "" {
		c.Paths.WorkDirectory = filepath.Join("output", "extracted_audio")
	}
	if c.Media.FFmpegPath == "" {
		c.Media.FFmpegPath = "ffmpeg"
	}
	if c.Media.ExtractTimeout == 0 {
		c.Media.ExtractTimeout = 10 * time.Minute
	}
	if c.Media.FetchTimeout == 0 {
		c.Media.FetchTimeout = 30 * time.Minute // Videos can be large
	}
	if c.Media.YtDlpPath == "" {
		c.Media.YtDlpPath = "yt-dlp"
	}
	if c.Media.YtDlpHosts == nil {
		c.Media.YtDlpHosts = []string{"youtube.com", "youtu.be", "vimeo.com", "tiktok.com"}
	}
	if c.Classifier.Mode == "" {
		c.Classifier.Mode = ClassifierCommand
	}
	if c.Classifier.Command == "" && c.Classifier.Mode == ClassifierCommand {
		c.Classifier.Command = "python3"
		if c.Classifier.Args == nil {
			c.Classifier.Args = []string{filepath.Join("scripts", "classify_accent.py")}
		}
	}
	if c.Classifier.Timeout == 0 {
		c.Classifier.Timeout = 5 * time.Minute
	}
	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = ":8080"
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 500
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 100
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 3
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = 28
	}
}

// Environment variables that override file values
const (
	EnvWorkDir       = "ACCENT_WORK_DIR"
	EnvFFmpegPath    = "ACCENT_FFMPEG_PATH"
	EnvListenAddr    = "ACCENT_LISTEN_ADDR"
	EnvClassifierURL = "ACCENT_CLASSIFIER_URL"
	EnvLogLevel      = "ACCENT_LOG_LEVEL"
	EnvMaxUploadMB   = "ACCENT_MAX_UPLOAD_MB"
)

// ApplyEnv overrides values from the environment. lookup is usually os.LookupEnv.
// Setting ACCENT_CLASSIFIER_URL also switches the classifier to http mode.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvWorkDir); ok && v != "" {
		c.Paths.WorkDirectory = v
	}
	if v, ok := lookup(EnvFFmpegPath); ok && v != "" {
		c.Media.FFmpegPath = v
	}
	if v, ok := lookup(EnvListenAddr); ok && v != "" {
		c.Server.ListenAddress = v
	}
	if v, ok := lookup(EnvClassifierURL); ok && v != "" {
		c.Classifier.Mode = ClassifierHTTP
		c.Classifier.URL = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup(EnvMaxUploadMB); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMaxUploadMB, err)
		}
		c.Server.MaxUploadMB = n
	}
	return nil
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	switch c.Classifier.Mode {
	case ClassifierCommand:
		if c.Classifier.Command == "" {
			return errors.New("classifier.command is required in command mode")
		}
	case ClassifierHTTP:
		if !strings.HasPrefix(c.Classifier.URL, "http://") && !strings.HasPrefix(c.Classifier.URL, "https://") {
			return fmt.Errorf("classifier.url must be an http(s) URL, got %q", c.Classifier.URL)
		}
	default:
		return fmt.Errorf("classifier.mode must be %q or %q, got %q", ClassifierCommand, ClassifierHTTP, c.Classifier.Mode)
	}

	if c.Media.ExtractTimeout < 0 || c.Media.FetchTimeout < 0 || c.Classifier.Timeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	if c.Server.MaxUploadMB < 0 {
		return errors.New("server.max_upload_mb must not be negative")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

// Load reads and parses the configuration from the specified YAML file,
// then applies defaults and environment overrides
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault behaves like Load but falls back to defaults when the file does not exist
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg = Default()
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
