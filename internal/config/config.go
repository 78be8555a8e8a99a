// File: internal/config/config.go
package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Supported wire backends for driving the browser.
const (
	BackendWebDriver = "webdriver"
	BackendCDP       = "cdp"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Site    SiteConfig    `mapstructure:"site" yaml:"site"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Post    PostConfig    `mapstructure:"post" yaml:"post"`
	Convert ConvertConfig `mapstructure:"convert" yaml:"convert"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names used for each log level on the console.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
}

// ServerConfig describes the automation server child process.
type ServerConfig struct {
	// Binary and Args override the backend's default command line when set.
	Binary string   `mapstructure:"binary" yaml:"binary"`
	Args   []string `mapstructure:"args" yaml:"args"`
	Env    []string `mapstructure:"env" yaml:"env"`
	// Address is the fixed local endpoint the server listens on.
	Address string `mapstructure:"address" yaml:"address"`
	// LogFile receives the server's stdout/stderr. Empty discards it.
	LogFile      string        `mapstructure:"log_file" yaml:"log_file"`
	ReadyTimeout time.Duration `mapstructure:"ready_timeout" yaml:"ready_timeout"`
	StopTimeout  time.Duration `mapstructure:"stop_timeout" yaml:"stop_timeout"`
}

// BrowserConfig tunes how the session talks to the browser.
type BrowserConfig struct {
	Backend     string `mapstructure:"backend" yaml:"backend"`
	BrowserName string `mapstructure:"browser_name" yaml:"browser_name"`
	// ElementTimeout bounds how long a resolver waits for a selector to match.
	ElementTimeout time.Duration `mapstructure:"element_timeout" yaml:"element_timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	// OperationTimeout bounds a single remote command.
	OperationTimeout time.Duration `mapstructure:"operation_timeout" yaml:"operation_timeout"`
	// ActionRate limits mutating UI commands per second. Zero disables pacing.
	ActionRate  float64 `mapstructure:"action_rate" yaml:"action_rate"`
	ActionBurst int     `mapstructure:"action_burst" yaml:"action_burst"`
}

// SiteConfig identifies the target web application.
type SiteConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// SessionConfig holds settings for persisted credentials.
type SessionConfig struct {
	CookieFile string `mapstructure:"cookie_file" yaml:"cookie_file"`
}

// PostConfig holds settings for the post-new workflow.
type PostConfig struct {
	// Associations enables the best-effort associations section.
	Associations bool          `mapstructure:"associations" yaml:"associations"`
	SubmitWait   time.Duration `mapstructure:"submit_wait" yaml:"submit_wait"`
}

// ConvertConfig configures rich-text conversion of chapter files.
type ConvertConfig struct {
	Pandoc     string   `mapstructure:"pandoc" yaml:"pandoc"`
	PandocArgs []string `mapstructure:"pandoc_args" yaml:"pandoc_args"`
	Sanitize   bool     `mapstructure:"sanitize" yaml:"sanitize"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return cfg
}

// Load unmarshals the viper state into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = DefaultAddress(cfg.Browser.Backend)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults initializes default values for every configuration parameter.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "ficwright")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")

	// -- Server --
	v.SetDefault("server.binary", "")
	v.SetDefault("server.address", "")
	v.SetDefault("server.log_file", "")
	v.SetDefault("server.ready_timeout", "1s")
	v.SetDefault("server.stop_timeout", "5s")

	// -- Browser --
	v.SetDefault("browser.backend", BackendWebDriver)
	v.SetDefault("browser.browser_name", "firefox")
	v.SetDefault("browser.element_timeout", "5s")
	v.SetDefault("browser.poll_interval", "100ms")
	v.SetDefault("browser.operation_timeout", "30s")
	v.SetDefault("browser.action_rate", 20.0)
	v.SetDefault("browser.action_burst", 5)

	// -- Site --
	v.SetDefault("site.base_url", "https://archiveofourown.org")

	// -- Session --
	v.SetDefault("session.cookie_file", "~/.ao3.cookie")

	// -- Post --
	v.SetDefault("post.associations", false)
	v.SetDefault("post.submit_wait", "30s")

	// -- Convert --
	v.SetDefault("convert.pandoc", "pandoc")
	v.SetDefault("convert.pandoc_args", []string{"--from", "markdown", "--to", "html"})
	v.SetDefault("convert.sanitize", true)
}

// Validate checks the configuration for values the rest of the program cannot work with.
func (c *Config) Validate() error {
	switch c.Browser.Backend {
	case BackendWebDriver, BackendCDP:
	default:
		return fmt.Errorf("unsupported browser backend %q (want %q or %q)", c.Browser.Backend, BackendWebDriver, BackendCDP)
	}
	if _, _, err := net.SplitHostPort(c.Server.Address); err != nil {
		return fmt.Errorf("invalid server address %q: %w", c.Server.Address, err)
	}
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url must not be empty")
	}
	if c.Browser.ElementTimeout <= 0 {
		return fmt.Errorf("browser.element_timeout must be positive")
	}
	return nil
}

// DefaultAddress returns the conventional local endpoint for a backend.
func DefaultAddress(backend string) string {
	if backend == BackendCDP {
		return "127.0.0.1:9222"
	}
	return "127.0.0.1:4444"
}

// ServerCommand returns the executable and arguments used to start the
// automation server. Explicit binary/args in the config take precedence.
func (c *Config) ServerCommand() (string, []string) {
	host, port, _ := net.SplitHostPort(c.Server.Address)
	binary := c.Server.Binary
	args := c.Server.Args

	switch c.Browser.Backend {
	case BackendCDP:
		if binary == "" {
			binary = "chromium"
		}
		if len(args) == 0 {
			args = []string{
				"--remote-debugging-address=" + host,
				"--remote-debugging-port=" + port,
				"--no-first-run",
				"--no-default-browser-check",
			}
		}
	default:
		if binary == "" {
			binary = "geckodriver"
		}
		if len(args) == 0 {
			args = []string{"--host", host, "--port", port}
		}
	}
	return binary, args
}

// ExpandPath resolves a leading "~" to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" || !strings.HasPrefix(path, "~") {
		return path, nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand path %q: %w", path, err)
	}
	return expanded, nil
}

// EnvKeyReplacer maps nested config keys to environment variable names.
func EnvKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}
