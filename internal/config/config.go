package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iksnae/weather-chat/internal"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Build-time defaults, overridable with
// -ldflags "-X github.com/iksnae/weather-chat/internal/config.DefaultAPIURL=..."
var (
	DefaultAPIURL = "http://localhost:8000"
	DefaultWSURL  = "ws://localhost:8000/ws"
)

const (
	envPrefix             = "WEATHER_CHAT"
	defaultReplyTimeout   = 30 * time.Second
	defaultRequestTimeout = 60 * time.Second
)

// Config holds the client configuration
type Config struct {
	APIURL         string        `yaml:"api_url" envconfig:"API_URL"`
	WSURL          string        `yaml:"ws_url" envconfig:"WS_URL"`
	ReplyTimeout   time.Duration `yaml:"reply_timeout" envconfig:"REPLY_TIMEOUT"`
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	LogFile        string        `yaml:"log_file" envconfig:"LOG_FILE"`
	LogLevel       string        `yaml:"log_level" envconfig:"LOG_LEVEL"`
}

// Default returns the configuration used when nothing else is set
func Default() *Config {
	return &Config{
		APIURL:         DefaultAPIURL,
		WSURL:          DefaultWSURL,
		ReplyTimeout:   defaultReplyTimeout,
		RequestTimeout: defaultRequestTimeout,
		LogFile:        defaultLogFile(),
		LogLevel:       "info",
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// any), a .env file in the working directory and WEATHER_CHAT_* environment
// variables, in that order. An empty path looks for the default config file
// and silently skips it when missing.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		internal.LogDebug("Could not load .env: %v", err)
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, &internal.ParseError{Source: "config", Key: "environment", Err: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return &internal.ParseError{Source: "config", Key: path, Err: err}
	}
	internal.LogDebug("Loaded config file %s", path)
	return nil
}

// Validate checks the endpoint addresses and timeouts
func (c *Config) Validate() error {
	api, err := url.Parse(c.APIURL)
	if err != nil || (api.Scheme != "http" && api.Scheme != "https") || api.Host == "" {
		return fmt.Errorf("invalid api url %q: must be an http(s) URL", c.APIURL)
	}
	ws, err := url.Parse(c.WSURL)
	if err != nil || (ws.Scheme != "ws" && ws.Scheme != "wss") || ws.Host == "" {
		return fmt.Errorf("invalid websocket url %q: must be a ws(s) URL", c.WSURL)
	}
	if c.ReplyTimeout < 0 {
		return fmt.Errorf("reply timeout must not be negative, got %s", c.ReplyTimeout)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout)
	}
	return nil
}

// ChatEndpoint returns the one-shot endpoint URL
func (c *Config) ChatEndpoint() string {
	return strings.TrimRight(c.APIURL, "/") + "/chat"
}

// DefaultPath returns the default config file location, or "" when the user
// config directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "weather-chat", "config.yaml")
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "weather-chat.log")
	}
	return filepath.Join(dir, "weather-chat", "weather-chat.log")
}
