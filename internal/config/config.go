package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
)

// ErrMissingBaseURL is returned when neither the config file nor the
// environment names the API root.
var ErrMissingBaseURL = errors.New("api_base_url is not configured")

// BaseURLEnv overrides api_base_url when set.
const BaseURLEnv = "ROACHAGRAM_API_BASE_URL"

// Storage backends for the device identity.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config is the roachagram client configuration.
type Config struct {
	APIBaseURL     string        `validate:"required,url"`
	Theme          string        `validate:"oneof=light dark"`
	RevealSpeedMs  int           `validate:"gte=1,lte=1000"`
	FontFamily     string        `validate:"required"`
	LogLevel       string        `validate:"oneof=debug info warn error"`
	RequestTimeout time.Duration `validate:"gte=0"`
	MaxInputLength int           `validate:"gte=1,lte=50"`
	Telemetry      bool
	MetricsAddr    string `validate:"omitempty,hostname_port"`
	Storage        Storage
}

// Storage selects where the device identity lives.
type Storage struct {
	Backend       string `validate:"oneof=file redis memory"`
	Path          string `validate:"required_if=Backend file"`
	RedisAddr     string `validate:"required_if=Backend redis"`
	EncryptionKey string
}

const (
	defaultConfigPath     = "~/.config/roachagram/config.toml"
	defaultStoragePath    = "~/.local/share/roachagram/identity.toml"
	defaultTheme          = "light"
	defaultRevealSpeedMs  = 30
	defaultFontFamily     = "'Open Sans', Arial, sans-serif"
	defaultLogLevel       = "info"
	defaultRequestTimeout = 60 * time.Second
	defaultMaxInputLength = 50
)

// Default returns a Config with every optional field filled. APIBaseURL is
// left empty.
func Default() Config {
	return Config{
		Theme:          defaultTheme,
		RevealSpeedMs:  defaultRevealSpeedMs,
		FontFamily:     defaultFontFamily,
		LogLevel:       defaultLogLevel,
		RequestTimeout: defaultRequestTimeout,
		MaxInputLength: defaultMaxInputLength,
		Telemetry:      true,
		Storage: Storage{
			Backend: BackendFile,
			Path:    mustExpand(defaultStoragePath),
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return defaultConfigPath
}

type rawConfig struct {
	APIBaseURL     string `toml:"api_base_url"`
	Theme          string `toml:"theme"`
	RevealSpeedMs  int    `toml:"reveal_speed_ms"`
	FontFamily     string `toml:"font_family"`
	LogLevel       string `toml:"log_level"`
	RequestTimeout string `toml:"request_timeout"`
	MaxInputLength int    `toml:"max_input_length"`
	Telemetry      *bool  `toml:"telemetry"`
	MetricsAddr    string `toml:"metrics_addr"`
	Storage        struct {
		Backend       string `toml:"backend"`
		Path          string `toml:"path"`
		RedisAddr     string `toml:"redis_addr"`
		EncryptionKey string `toml:"encryption_key"`
	} `toml:"storage"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the config at path (or the default location), applies the
// environment override and validates the result. A missing file is not an
// error, but a missing base URL is.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	var raw rawConfig
	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	if err := cfg.apply(raw); err != nil {
		return Config{}, err
	}
	if env := strings.TrimSpace(os.Getenv(BaseURLEnv)); env != "" {
		cfg.APIBaseURL = env
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) apply(raw rawConfig) error {
	c.APIBaseURL = strings.TrimSpace(raw.APIBaseURL)
	if v := strings.ToLower(strings.TrimSpace(raw.Theme)); v != "" {
		c.Theme = v
	}
	if raw.RevealSpeedMs != 0 {
		c.RevealSpeedMs = raw.RevealSpeedMs
	}
	if v := strings.TrimSpace(raw.FontFamily); v != "" {
		c.FontFamily = v
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(raw.RequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse request_timeout: %w", err)
		}
		c.RequestTimeout = d
	}
	if raw.MaxInputLength != 0 {
		c.MaxInputLength = raw.MaxInputLength
	}
	if raw.Telemetry != nil {
		c.Telemetry = *raw.Telemetry
	}
	c.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)

	if v := strings.ToLower(strings.TrimSpace(raw.Storage.Backend)); v != "" {
		c.Storage.Backend = v
	}
	if v := strings.TrimSpace(raw.Storage.Path); v != "" {
		expanded, err := ExpandPath(v)
		if err != nil {
			return fmt.Errorf("expand storage path: %w", err)
		}
		c.Storage.Path = expanded
	}
	c.Storage.RedisAddr = strings.TrimSpace(raw.Storage.RedisAddr)
	c.Storage.EncryptionKey = strings.TrimSpace(raw.Storage.EncryptionKey)
	return nil
}

// Validate checks field constraints. A blank base URL reports
// ErrMissingBaseURL.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return ErrMissingBaseURL
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// TelemetryEndpoint is where the telemetry sink posts events.
func (c Config) TelemetryEndpoint() string {
	return c.Endpoint("api/telemetry")
}

// Endpoint resolves rel against APIBaseURL, keeping any base path.
func (c Config) Endpoint(rel string) string {
	base, err := url.Parse(strings.TrimSpace(c.APIBaseURL))
	if err != nil {
		return ""
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base.ResolveReference(&url.URL{Path: strings.TrimPrefix(rel, "/")}).String()
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
