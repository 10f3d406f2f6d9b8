// Package config resolves client settings from explicit options, environment
// variables, an optional YAML file and built-in defaults, in that precedence
// order. A .env file in the working directory is loaded into the environment
// first, so local development needs no exported variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables, checked in order where several name the same
// setting.
const (
	EnvAPIKey       = "GOOGLEAI_API_KEY"
	EnvAPIKeyLegacy = "GEMINI_API_KEY"
	EnvBaseURL      = "GOOGLEAI_BASE_URL"
	EnvModel        = "GOOGLEAI_MODEL"
	EnvTimeout      = "GOOGLEAI_TIMEOUT"
)

// Config is the resolved client configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// Generation holds default sampling parameters applied to requests
	// that set none.
	Generation Generation

	// Safety holds default safety settings.
	Safety []Safety

	file string
}

// Generation mirrors the tunable sampling parameters in YAML form.
type Generation struct {
	Temperature     *float64 `yaml:"temperature"`
	TopP            *float64 `yaml:"top_p"`
	TopK            *int     `yaml:"top_k"`
	MaxOutputTokens *int     `yaml:"max_output_tokens"`
}

// Safety is one category threshold pair.
type Safety struct {
	Category  string `yaml:"category"`
	Threshold string `yaml:"threshold"`
}

// Option overrides one resolved setting. Options take precedence over
// everything else.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithBaseURL sets the endpoint.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithModel sets the default model.
func WithModel(model string) Option {
	return func(c *Config) { c.Model = model }
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithFile overlays settings from a YAML file. An unreadable file makes
// Load fail.
func WithFile(path string) Option {
	return func(c *Config) { c.file = path }
}

// Load resolves the configuration. Precedence per field: explicit option,
// then environment, then YAML file, then default. Returns an error when the
// YAML file was requested but unreadable, never when settings are merely
// absent; validity checks (such as a present API key) belong to the client
// constructor.
func Load(opts ...Option) (*Config, error) {
	// Best effort: absence of a .env file is the normal production case.
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL: "https://generativelanguage.googleapis.com/v1beta",
		Model:   "gemini-2.0-flash",
		Timeout: 2 * time.Minute,
	}

	// Options are applied twice: the first pass only captures the file
	// path so file values sit below env values, the second reasserts
	// explicit overrides on top.
	probe := &Config{}
	for _, opt := range opts {
		opt(probe)
	}
	if probe.file != "" {
		if err := cfg.overlayFile(probe.file); err != nil {
			return nil, err
		}
	}

	cfg.overlayEnv()

	for _, opt := range opts {
		opt(cfg)
	}
	cfg.file = ""
	return cfg, nil
}

// fileConfig is the YAML shape. Timeout is a string so "30s" style values
// parse through time.ParseDuration.
type fileConfig struct {
	APIKey     string     `yaml:"api_key"`
	BaseURL    string     `yaml:"base_url"`
	Model      string     `yaml:"model"`
	Timeout    string     `yaml:"timeout"`
	Generation Generation `yaml:"generation"`
	Safety     []Safety   `yaml:"safety"`
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if file.APIKey != "" {
		c.APIKey = file.APIKey
	}
	if file.BaseURL != "" {
		c.BaseURL = file.BaseURL
	}
	if file.Model != "" {
		c.Model = file.Model
	}
	if file.Timeout != "" {
		d, err := time.ParseDuration(file.Timeout)
		if err != nil {
			return fmt.Errorf("config: parse %s: timeout: %w", path, err)
		}
		c.Timeout = d
	}
	c.Generation = file.Generation
	c.Safety = file.Safety
	return nil
}

func (c *Config) overlayEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	} else if v := os.Getenv(EnvAPIKeyLegacy); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
}
