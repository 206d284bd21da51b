// Package config loads versefetch settings from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/versefetch/internal/fetch"
	"github.com/FocuswithJustin/versefetch/internal/logging"
	"github.com/FocuswithJustin/versefetch/internal/output"
	"github.com/FocuswithJustin/versefetch/internal/validation"
)

// MaxWorkers bounds the prefetch parallelism. There are only five corpus files.
const MaxWorkers = 16

// Config holds the runtime settings. Zero values in a loaded file keep
// the defaults.
type Config struct {
	BaseURL     string        `yaml:"base_url"`
	Output      string        `yaml:"output"`
	Format      string        `yaml:"format"`
	Timeout     time.Duration `yaml:"timeout"`
	RateLimit   float64       `yaml:"rate_limit"`
	UserAgent   string        `yaml:"user_agent"`
	CacheDir    string        `yaml:"cache_dir"` // empty disables the disk cache
	CacheMaxAge time.Duration `yaml:"cache_max_age"`
	Workers     int           `yaml:"workers"`
	LogLevel    string        `yaml:"log_level"`
	LogFormat   string        `yaml:"log_format"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		BaseURL:   fetch.DefaultBaseURL,
		Output:    "output.json",
		Format:    string(output.FormatJSON),
		Timeout:   fetch.DefaultTimeout,
		UserAgent: fetch.DefaultUserAgent,
		Workers:   1,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load returns the defaults overlaid with the file at path. An empty path
// returns the defaults. Unknown keys are an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if err := validation.ValidatePath(path); err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := cfg.decode(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("base_url must be an http(s) URL, got %q", c.BaseURL))
	}
	if _, err := output.ParseFormat(c.Format); err != nil {
		errs = append(errs, fmt.Errorf("format: %w", err))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output must not be empty"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate_limit must not be negative, got %g", c.RateLimit))
	}
	if c.CacheMaxAge < 0 {
		errs = append(errs, fmt.Errorf("cache_max_age must not be negative, got %s", c.CacheMaxAge))
	}
	if c.CacheDir != "" {
		if err := validation.ValidatePath(c.CacheDir); err != nil {
			errs = append(errs, fmt.Errorf("cache_dir: %w", err))
		}
	}
	if c.Workers < 1 || c.Workers > MaxWorkers {
		errs = append(errs, fmt.Errorf("workers must be between 1 and %d, got %d", MaxWorkers, c.Workers))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		errs = append(errs, fmt.Errorf("log_format: %w", err))
	}

	return errors.Join(errs...)
}

// Marshal returns the settings as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
