package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMatcher(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateUpload(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMatcher() error {
	parsed, err := url.Parse(c.Matcher.BaseURL)
	if err != nil {
		return fmt.Errorf("matcher.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("matcher.base_url must use http or https, got %q", c.Matcher.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("matcher.base_url must include a host, got %q", c.Matcher.BaseURL)
	}
	if c.Matcher.TimeoutMS <= 0 {
		return errors.New("matcher.timeout_ms must be positive")
	}
	if c.Matcher.RequestsPerSecond < 0 {
		return errors.New("matcher.requests_per_second must be >= 0")
	}
	return nil
}

func (c *Config) validateSearch() error {
	switch c.Search.Trigger {
	case TriggerSubmit, TriggerAuto:
	default:
		return fmt.Errorf("search.trigger must be %q or %q, got %q", TriggerSubmit, TriggerAuto, c.Search.Trigger)
	}
	if c.Search.DebounceMS <= 0 {
		return errors.New("search.debounce_ms must be positive")
	}
	if c.Search.MaxAlternatives < 0 {
		return errors.New("search.max_alternatives must be >= 0")
	}
	return nil
}

func (c *Config) validateUpload() error {
	if c.Upload.MaxFileSize <= 0 {
		return errors.New("upload.max_file_size must be positive")
	}
	if len(c.Upload.AllowedTypes) == 0 {
		return errors.New("upload.allowed_types must list at least one content type")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
