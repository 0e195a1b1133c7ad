package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables consulted during normalization. A set variable
// overrides the file value.
const (
	EnvAPIBaseURL       = "ENTMATCH_API_BASE_URL"
	EnvAPITimeout       = "ENTMATCH_API_TIMEOUT"
	EnvDebounceMS       = "ENTMATCH_SEARCH_DEBOUNCE_MS"
	EnvMaxAlternatives  = "ENTMATCH_MAX_ALTERNATIVES"
	EnvMaxFileSize      = "ENTMATCH_MAX_FILE_SIZE"
	EnvAllowedFileTypes = "ENTMATCH_ALLOWED_FILE_TYPES"
)

func (c *Config) normalize() error {
	if err := c.normalizeMatcher(); err != nil {
		return err
	}
	if err := c.normalizeSearch(); err != nil {
		return err
	}
	if err := c.normalizeUpload(); err != nil {
		return err
	}
	if err := c.normalizeExport(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeMatcher() error {
	if value, ok := lookupEnv(EnvAPIBaseURL); ok {
		c.Matcher.BaseURL = value
	}
	c.Matcher.BaseURL = strings.TrimRight(strings.TrimSpace(c.Matcher.BaseURL), "/")
	if c.Matcher.BaseURL == "" {
		c.Matcher.BaseURL = defaultBaseURL
	}
	if value, ok := lookupEnv(EnvAPITimeout); ok {
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAPITimeout, err)
		}
		c.Matcher.TimeoutMS = ms
	}
	return nil
}

func (c *Config) normalizeSearch() error {
	c.Search.Trigger = strings.ToLower(strings.TrimSpace(c.Search.Trigger))
	if c.Search.Trigger == "" {
		c.Search.Trigger = TriggerSubmit
	}
	if value, ok := lookupEnv(EnvDebounceMS); ok {
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDebounceMS, err)
		}
		c.Search.DebounceMS = ms
	}
	if value, ok := lookupEnv(EnvMaxAlternatives); ok {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxAlternatives, err)
		}
		c.Search.MaxAlternatives = n
	}
	return nil
}

func (c *Config) normalizeUpload() error {
	if value, ok := lookupEnv(EnvMaxFileSize); ok {
		size, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxFileSize, err)
		}
		c.Upload.MaxFileSize = size
	}
	if value, ok := lookupEnv(EnvAllowedFileTypes); ok {
		c.Upload.AllowedTypes = strings.Split(value, ",")
	}
	types := make([]string, 0, len(c.Upload.AllowedTypes))
	seen := make(map[string]struct{}, len(c.Upload.AllowedTypes))
	for _, t := range c.Upload.AllowedTypes {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		types = append(types, t)
	}
	c.Upload.AllowedTypes = types
	return nil
}

func (c *Config) normalizeExport() error {
	c.Export.Filename = strings.TrimSpace(c.Export.Filename)
	if c.Export.Filename == "" {
		c.Export.Filename = defaultExportFilename
	}
	c.Export.Dir = strings.TrimSpace(c.Export.Dir)
	if c.Export.Dir == "" {
		c.Export.Dir = defaultExportDir
	}
	var err error
	if c.Export.Dir, err = expandPath(c.Export.Dir); err != nil {
		return fmt.Errorf("export.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
	if c.Logging.File != "" {
		if expanded, err := expandPath(c.Logging.File); err == nil {
			c.Logging.File = expanded
		}
	}
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}
