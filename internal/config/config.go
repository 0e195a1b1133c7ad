package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Matcher contains the remote matching service connection settings.
type Matcher struct {
	BaseURL           string  `toml:"base_url"`
	TimeoutMS         int     `toml:"timeout_ms"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Search contains single-query dispatch settings.
type Search struct {
	// Trigger is "submit" (explicit submission) or "auto" (debounced keystrokes).
	Trigger         string `toml:"trigger"`
	DebounceMS      int    `toml:"debounce_ms"`
	MaxAlternatives int    `toml:"max_alternatives"`
}

// Upload contains batch file admission limits.
type Upload struct {
	MaxFileSize  int64    `toml:"max_file_size"`
	AllowedTypes []string `toml:"allowed_types"`
}

// Export contains result export naming.
type Export struct {
	Filename string `toml:"filename"`
	Dir      string `toml:"dir"`
}

// Features toggles optional surfaces of the CLI.
type Features struct {
	HealthCheck bool `toml:"health_check"`
	BatchUpload bool `toml:"batch_upload"`
	Export      bool `toml:"export"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for entmatch.
//
// Configuration sections:
//   - Matcher: remote service base URL, timeout, and optional pacing
//   - Search: trigger mode, debounce interval, alternatives cap
//   - Upload: batch file size and content type limits
//   - Export: default export filename and directory
//   - Features: health check, batch upload, and export toggles
//   - Logging: log format, level, and optional file sink
type Config struct {
	Matcher  Matcher  `toml:"matcher"`
	Search   Search   `toml:"search"`
	Upload   Upload   `toml:"upload"`
	Export   Export   `toml:"export"`
	Features Features `toml:"features"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. A missing file is
// not an error: defaults and environment fallbacks apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// Timeout returns the matcher request deadline.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Matcher.TimeoutMS) * time.Millisecond
}

// Debounce returns the quiet interval used by the auto search trigger.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Search.DebounceMS) * time.Millisecond
}

// ExportPath joins the export directory with the given filename, falling back
// to the configured default filename when name is blank.
func (c *Config) ExportPath(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = c.Export.Filename
	}
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	return filepath.Join(c.Export.Dir, name)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration text.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
