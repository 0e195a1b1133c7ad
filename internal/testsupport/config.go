package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"entmatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose export directory is a unique temp
// directory per test. It applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Export.Dir = filepath.Join(base, "exports")
	cfgVal.Matcher.TimeoutMS = 2000

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMatcherURL points the config at a test server.
func WithMatcherURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Matcher.BaseURL = url
	}
}

// WithTrigger sets the search trigger mode.
func WithTrigger(trigger string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Search.Trigger = trigger
	}
}

// WithFeatures overrides the feature toggles.
func WithFeatures(features config.Features) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Features = features
	}
}

// WithAllowedTypes overrides the upload allow list.
func WithAllowedTypes(types ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Upload.AllowedTypes = types
	}
}

// WriteConfigFile serializes cfg as TOML into the test temp directory and
// returns its path.
func WriteConfigFile(t testing.TB, cfg *config.Config) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "entmatch.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
