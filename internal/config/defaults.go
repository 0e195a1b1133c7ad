package config

const (
	defaultConfigPath      = "~/.config/entmatch/config.toml"
	projectConfigName      = "entmatch.toml"
	defaultBaseURL         = "http://localhost:8000"
	defaultTimeoutMS       = 30000
	defaultDebounceMS      = 300
	defaultMaxAlternatives = 10
	defaultMaxFileSize     = 10 * 1024 * 1024
	defaultExportFilename  = "fuzzy_match_results.csv"
	defaultExportDir       = "."
	defaultLogFormat       = "console"
	defaultLogLevel        = "warn"

	// TriggerSubmit dispatches a single query only on explicit submission.
	TriggerSubmit = "submit"
	// TriggerAuto dispatches after the debounce interval elapses without input.
	TriggerAuto = "auto"
)

var defaultAllowedTypes = []string{"text/csv", "application/json"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Matcher: Matcher{
			BaseURL:   defaultBaseURL,
			TimeoutMS: defaultTimeoutMS,
		},
		Search: Search{
			Trigger:         TriggerSubmit,
			DebounceMS:      defaultDebounceMS,
			MaxAlternatives: defaultMaxAlternatives,
		},
		Upload: Upload{
			MaxFileSize:  defaultMaxFileSize,
			AllowedTypes: append([]string(nil), defaultAllowedTypes...),
		},
		Export: Export{
			Filename: defaultExportFilename,
			Dir:      defaultExportDir,
		},
		Features: Features{
			HealthCheck: true,
			BatchUpload: true,
			Export:      true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
