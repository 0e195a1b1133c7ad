// Package config loads, normalizes, and validates entmatch configuration data.
//
// It supplies repository defaults, reads TOML files, and honours environment
// fallbacks such as ENTMATCH_API_BASE_URL and ENTMATCH_API_TIMEOUT. The Config
// type centralizes every knob the CLI and the match pipeline need: the remote
// matcher endpoint, search triggering and debounce, upload limits, export
// naming, feature toggles, and logging.
//
// Always obtain settings through this package so downstream code receives
// trimmed values, canonical log formats, and clear validation errors.
package config
