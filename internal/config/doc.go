// Package config handles application configuration loading from environment
// variables and an optional YAML file. Environment variables take precedence
// over file values; both fall back to struct tag defaults.
//
// All variables use the GHG_ prefix, e.g. GHG_SERVER_PORT, GHG_LOGGING_LEVEL,
// GHG_ASSETS_LOGO_PATH. The file path defaults to ./config.yaml and can be
// overridden with GHG_CONFIG_FILE.
package config
