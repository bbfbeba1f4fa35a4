// Package config loads application configuration from environment variables
// (ENROLLSCOPE_* prefix) layered over an optional YAML file, with validated
// defaults suitable for local development.
package config
