// Package file loads application configuration from a TOML file, with
// environment variable overrides for secrets and the scheduled sync
// settings.
package file
