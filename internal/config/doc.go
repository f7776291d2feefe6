// Package config loads, normalizes, and validates ncmplay configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the NCMPLAY_SEARCH_BASE_URL
// environment fallback. The Config type holds the output directory, search
// service endpoint, resolver timeouts, worker count, and logging settings so
// the CLI can discover everything in one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
