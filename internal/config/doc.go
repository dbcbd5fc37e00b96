// Package config loads, normalizes, and validates stockscan configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// STOCKSCAN_API_TOKEN. The Config type centralizes every knob the scanning
// session and CLI need, so the API endpoint, the offline queue location and
// connectivity probing are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
