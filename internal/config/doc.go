// Package config loads, normalizes, and validates mkvaudur configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes the track
// filter policy, tool binaries, silence fallback format, and history/logging
// knobs so the CLI can resolve everything in one pass before flags are
// layered on top.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
