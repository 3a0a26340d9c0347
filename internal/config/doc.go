// Package config loads, normalizes, and validates mangashelf configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the MANGASHELF_LIBRARY_DIR
// environment fallback. The Config type centralizes the scan, tagging,
// integrity, organize, ledger, and logging knobs so commands resolve every
// setting in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical tag format names, and clear validation errors.
package config
