// Package config loads, normalizes, and validates mediakeeper configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DOUBAN_API_KEY and TRANSMISSION_URL. When no file exists the CLI writes an
// embedded sample with placeholder values and stops so the operator can fill it
// in.
//
// Validation is split per pipeline: the NFO enricher and the task cleaner need
// disjoint settings, so each command validates only what it uses.
package config
