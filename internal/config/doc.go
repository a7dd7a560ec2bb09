// Package config loads, normalizes, and validates voicedecoder configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours VOICEDECODER_* environment overrides for tool paths,
// the model directory, and the service token. Always obtain settings through
// this package so downstream code receives absolute paths and canonical
// values.
package config
