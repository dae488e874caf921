// Package config loads, normalizes, and validates dicomscrub configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI needs: CSV dialect and date-coarsening policy, the external
// engine binary and timeout, allowed modalities, and log output settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical granularity values, and clear validation
// errors.
package config
