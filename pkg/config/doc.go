// Package config loads blockreg configuration from embedded defaults, an
// optional TOML file and BLOCKREG_* environment variables, in that order.
package config
