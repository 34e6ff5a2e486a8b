// Package config loads struct-tagged configuration from environment
// variables, with optional .env support for local development. Every
// adapter package in this module declares its Config struct with env tags
// and leaves parsing to config.Load.
package config
