// Package config provides configuration loading and validation for the
// listener capture service. It handles YAML-based configuration with struct
// validation and environment-variable overrides for deployment secrets.
package config
