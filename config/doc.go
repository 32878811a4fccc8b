// Package config handles application configuration loading and validation.
//
// Configuration is layered: defaults, then an optional config.yml, then a .env
// file, then the process environment. The result is validated using struct tags.
package config
