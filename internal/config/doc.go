// Package config defines the application's typed configuration and loads it
// from environment variables or a config file at startup.
package config
