package router

import "time"

// Config holds the router settings that usually come from the service
// configuration file.
type Config struct {
	// Timeout bounds every request. Zero disables the timeout middleware.
	Timeout time.Duration `yaml:"timeout" toml:"timeout"`
	// QuietdownRoutes are paths the request logger skips, e.g. probes.
	QuietdownRoutes []string `yaml:"quietdown_routes" toml:"quietdown_routes"`
	// HideHeaders are redacted from request logs.
	HideHeaders []string `yaml:"hide_headers" toml:"hide_headers"`
	CORS        CORSConfig `yaml:"cors" toml:"cors"`
}

// CORSConfig describes the cross origin headers added to every response.
type CORSConfig struct {
	Origins          []string `yaml:"origins" toml:"origins"`
	Methods          []string `yaml:"methods" toml:"methods"`
	Headers          []string `yaml:"headers" toml:"headers"`
	AllowCredentials bool     `yaml:"allow_credentials" toml:"allow_credentials"`
	// MaxAge is the preflight cache lifetime in seconds. Zero omits the header.
	MaxAge int `yaml:"max_age" toml:"max_age"`
}

// DefaultCORSConfig returns the permissive policy the todo API ships with.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		Origins: []string{"*"},
		Methods: []string{"POST", "GET", "OPTIONS", "DELETE", "PATCH"},
		Headers: []string{"x-requested-with", "origin", "content-type", "accept"},
		MaxAge:  3600,
	}
}
