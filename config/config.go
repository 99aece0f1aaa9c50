// Package config assembles the service configuration from defaults, an
// optional YAML or TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/drblury/todoweaver/mongostore"
	"github.com/drblury/todoweaver/router"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

// Defaults for the HTTP server.
const (
	DefaultHost            = "localhost"
	DefaultPort            = 8080
	DefaultTimeout         = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Config is the complete service configuration.
type Config struct {
	Server  Server            `yaml:"server" toml:"server"`
	Store   Store             `yaml:"store" toml:"store"`
	CORS    router.CORSConfig `yaml:"cors" toml:"cors"`
	Logging Logging           `yaml:"logging" toml:"logging"`
	OpenAPI OpenAPI           `yaml:"openapi" toml:"openapi"`
}

// Server configures the HTTP listener and the request middleware.
type Server struct {
	Host            string        `yaml:"host" toml:"host"`
	Port            int           `yaml:"port" toml:"port"`
	Timeout         time.Duration `yaml:"timeout" toml:"timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	QuietdownRoutes []string      `yaml:"quietdown_routes" toml:"quietdown_routes"`
	HideHeaders     []string      `yaml:"hide_headers" toml:"hide_headers"`
}

// Addr returns the host:port pair to listen on.
func (s Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Store selects and configures the persistence backend.
type Store struct {
	Backend string            `yaml:"backend" toml:"backend"`
	Mongo   mongostore.Config `yaml:"mongo" toml:"mongo"`
}

// Logging configures the root slog logger.
type Logging struct {
	// Level is one of debug, info, warn or error.
	Level string `yaml:"level" toml:"level"`
	// Format is text or json.
	Format string `yaml:"format" toml:"format"`
}

// OpenAPI toggles request validation against the embedded document.
type OpenAPI struct {
	Validate bool `yaml:"validate" toml:"validate"`
}

// Default returns the configuration used when nothing else is supplied: an
// in-memory store on localhost:8080 with the permissive CORS policy.
func Default() Config {
	return Config{
		Server: Server{
			Host:            DefaultHost,
			Port:            DefaultPort,
			Timeout:         DefaultTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Store: Store{
			Backend: BackendMemory,
			Mongo:   mongostore.DefaultConfig(),
		},
		CORS: router.DefaultCORSConfig(),
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
		OpenAPI: OpenAPI{Validate: true},
	}
}

// Router returns the router settings derived from the configuration.
func (c Config) Router() router.Config {
	return router.Config{
		Timeout:         c.Server.Timeout,
		QuietdownRoutes: c.Server.QuietdownRoutes,
		HideHeaders:     c.Server.HideHeaders,
		CORS:            c.CORS,
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.Timeout < 0 {
		errs = append(errs, errors.New("server.timeout must not be negative"))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must not be negative"))
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendMongo:
		if err := c.Store.Mongo.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("store.mongo: %w", err))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend %q is not one of %s, %s", c.Store.Backend, BackendMemory, BackendMongo))
	}

	if _, err := parseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not text or json", c.Logging.Format))
	}

	return errors.Join(errs...)
}
