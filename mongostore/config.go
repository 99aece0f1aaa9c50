package mongostore

import (
	"errors"
	"time"
)

// Defaults used by the service when nothing is configured.
const (
	DefaultURI            = "mongodb://localhost:27017"
	DefaultDatabase       = "demo"
	DefaultCollection     = "todos"
	DefaultConnectTimeout = 10 * time.Second
)

// Config describes how to reach the todo collection.
type Config struct {
	URI            string        `yaml:"uri" toml:"uri"`
	Database       string        `yaml:"database" toml:"database"`
	Collection     string        `yaml:"collection" toml:"collection"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" toml:"connect_timeout"`
}

// DefaultConfig returns the configuration for a local MongoDB instance.
func DefaultConfig() Config {
	return Config{
		URI:            DefaultURI,
		Database:       DefaultDatabase,
		Collection:     DefaultCollection,
		ConnectTimeout: DefaultConnectTimeout,
	}
}

// withDefaults fills empty names and timeouts.
func (c Config) withDefaults() Config {
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.Collection == "" {
		c.Collection = DefaultCollection
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	return c
}

// Validate reports configuration that cannot work.
func (c Config) Validate() error {
	if c.URI == "" {
		return errors.New("mongostore: uri is required")
	}
	return nil
}
