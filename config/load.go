package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvHost            = "TODOWEAVER_HOST"
	EnvPort            = "TODOWEAVER_PORT"
	EnvBackend         = "TODOWEAVER_BACKEND"
	EnvMongoURI        = "TODOWEAVER_MONGO_URI"
	EnvMongoDatabase   = "TODOWEAVER_MONGO_DATABASE"
	EnvMongoCollection = "TODOWEAVER_MONGO_COLLECTION"
	EnvLogLevel        = "TODOWEAVER_LOG_LEVEL"
	EnvLogFormat       = "TODOWEAVER_LOG_FORMAT"

	// Platform variables honoured for deployments that predate the
	// TODOWEAVER_ names.
	EnvOpenShiftMongoURL = "OPENSHIFT_MONGODB_DB_URL"
	EnvOpenShiftAppName  = "OPENSHIFT_APP_NAME"
	EnvOpenShiftIP       = "OPENSHIFT_VERTX_IP"
	EnvOpenShiftPort     = "OPENSHIFT_VERTX_PORT"
)

// Load builds the configuration in priority order:
//  1. Defaults
//  2. The file at path, if path is not empty (.yaml, .yml or .toml)
//  3. TODOWEAVER_* environment variables
//  4. OPENSHIFT_* platform variables
//
// Command line flags are applied by the caller on the returned value, which
// must then be validated again.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(&cfg, path); err != nil {
			return Config{}, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := loadFromEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	if err := loadFromPlatformEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, fmt.Errorf("reading platform environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("unknown keys %v", undecoded)
		}
		return nil
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
}

type lookupFunc func(key string) (string, bool)

func loadFromEnv(cfg *Config, lookup lookupFunc) error {
	if v, ok := lookup(EnvHost); ok && v != "" {
		cfg.Server.Host = v
	}
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		cfg.Server.Port = port
	}
	if v, ok := lookup(EnvBackend); ok && v != "" {
		cfg.Store.Backend = strings.ToLower(v)
	}
	if v, ok := lookup(EnvMongoURI); ok && v != "" {
		cfg.Store.Mongo.URI = v
	}
	if v, ok := lookup(EnvMongoDatabase); ok && v != "" {
		cfg.Store.Mongo.Database = v
	}
	if v, ok := lookup(EnvMongoCollection); ok && v != "" {
		cfg.Store.Mongo.Collection = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Logging.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		cfg.Logging.Format = v
	}
	return nil
}

// loadFromPlatformEnv applies the OpenShift cartridge variables. A MongoDB
// URL switches the backend to mongo and names the database after the app.
func loadFromPlatformEnv(cfg *Config, lookup lookupFunc) error {
	if uri, ok := lookup(EnvOpenShiftMongoURL); ok && uri != "" {
		cfg.Store.Backend = BackendMongo
		cfg.Store.Mongo.URI = uri
		if app, ok := lookup(EnvOpenShiftAppName); ok && app != "" {
			cfg.Store.Mongo.Database = app
		}
	}
	if ip, ok := lookup(EnvOpenShiftIP); ok && ip != "" {
		cfg.Server.Host = ip
		if v, ok := lookup(EnvOpenShiftPort); ok && v != "" {
			port, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", EnvOpenShiftPort, err)
			}
			cfg.Server.Port = port
		}
	}
	return nil
}
