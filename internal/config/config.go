package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = 3000

	// DefaultMongoURI is used when MONGODB_URI is not set.
	DefaultMongoURI = "mongodb://localhost:27017/contact-management"

	// DefaultDatabaseName is used when the connection URI has no database path.
	DefaultDatabaseName = "contact-management"

	// DefaultDatabaseURL is empty; must be provided when the postgres store is selected.
	DefaultDatabaseURL = ""

	// DefaultEnvFile is the env file loaded before flags are resolved.
	DefaultEnvFile = ".env"

	DefaultShutdownTimeout = 10 * time.Second
	DefaultConnectTimeout  = 10 * time.Second
)

// Store selects the ContactRepository implementation.
type Store string

const (
	StoreMongo    Store = "mongo"
	StorePostgres Store = "postgres"
)

// IsValid reports whether the store is a known implementation.
func (s Store) IsValid() bool {
	return s == StoreMongo || s == StorePostgres
}

// Config is the resolved process configuration. It is built once at startup
// and passed by value to every component.
type Config struct {
	Port            int
	MongoURI        string
	MongoURISet     bool // false when MongoURI fell back to DefaultMongoURI
	Store           Store
	DatabaseURL     string
	LogLevel        string
	ShutdownTimeout time.Duration
	ConnectTimeout  time.Duration
}

// Default returns a Config populated with default values.
func Default() Config {
	return Config{
		Port:            DefaultPort,
		MongoURI:        DefaultMongoURI,
		Store:           StoreMongo,
		DatabaseURL:     DefaultDatabaseURL,
		LogLevel:        "info",
		ShutdownTimeout: DefaultShutdownTimeout,
		ConnectTimeout:  DefaultConnectTimeout,
	}
}

// Validate checks that the configuration can be used to start the application.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 0 and 65535", c.Port)
	}
	if !c.Store.IsValid() {
		return fmt.Errorf("invalid store %q: must be %q or %q", c.Store, StoreMongo, StorePostgres)
	}
	switch c.Store {
	case StoreMongo:
		if strings.TrimSpace(c.MongoURI) == "" {
			return errors.New("mongodb uri is empty")
		}
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("database url is required for the postgres store")
		}
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout %s", c.ShutdownTimeout)
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("invalid connect timeout %s", c.ConnectTimeout)
	}
	return nil
}

// Addr returns the listen address for all interfaces, e.g. "0.0.0.0:3000".
func (c Config) Addr() string {
	return "0.0.0.0:" + strconv.Itoa(c.Port)
}

// DatabaseName returns the database named in the MongoDB URI, as the driver
// reads it, or DefaultDatabaseName when the URI names none or does not parse.
func (c Config) DatabaseName() string {
	cs, err := connstring.ParseAndValidate(c.MongoURI)
	if err != nil || cs.Database == "" {
		return DefaultDatabaseName
	}
	return cs.Database
}

// LoadEnvFile merges variables from an env file into the process environment.
// Variables already present in the environment are not overridden.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Debug("env file not found, using process environment", "path", path)
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	slog.Debug("env file loaded", "path", path)
	return nil
}
