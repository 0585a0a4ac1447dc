package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/contacts/internal/config"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "mongodb://localhost:27017/contact-management", cfg.MongoURI)
	assert.Equal(t, config.StoreMongo, cfg.Store)
	assert.Equal(t, "0.0.0.0:3000", cfg.Addr())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"negative port", func(c *config.Config) { c.Port = -1 }, "invalid port"},
		{"port too large", func(c *config.Config) { c.Port = 70000 }, "invalid port"},
		{"ephemeral port", func(c *config.Config) { c.Port = 0 }, ""},
		{"unknown store", func(c *config.Config) { c.Store = "redis" }, "invalid store"},
		{"empty mongo uri", func(c *config.Config) { c.MongoURI = " " }, "mongodb uri is empty"},
		{"postgres without url", func(c *config.Config) { c.Store = config.StorePostgres }, "database url is required"},
		{"postgres with url", func(c *config.Config) {
			c.Store = config.StorePostgres
			c.DatabaseURL = "postgres://localhost/contacts"
		}, ""},
		{"zero shutdown timeout", func(c *config.Config) { c.ShutdownTimeout = 0 }, "invalid shutdown timeout"},
		{"negative connect timeout", func(c *config.Config) { c.ConnectTimeout = -time.Second }, "invalid connect timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseName(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"mongodb://localhost:27017/contact-management", "contact-management"},
		{"mongodb://db:27017/test", "test"},
		{"mongodb://db:27017/test?retryWrites=true", "test"},
		{"mongodb://db:27017", config.DefaultDatabaseName},
		{"mongodb://db:27017/", config.DefaultDatabaseName},
		{"mongodb://user:p%40ss@db:27017/crm?authSource=admin", "crm"},
		{"mongodb://db1:27017,db2:27017/crm?replicaSet=rs0", "crm"},
		{"mongodb://db:27017/sales%2Dcrm", "sales-crm"},
		{"not-a-uri", config.DefaultDatabaseName},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			cfg := config.Default()
			cfg.MongoURI = tt.uri
			assert.Equal(t, tt.want, cfg.DatabaseName())
		})
	}
}

func TestLoadEnvFile_MissingFileIsIgnored(t *testing.T) {
	err := config.LoadEnvFile(filepath.Join(t.TempDir(), "does-not-exist.env"))
	assert.NoError(t, err)
}

func TestLoadEnvFile_ProcessEnvironmentWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "CONTACTS_TEST_FROM_FILE=file\nCONTACTS_TEST_OVERRIDDEN=file\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONTACTS_TEST_OVERRIDDEN", "process")
	// Registered so the variable set by the file is removed after the test.
	t.Setenv("CONTACTS_TEST_FROM_FILE", "")
	require.NoError(t, os.Unsetenv("CONTACTS_TEST_FROM_FILE"))

	require.NoError(t, config.LoadEnvFile(path))

	assert.Equal(t, "file", os.Getenv("CONTACTS_TEST_FROM_FILE"))
	assert.Equal(t, "process", os.Getenv("CONTACTS_TEST_OVERRIDDEN"))
}
