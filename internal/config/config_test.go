package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todolist/internal/apperr"
	"github.com/nhle/todolist/internal/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TODO_STORE_URL", "postgres://u:p@localhost:5432/todos?sslmode=disable")
	t.Setenv("TODO_STORE_KEY", "secret")
}

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.yaml")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Store.Key)
	assert.Equal(t, 15*time.Second, cfg.Store.Timeout)
	assert.Equal(t, config.BackendS3, cfg.Storage.Backend)
	assert.Equal(t, "todo-attachments", cfg.Storage.Bucket)
	assert.Equal(t, "us-east-1", cfg.Storage.Region)
	assert.True(t, cfg.Storage.PathStyle)
	assert.Equal(t, "info", cfg.Log.Level)

	driver, err := cfg.Store.Driver()
	require.NoError(t, err)
	assert.Equal(t, config.DriverPostgres, driver)
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		key     string
		wantMsg string
	}{
		{"no url", "", "secret", "TODO_STORE_URL is required"},
		{"no key", "sqlite://todo.db", "", "TODO_STORE_KEY is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TODO_STORE_URL", tt.url)
			t.Setenv("TODO_STORE_KEY", tt.key)

			_, err := config.Load(missingFile(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoad_SecretsFallback(t *testing.T) {
	t.Setenv("TODO_STORE_URL", "sqlite://todo.db")
	t.Setenv("TODO_STORE_KEY", "")

	var asked []string
	cfg, err := config.Load(missingFile(t), config.WithSecrets(func(key string) (string, error) {
		asked = append(asked, key)
		return "from-keyring", nil
	}))
	require.NoError(t, err)
	assert.Equal(t, "from-keyring", cfg.Store.Key)
	assert.Equal(t, []string{"store.key"}, asked)

	t.Setenv("TODO_STORE_KEY", "from-env")
	cfg, err = config.Load(missingFile(t), config.WithSecrets(func(string) (string, error) {
		t.Fatal("secrets consulted although the environment has the key")
		return "", nil
	}))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Store.Key)

	t.Setenv("TODO_STORE_KEY", "")
	_, err = config.Load(missingFile(t), config.WithSecrets(func(string) (string, error) {
		return "", errors.New("keyring locked")
	}))
	assert.ErrorIs(t, err, apperr.ErrConfiguration)
	assert.Contains(t, err.Error(), "keyring locked")
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("TODO_STORAGE_BACKEND", "local")
	t.Setenv("TODO_STORAGE_DIR", "/tmp/blobs")
	t.Setenv("TODO_STORE_TIMEOUT", "3s")
	t.Setenv("TODO_LOG_LEVEL", "debug")

	cfg, err := config.Load(missingFile(t))
	require.NoError(t, err)
	assert.Equal(t, config.BackendLocal, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/blobs", cfg.Storage.Dir)
	assert.Equal(t, 3*time.Second, cfg.Store.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	setRequired(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  bucket: files\n  endpoint: http://localhost:9000\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "files", cfg.Storage.Bucket)
	assert.Equal(t, "http://localhost:9000", cfg.Storage.Endpoint)
}

func TestValidate_Invalid(t *testing.T) {
	base := config.Config{
		Store:   config.StoreConfig{URL: "sqlite://todo.db", Key: "k", Timeout: time.Second},
		Storage: config.StorageConfig{Backend: config.BackendS3, Bucket: "b"},
		Log:     config.LogConfig{Level: "info"},
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"bad scheme", func(c *config.Config) { c.Store.URL = "mysql://x" }},
		{"bad backend", func(c *config.Config) { c.Storage.Backend = "gcs" }},
		{"bad level", func(c *config.Config) { c.Log.Level = "loud" }},
		{"zero timeout", func(c *config.Config) { c.Store.Timeout = 0 }},
		{"local without dir", func(c *config.Config) {
			c.Storage.Backend = config.BackendLocal
			c.Storage.Dir = ""
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), apperr.ErrConfiguration)
		})
	}
}

func TestStoreConfig_DSN(t *testing.T) {
	tests := []struct {
		url        string
		wantDriver string
		wantDSN    string
	}{
		{"sqlite://todo.db", config.DriverSQLite, "todo.db"},
		{"sqlite:///var/lib/todo.db", config.DriverSQLite, "/var/lib/todo.db"},
		{"file:todo.db?mode=rwc", config.DriverSQLite, "file:todo.db?mode=rwc"},
		{"postgresql://h/db", config.DriverPostgres, "postgresql://h/db"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			s := config.StoreConfig{URL: tt.url}
			driver, err := s.Driver()
			require.NoError(t, err)
			assert.Equal(t, tt.wantDriver, driver)
			assert.Equal(t, tt.wantDSN, s.DSN())
		})
	}
}

func TestStoreConfig_DriverRedactsCredentials(t *testing.T) {
	_, err := config.StoreConfig{URL: "mysql://admin:hunter2@db:3306/x"}.Driver()
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "hunter2")
}
