package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Create a temporary directory for test files
	tempDir := t.TempDir()

	// Create a test config file
	configPath := filepath.Join(tempDir, "test_config.yaml")
	configContent := `
log_level: -4
server:
  port: "9090"
mongo:
  uri: mongodb://localhost:27017
  database: bandstand_test
storage:
  type: gcs
  bucket: bandstand-exports
  object_prefix: pdfs
cache:
  size: 64
  ttl_minutes: 2
notify:
  scope: group
  due_soon_hours: 24
songdb:
  api_url: https://songdata.example/api
  web_url: https://songdata.example
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	// Test loading the config
	cfg, err := Load(configPath)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, -4, cfg.LogLevel)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "bandstand_test", cfg.Mongo.Database)
	assert.Equal(t, "gcs", cfg.Storage.Type)
	assert.Equal(t, "bandstand-exports", cfg.Storage.Bucket)
	assert.Equal(t, "pdfs", cfg.Storage.ObjectPrefix)
	assert.Equal(t, 64, cfg.Cache.Size)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL())
	assert.Equal(t, "group", cfg.Notify.Scope)
	assert.Equal(t, 24*time.Hour, cfg.Notify.DueSoonWindow())
	assert.Equal(t, "https://songdata.example/api", cfg.SongDB.APIURL)
}

func TestLoadDefaults(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "minimal_config.yaml")
	err := os.WriteFile(configPath, []byte("log_level: 0\n"), 0644)
	assert.NoError(t, err)

	cfg, err := Load(configPath)

	assert.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "bandstand", cfg.Mongo.Database)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "output", cfg.Storage.OutputDir)
	assert.Equal(t, 256, cfg.Cache.Size)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL())
	assert.Equal(t, "assignees", cfg.Notify.Scope)
	assert.Equal(t, 48*time.Hour, cfg.Notify.DueSoonWindow())
}

func TestLoadMongoURIFromEnv(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "env_config.yaml")
	configContent := `
mongo:
  uri: mongodb://file-host:27017
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	t.Setenv("MONGO_URI", "mongodb://env-host:27017")

	cfg, err := Load(configPath)

	assert.NoError(t, err)
	assert.Equal(t, "mongodb://env-host:27017", cfg.Mongo.URI)
}

func TestLoadNonExistentFile(t *testing.T) {
	// Test loading a non-existent config file
	cfg, err := Load("non_existent_file.yaml")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadInvalidYAML(t *testing.T) {
	// Create a temporary directory for test files
	tempDir := t.TempDir()

	// Create an invalid YAML file
	configPath := filepath.Join(tempDir, "invalid_config.yaml")
	configContent := `
log_level: -4
server:
  port: "8080"
invalid_yaml: [this is not valid yaml
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	// Test loading the invalid config
	cfg, err := Load(configPath)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, cfg)
}
