package main

import (
	"path/filepath"
	"testing"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiodorowphotography/studio/pkg/studio/config"
)

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, cleanenv.ReadEnv(&cfg))

	serverConfig, err := config.Load(cfg.options()...)
	require.NoError(t, err)
	assert.True(t, serverConfig.IsDevelopment())
	assert.Equal(t, config.DatabaseMemory, serverConfig.DatabaseType)
	assert.Equal(t, "memory", serverConfig.DefaultStorageBackend)
	assert.Equal(t, int64(40<<20), serverConfig.MaxUploadBytes)
}

func TestConfigFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DATABASE_URL", "sqlite://"+filepath.Join(dir, "studio.db"))
	t.Setenv("STORAGE_URL", "s3://photos?region=eu-central-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIA")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("OBJECT_KEY_GENERATOR", "flat")

	var cfg Config
	require.NoError(t, cleanenv.ReadEnv(&cfg))

	serverConfig, err := config.Load(cfg.options()...)
	require.NoError(t, err)
	assert.False(t, serverConfig.IsDevelopment())
	assert.Equal(t, config.DatabaseSQLite, serverConfig.DatabaseType)
	assert.Equal(t, "s3", serverConfig.DefaultStorageBackend)
	assert.Equal(t, "flat", serverConfig.ObjectKeyGenerator)

	var s3 config.StorageBackendConfig
	for _, b := range serverConfig.StorageBackends {
		if b.Name == "s3" {
			s3 = b
		}
	}
	assert.Equal(t, "AKIA", s3.Config["access_key_id"])
	assert.Equal(t, "photos", s3.Config["bucket"])
}

func TestNewMailer(t *testing.T) {
	m, err := newMailer(MailConfig{})
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = newMailer(MailConfig{ResendAPIKey: "re_123", To: "studio@example.com"})
	require.NoError(t, err)
	assert.NotNil(t, m)
}
