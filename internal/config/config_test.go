package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsAndSecrets(t *testing.T) {
	t.Setenv("CLINIC_JWT_SECRET", "s3cret")
	t.Setenv("CLINIC_DB_PASSWORD", "pg-pass")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry())
	assert.Equal(t, "pg-pass", cfg.Database.Password)
	assert.Equal(t, 90*24*time.Hour, cfg.Audit.Retention())
	assert.Empty(t, cfg.Redis.URL)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	body := []byte("server:\n  port: 9090\njwt:\n  secret: from-file\n  expiry_hours: 2\naudit:\n  retention_days: 7\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), body, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiry())
	assert.Equal(t, 7, cfg.Audit.RetentionDays)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("CLINIC_JWT_SECRET", "")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig(t.TempDir())
	assert.EqualError(t, err, "jwt secret is required")
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "clinic", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=clinic sslmode=disable", c.DSN())
}
