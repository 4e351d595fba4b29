package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.Blob.Driver)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
  read_timeout: 2s
database:
  driver: postgres
  dsn: postgres://file
auth:
  moderator_ids: [mod-1]
`), 0o600))

	t.Setenv("DB_DSN", "postgres://env")
	t.Setenv("MODERATOR_IDS", "mod-2, mod-3")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://env", cfg.Database.DSN)
	assert.Equal(t, []string{"mod-2", "mod-3"}, cfg.Auth.ModeratorIDs)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate_S3NeedsBucket(t *testing.T) {
	cfg := Default()
	cfg.Blob.Driver = "s3"
	assert.Error(t, cfg.Validate())

	cfg.Blob.S3Bucket = "fotos"
	assert.NoError(t, cfg.Validate())
}
