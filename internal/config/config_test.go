package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendLocal, cfg.Storage.Backend)
	assert.Equal(t, SplitByLayout, cfg.Scan.SplitMode)
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := Default()
	cfg.Storage.Backend = "ftp"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroRowCountSplit(t *testing.T) {
	cfg := Default()
	cfg.Scan.SplitMode = SplitByRowCount
	cfg.Scan.SplitRowCount = 0
	assert.Error(t, cfg.Validate())
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vortex.yaml")

	cfg := Default()
	cfg.Storage.Backend = BackendS3
	cfg.Storage.S3.Bucket = "my-bucket"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendS3, loaded.Storage.Backend)
	assert.Equal(t, "my-bucket", loaded.Storage.S3.Bucket)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("VORTEX_STORAGE_BACKEND", "gcs")
	t.Setenv("VORTEX_GCS_BUCKET", "env-bucket")

	cfg := Default()
	cfg.LoadFromEnv()
	assert.Equal(t, BackendGCS, cfg.Storage.Backend)
	assert.Equal(t, "env-bucket", cfg.Storage.GCS.Bucket)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Storage.Backend, cfg.Storage.Backend)
}
