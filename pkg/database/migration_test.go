package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"0001_create_supply_chain_tables.up.sql",
		"0001_create_supply_chain_tables.down.sql",
		"0002_create_risk_events.up.sql",
		"0002_create_risk_events.down.sql",
		"README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600))
	}

	latest, err := latestVersion(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, latest)
}

func TestLatestVersionNoMigrations(t *testing.T) {
	_, err := latestVersion(t.TempDir())
	assert.Error(t, err)
}

func TestResolveMigrationFolder(t *testing.T) {
	silent := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	dir := t.TempDir()

	ms := NewMigrationService(silent, &MigrationConfig{MigrationFolderPath: dir})
	assert.Equal(t, dir, ms.resolveMigrationFolder())
}
