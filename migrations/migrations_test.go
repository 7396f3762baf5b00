package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(FS, ".")
	require.NoError(t, err)
	require.NotEmpty(t, entries, "the schema migrations must ship inside the binary")

	for _, entry := range entries {
		assert.True(t, strings.HasSuffix(entry.Name(), ".sql"), "unexpected file %q", entry.Name())
	}
}

func TestOrdersMigrationKeepsNumberUnique(t *testing.T) {
	content, err := fs.ReadFile(FS, "001_create_service_orders.sql")
	require.NoError(t, err)
	// The creation retry loop relies on the database rejecting a
	// duplicate document number.
	assert.Contains(t, string(content), "UNIQUE INDEX")
}
