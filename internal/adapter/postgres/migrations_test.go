package postgres

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// UpdateRange upserts with ON CONFLICT (collection, position), which
// Postgres rejects when the arbiter constraint is deferrable.
func TestMigrations_LedgerRowsKeyCanArbitrateUpserts(t *testing.T) {
	sql, err := fs.ReadFile(migrationFiles, "migrations/001_create_ledger_rows.sql")
	require.NoError(t, err)

	create, _, _ := strings.Cut(string(sql), "---- create above / drop below ----")
	assert.Contains(t, create, "PRIMARY KEY (collection, position)")
	assert.NotContains(t, strings.ToUpper(create), "DEFERRABLE")
}
