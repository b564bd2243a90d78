// Package storetest opens throwaway stores on every backend for tests.
package storetest

import (
	"testing"

	"airledger-backend/internal/infrastructure/database"
	"airledger-backend/internal/infrastructure/store"

	"github.com/stretchr/testify/require"
)

// Backend names accepted by Open.
const (
	SQLite  = "sqlite"
	LevelDB = "leveldb"
)

// Names lists every backend a test should run against.
var Names = []string{SQLite, LevelDB}

// Open returns an empty in-memory store; it is closed when the test ends.
func Open(t testing.TB, name string) *store.Store {
	t.Helper()
	var b store.Backend
	switch name {
	case SQLite:
		db, err := database.OpenSQLite(":memory:")
		require.NoError(t, err)
		require.NoError(t, database.AutoMigrate(db))
		b = store.NewGormBackend(db)
	case LevelDB:
		lb, err := store.OpenLevelDBMemory()
		require.NoError(t, err)
		b = lb
	default:
		t.Fatalf("unknown backend %q", name)
	}
	s := store.New(b)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// Each runs fn once per backend as a subtest.
func Each(t *testing.T, fn func(t *testing.T, s *store.Store)) {
	for _, name := range Names {
		name := name
		t.Run(name, func(t *testing.T) {
			fn(t, Open(t, name))
		})
	}
}
