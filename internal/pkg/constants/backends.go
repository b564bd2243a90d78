package constants

// Store backends accepted by STORE_BACKEND.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreLevelDB  = "leveldb"
)

// ValidStoreBackends is the set of allowed STORE_BACKEND values.
var ValidStoreBackends = []string{StorePostgres, StoreSQLite, StoreLevelDB}

// IsValidStoreBackend returns true if name is one of the allowed backends.
func IsValidStoreBackend(name string) bool {
	for _, b := range ValidStoreBackends {
		if b == name {
			return true
		}
	}
	return false
}

// Environments.
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)
