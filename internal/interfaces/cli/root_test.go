package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func useLevelDB(t *testing.T) {
	t.Helper()
	t.Setenv("STORE_BACKEND", "leveldb")
	t.Setenv("LEVELDB_PATH", t.TempDir())
	t.Setenv("REDIS_URL", "")
	t.Setenv("TREASURY_IDENTITY", "")
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "airledger", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"serve", "migrate", "init-registry", "fund"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestServeFlags(t *testing.T) {
	cmd := NewRootCommand()
	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	port := serve.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "p", port.Shorthand)
}

func TestInvalidStoreFlag(t *testing.T) {
	_, err := run(t, "--store", "mongo", "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid store")
}

func TestMigrateLevelDB(t *testing.T) {
	useLevelDB(t)
	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "needs no migration")
}

func TestMigrateSQLite(t *testing.T) {
	useLevelDB(t)
	t.Setenv("SQLITE_PATH", t.TempDir()+"/ledger.db")
	out, err := run(t, "--store", "sqlite", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrated sqlite store")
}

func TestInitRegistryAndFund(t *testing.T) {
	useLevelDB(t)

	out, err := run(t, "init-registry", "--authority", "auth1")
	require.NoError(t, err)
	var reg map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &reg))
	assert.Equal(t, "auth1", reg["authority"])

	_, err = run(t, "init-registry", "--authority", "auth1")
	require.Error(t, err)

	out, err = run(t, "fund", "--authority", "auth1", "--owner", "buyer", "--amount", "500")
	require.NoError(t, err)
	var acct map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &acct))
	assert.Equal(t, float64(500), acct["balance"])

	_, err = run(t, "fund", "--authority", "intruder", "--owner", "buyer", "--amount", "5")
	require.Error(t, err)
}

func TestFundRequiresFlags(t *testing.T) {
	useLevelDB(t)
	_, err := run(t, "fund", "--authority", "auth1")
	require.Error(t, err)
}
