package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("SUPPLIER_DB_DRIVER", "")
	t.Setenv("SUPPLIER_DB_PATH", "")

	cfg := FromEnv()
	assert.Equal(t, DriverSQLite, cfg.Driver)
	assert.Equal(t, "supplier.db", cfg.Path)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SUPPLIER_DB_DRIVER", "mysql")
	t.Setenv("MYSQL_HOST", "db.internal")
	t.Setenv("MYSQL_PORT", "3307")

	cfg := FromEnv()
	assert.Equal(t, DriverMySQL, cfg.Driver)
	assert.Equal(t, "supplier:supplier@tcp(db.internal:3307)/supplier?charset=utf8mb4&parseTime=True&loc=Local", MySQLDSN(cfg))
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "supplier.db", SQLiteDSN("supplier.db", false))
	assert.Equal(t, "file:supplier.db?mode=ro", SQLiteDSN("supplier.db", true))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}

func TestOpenReadOnlyRejectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "supplier.db")

	rw, err := Open(Config{Driver: DriverSQLite, Path: path})
	require.NoError(t, err)
	require.NoError(t, rw.Exec("CREATE TABLE t (id INTEGER)").Error)
	require.NoError(t, Close(rw))

	ro, err := OpenReadOnly(Config{Driver: DriverSQLite, Path: path})
	require.NoError(t, err)
	defer Close(ro)

	var n int64
	require.NoError(t, ro.Raw("SELECT COUNT(*) FROM t").Scan(&n).Error)
	assert.Zero(t, n)
	assert.Error(t, ro.Exec("INSERT INTO t (id) VALUES (1)").Error)
}
