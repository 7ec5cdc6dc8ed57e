package db

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"mediagate/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestMySQLDSN(t *testing.T) {
	cfg := &config.Config{DBUser: "root", DBPassword: "pw", DBHost: "db", DBPort: "3306", DBName: "media"}
	dsn := MySQLDSN(cfg)
	require.Contains(t, dsn, "root:pw@tcp(db:3306)/media")
	require.Contains(t, dsn, "parseTime=true")
	require.Contains(t, dsn, "charset=utf8mb4")
}

func TestOpenSQLiteAndMigrate(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", DBPath: filepath.Join(t.TempDir(), "test.db")}
	gdb, err := Open(cfg)
	require.NoError(t, err)
	defer Close(gdb)

	require.NoError(t, Migrate(gdb))
	for _, table := range []string{"admin_users", "users", "albums", "tracks", "movies"} {
		require.True(t, gdb.Migrator().HasTable(table), table)
	}
	require.True(t, gdb.Migrator().HasIndex("tracks", "idx_album_track_number"))
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "oracle"})
	require.Error(t, err)
}

func TestRedisRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	cfg := &config.Config{RedisHost: host, RedisPort: port}

	client, err := ConnectRedis(context.Background(), cfg)
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, CheckRedis(context.Background(), client))
	require.False(t, mr.Exists("mediagate:healthcheck"))
}
