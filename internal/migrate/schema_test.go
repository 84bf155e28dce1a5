package migrate

import (
	"path/filepath"
	"testing"

	"clubip-api/internal/config"
	"clubip-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(config.Warehouse{Driver: config.DriverSQLite, DSN: filepath.Join(t.TempDir(), "m.db"), MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	s := openSQLite(t)
	require.NoError(t, EnsureSchema(s.DB(), s.Dialect()))
	require.NoError(t, EnsureSchema(s.DB(), s.Dialect()))

	_, err := s.DB().Exec(`INSERT INTO CLUBIP_SITES (CLUB_CODE, CLUB_NAME, WAN_IP, VOIP, DNS) VALUES ('X1', '  Spaced  ', '198.51.100.7/29', '10.9.0.0/24', '')`)
	require.NoError(t, err)

	var wan string
	require.NoError(t, s.DB().QueryRow(`SELECT WAN_IP_EXTRACTED FROM CLUBIP_SEARCH_V`).Scan(&wan))
	assert.Equal(t, "198.51.100.7", wan)

	var clean string
	require.NoError(t, s.DB().QueryRow(`SELECT CLUB_NAME_CLEAN FROM CLUBIP_FULL_V`).Scan(&clean))
	assert.Equal(t, "Spaced", clean)

	rows, err := s.DB().Query(`SELECT MATCHED_FIELD, IP_TOKEN FROM CLUBIP_IP_INDEX_V ORDER BY MATCHED_FIELD`)
	require.NoError(t, err)
	defer rows.Close()
	got := map[string]string{}
	for rows.Next() {
		var f, tok string
		require.NoError(t, rows.Scan(&f, &tok))
		got[f] = tok
	}
	require.NoError(t, rows.Err())
	// 空字符串与 NULL 列不进入索引
	assert.Equal(t, map[string]string{"VOIP": "10.9.0.0", "WAN_IP": "198.51.100.7"}, got)
}

func TestEnsureSchemaRefusesSnowflake(t *testing.T) {
	s := openSQLite(t)
	err := EnsureSchema(s.DB(), store.NewDialect(config.DriverSnowflake, "CLUBIP", "PUBLIC"))
	assert.Error(t, err)
}

func TestIndexSelectCoversEveryField(t *testing.T) {
	q := indexSelect(store.NewDialect(config.DriverPostgres, "", ""))
	for _, f := range ipFields {
		assert.Contains(t, q, "'"+f+"' AS MATCHED_FIELD")
		assert.Contains(t, q, "split_part("+f+", '/', 1)")
	}
}
