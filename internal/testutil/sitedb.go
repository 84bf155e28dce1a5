// Package testutil provides a seeded SQLite warehouse for package tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"clubip-api/internal/config"
	"clubip-api/internal/migrate"
	"clubip-api/internal/store"

	"github.com/stretchr/testify/require"
)

// AzureRows are seeded into AZURE_SERVICE_TAGS_PREFIXES.
var AzureRows = [][]any{
	{"AzureCloud.eastus", "AzureCloud", "eastus", "Azure", "4.149.254.68/30", 4},
	{"Storage.westus", "AzureStorage", "westus", "Azure", "4.149.0.0/16", 4},
	{"FrontDoor.Backend", "AzureFrontDoor", "", "Azure", "4.140.0.0/14", 4},
	{"AzureCloud.centralus", "AzureCloud", "centralus", "Azure", "4.14.2.0/24", 4},
	{"AzureCloud.v6", "AzureCloud", "eastus", "Azure", "2603:1030::/32", 6},
}

// Site is one CLUBIP_SITES row; nil fields are stored as NULL.
type Site struct {
	Code, Name, WAN, Gateway, LAN, VOIP, Address, Brand any
	APCount                                             any
}

// Sites are the default seeded clubs.
var Sites = []Site{
	{Code: "C001", Name: "Downtown ", WAN: "203.0.113.10", Gateway: "203.0.113.1", LAN: "10.1.0.0/24", VOIP: "10.1.5.0/24", Address: "1 Main St", Brand: "Prime", APCount: 6},
	{Code: "C002", Name: "Uptown", WAN: "203.0.113.25", Gateway: "203.0.113.10", Address: "9 Hill Rd", Brand: "Prime", APCount: 2},
	{Code: "C003", Name: "Harbor Club", WAN: "198.51.100.7/29", Address: "5 Dock Ave", Brand: "Blue"},
	{Code: nil, Name: "Unassigned", WAN: "192.0.2.1"},
}

// OpenStore creates a file-backed SQLite store with the local schema and seed data.
func OpenStore(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.Open(config.Warehouse{
		Driver:       config.DriverSQLite,
		DSN:          filepath.Join(t.TempDir(), "clubip.db"),
		MaxOpenConns: 4,
		MaxIdleConns: 2,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, migrate.EnsureSchema(s.DB(), s.Dialect()))

	for _, r := range AzureRows {
		_, err := s.DB().Exec(`INSERT INTO AZURE_SERVICE_TAGS_PREFIXES (NAME, SYSTEM_SERVICE, REGION, PLATFORM, PREFIX, IP_VERSION) VALUES (?, ?, ?, ?, ?, ?)`, r...)
		require.NoError(t, err)
	}
	InsertSites(t, s, Sites...)
	return s
}

// InsertSites adds club rows.
func InsertSites(t testing.TB, s *store.Store, sites ...Site) {
	t.Helper()
	for _, x := range sites {
		_, err := s.DB().Exec(`INSERT INTO CLUBIP_SITES (CLUB_CODE, CLUB_NAME, CLUB_DISPLAY, WAN_IP, GATEWAY_IP, INTERNAL_LAN, VOIP, ADDRESS, BRAND, AP_COUNT)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			x.Code, x.Name, x.Name, x.WAN, x.Gateway, x.LAN, x.VOIP, x.Address, x.Brand, x.APCount)
		require.NoError(t, err)
	}
}

// BulkSites returns n clubs B0000.. sharing the 10.200.0.0/16 WAN range.
func BulkSites(n int) []Site {
	out := make([]Site, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Site{
			Code: fmt.Sprintf("B%04d", i),
			Name: fmt.Sprintf("Bulk %d", i),
			WAN:  fmt.Sprintf("10.200.%d.%d", i/250, i%250+1),
		})
	}
	return out
}
