package lookup

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"clubip-api/internal/geo"
	"clubip-api/internal/ipquery"
	"clubip-api/internal/store"
	"clubip-api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuerier struct {
	calls int
	rows  []store.Row
	err   error
}

func (f *fakeQuerier) Query(ctx context.Context, sqlText string, binds ...any) ([]store.Row, error) {
	f.calls++
	return f.rows, f.err
}

func (f *fakeQuerier) Dialect() store.Dialect { return store.NewDialect("snowflake", "CLUBIP", "PUBLIC") }

type fakeGeo struct{}

func (fakeGeo) Lookup(ip string) *geo.Info { return &geo.Info{Country: "US", Network: "4.144.0.0/12"} }

func newSQLiteService(t *testing.T, defs []*Definition, opts ...Option) (*Service, *store.Store) {
	t.Helper()
	st := testutil.OpenStore(t)
	if defs == nil {
		defs = Builtin()
	}
	svc, err := NewService(st, defs, opts...)
	require.NoError(t, err)
	return svc, st
}

func field(t *testing.T, r Record, key string) any {
	t.Helper()
	v, ok := r.Get(key)
	require.True(t, ok, "missing field %s", key)
	return v
}

func codes(t *testing.T, res *Result) []any {
	out := make([]any, 0, len(res.Records))
	for _, r := range res.Records {
		out = append(out, field(t, r, "club_code"))
	}
	return out
}

func TestInvalidInputNeverQueries(t *testing.T) {
	fq := &fakeQuerier{}
	svc, err := NewService(fq, Builtin())
	require.NoError(t, err)

	for _, name := range []string{"azurelookup", "lookup", "site"} {
		for _, in := range []string{"", "  ", "abc", "256.1.1.1", "1.2.3.4.5", "4.149."} {
			_, err := svc.Run(context.Background(), name, in)
			var ie *InputError
			require.ErrorAs(t, err, &ie, "%s(%q)", name, in)
			assert.NotEmpty(t, ie.Message)
		}
	}
	_, err = svc.Run(context.Background(), "site", "4.149.254")
	var ie *InputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "Provide a full IPv4 address (x.x.x.x) for site lookup.", ie.Message)
	assert.ErrorIs(t, err, ipquery.ErrNotFull)

	_, err = svc.Run(context.Background(), "lookup", "")
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "Missing required query param: ip", ie.Message)

	assert.Zero(t, fq.calls)
}

func TestBackendErrorIsWrapped(t *testing.T) {
	fq := &fakeQuerier{err: fmt.Errorf("%w: dial tcp: refused", store.ErrConnect)}
	svc, err := NewService(fq, Builtin())
	require.NoError(t, err)

	_, err = svc.Run(context.Background(), "lookup", "4.149.254.68")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrConnect)
	var ie *InputError
	assert.False(t, errors.As(err, &ie))
	assert.Equal(t, 1, fq.calls)
}

func TestUnknownLookup(t *testing.T) {
	svc, err := NewService(&fakeQuerier{}, Builtin())
	require.NoError(t, err)
	_, err = svc.Run(context.Background(), "nope", "1.2.3.4")
	assert.ErrorIs(t, err, ErrUnknownLookup)
}

func TestResultCapEnforcedOnRows(t *testing.T) {
	rows := make([]store.Row, 40)
	for i := range rows {
		rows[i] = store.Row{"CLUB_CODE": fmt.Sprint(i)}
	}
	svc, err := NewService(&fakeQuerier{rows: rows}, Builtin())
	require.NoError(t, err)
	res, err := svc.Run(context.Background(), "lookup", "10")
	require.NoError(t, err)
	assert.Len(t, res.Records, 25)
}

func TestAzureExactBaseIP(t *testing.T) {
	svc, _ := newSQLiteService(t, nil)
	res, err := svc.Run(context.Background(), "azurelookup", " 4.149.254.68 ")
	require.NoError(t, err)
	assert.Equal(t, "4.149.254.68", res.Query)
	assert.Equal(t, "exact-base-ip", res.Mode)
	assert.False(t, res.Approximate)
	assert.Contains(t, res.Note, "strict base-IP")
	require.Len(t, res.Records, 1)
	assert.Equal(t, "AzureCloud.eastus", field(t, res.Records[0], "name"))
	assert.Equal(t, "4.149.254.68/30", field(t, res.Records[0], "prefix"))
}

func TestAzurePrefixDoesNotOvermatch(t *testing.T) {
	svc, _ := newSQLiteService(t, nil)
	res, err := svc.Run(context.Background(), "azurelookup", "4.14")
	require.NoError(t, err)
	assert.Equal(t, "prefix", res.Mode)
	assert.True(t, res.Approximate)
	assert.NotEmpty(t, res.Note)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "4.14.2.0/24", field(t, res.Records[0], "prefix"))

	res, err = svc.Run(context.Background(), "azurelookup", "4.149")
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "AzureCloud", field(t, res.Records[0], "system_service"))
	assert.Equal(t, "AzureStorage", field(t, res.Records[1], "system_service"))
}

func TestClubLookupExactAndPrefix(t *testing.T) {
	svc, _ := newSQLiteService(t, nil)
	res, err := svc.Run(context.Background(), "lookup", "203.0.113.10")
	require.NoError(t, err)
	assert.Equal(t, "exact", res.Mode)
	assert.Equal(t, []any{"C001"}, codes(t, res))
	assert.Equal(t, "203.0.113.10", field(t, res.Records[0], "wan_ip"))

	res, err = svc.Run(context.Background(), "lookup", "203.0.113")
	require.NoError(t, err)
	assert.Equal(t, "prefix", res.Mode)
	assert.Equal(t, []any{"C001", "C002"}, codes(t, res))

	res, err = svc.Run(context.Background(), "lookup", "198.51.100.7")
	require.NoError(t, err)
	assert.Equal(t, []any{"C003"}, codes(t, res), "mask is stripped from the WAN address")

	res, err = svc.Run(context.Background(), "lookup", "8.8.8.8")
	require.NoError(t, err)
	assert.NotNil(t, res.Records)
	assert.Empty(t, res.Records)
}

func TestLoosenedFullIPv4Policy(t *testing.T) {
	defs := Builtin()
	for _, d := range defs {
		if d.Name == "lookup" {
			d.FullIPv4 = ipquery.PolicyPrefix
			d.NarrowOctets = 3
		}
	}
	svc, _ := newSQLiteService(t, defs)
	res, err := svc.Run(context.Background(), "lookup", "203.0.113.99")
	require.NoError(t, err)
	assert.Equal(t, "prefix", res.Mode)
	assert.True(t, res.Approximate)
	assert.Equal(t, []any{"C001", "C002"}, codes(t, res))
}

func TestSiteFullRecord(t *testing.T) {
	svc, _ := newSQLiteService(t, nil)
	res, err := svc.Run(context.Background(), "site", "203.0.113.10")
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	gw, wan := res.Records[0], res.Records[1]
	assert.Equal(t, "GATEWAY_IP", field(t, gw, "matched_field"))
	assert.Equal(t, "C002", field(t, gw, "club_code"))
	assert.Equal(t, "WAN_IP", field(t, wan, "matched_field"))
	assert.Equal(t, "C001", field(t, wan, "club_code"))
	assert.Equal(t, "Downtown", field(t, wan, "club_name"))
	assert.EqualValues(t, 6, field(t, wan, "ap_count"))
	assert.Equal(t, "1 Main St", field(t, wan, "address"))
	assert.Nil(t, field(t, wan, "dvr"))
	assert.Len(t, wan, 25)

	res, err = svc.Run(context.Background(), "site", "10.1.5.0")
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "VOIP", field(t, res.Records[0], "matched_field"))
}

func TestSitesListingAndSearch(t *testing.T) {
	svc, _ := newSQLiteService(t, nil)
	res, err := svc.Run(context.Background(), "sites", "")
	require.NoError(t, err)
	assert.Equal(t, "list", res.Mode)
	assert.Equal(t, []any{"C001", "C002", "C003", nil}, codes(t, res))

	res, err = svc.Run(context.Background(), "sites", "HARBOR")
	require.NoError(t, err)
	assert.Equal(t, []any{"C003"}, codes(t, res))

	res, err = svc.Run(context.Background(), "sites", "203.0.113")
	require.NoError(t, err)
	assert.Equal(t, []any{"C001", "C002"}, codes(t, res))

	res, err = svc.Run(context.Background(), "sites", "c00")
	require.NoError(t, err)
	assert.Len(t, res.Records, 3)

	res, err = svc.Run(context.Background(), "sites", "%")
	require.NoError(t, err)
	assert.Empty(t, res.Records, "wildcards in q are matched literally")
}

func TestCapsWithManyRows(t *testing.T) {
	svc, st := newSQLiteService(t, nil)
	testutil.InsertSites(t, st, testutil.BulkSites(600)...)

	res, err := svc.Run(context.Background(), "sites", "")
	require.NoError(t, err)
	assert.Len(t, res.Records, 500)

	res, err = svc.Run(context.Background(), "lookup", "10.200")
	require.NoError(t, err)
	assert.Len(t, res.Records, 25)
}

func TestGeoOnlyForFullAddresses(t *testing.T) {
	svc, _ := newSQLiteService(t, nil, WithGeo(fakeGeo{}))
	res, err := svc.Run(context.Background(), "lookup", "203.0.113.10")
	require.NoError(t, err)
	require.NotNil(t, res.Geo)
	assert.Equal(t, "US", res.Geo.Country)

	res, err = svc.Run(context.Background(), "lookup", "203.0")
	require.NoError(t, err)
	assert.Nil(t, res.Geo)
}

func TestNewServiceRejectsDuplicates(t *testing.T) {
	defs := append(Builtin(), Builtin()[1])
	_, err := NewService(&fakeQuerier{}, defs)
	assert.Error(t, err)

	bad := Builtin()
	bad[0].Limit = 0
	_, err = NewService(&fakeQuerier{}, bad)
	assert.ErrorContains(t, err, "limit must be positive")
}
