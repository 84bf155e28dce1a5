package geo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDisabled(t *testing.T) {
	e, err := Open("", "")
	require.NoError(t, err)
	assert.Nil(t, e)
	assert.Nil(t, e.Lookup("4.149.254.68"))
	assert.NoError(t, e.Close())
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.mmdb"), "")
	assert.Error(t, err)
}

func TestOpenCorruptASN(t *testing.T) {
	p := filepath.Join(t.TempDir(), "asn.mmdb")
	require.NoError(t, os.WriteFile(p, []byte("not a maxmind database"), 0o644))
	_, err := Open("", p)
	assert.Error(t, err)
}

func TestLookupRejectsNonIPv4(t *testing.T) {
	e := &Enricher{}
	assert.Nil(t, e.Lookup("::1"))
	assert.Nil(t, e.Lookup("4.149"))
	assert.Nil(t, e.Lookup("4.149.254.68"))
}
