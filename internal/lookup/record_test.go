package lookup

import (
	"encoding/json"
	"testing"

	"clubip-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapRowRenamesAndKeepsOrder(t *testing.T) {
	fields := []Field{
		{Source: "CLUB_NAME", Name: "club_name"},
		{Source: "CLUB_CODE", Name: "club_code"},
		{Source: "AP_COUNT", Name: "ap_count"},
		{Source: "BRAND", Name: "brand"},
	}
	rec := MapRow(fields, store.Row{"CLUB_CODE": "C1", "CLUB_NAME": []byte("Main"), "AP_COUNT": int64(3), "EXTRA": "x"})

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"club_name":"Main","club_code":"C1","ap_count":3,"brand":null}`, string(b))

	v, ok := rec.Get("club_code")
	assert.True(t, ok)
	assert.Equal(t, "C1", v)
	_, ok = rec.Get("EXTRA")
	assert.False(t, ok)
}

func TestMapRowSourceCaseInsensitive(t *testing.T) {
	rec := MapRow([]Field{{Source: "wan_ip_extracted", Name: "wan_ip"}}, store.Row{"WAN_IP_EXTRACTED": "1.2.3.4"})
	assert.Equal(t, Record{{Key: "wan_ip", Value: "1.2.3.4"}}, rec)
}

func TestEmptyRecordMarshal(t *testing.T) {
	b, err := json.Marshal(Record{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(b))
}
