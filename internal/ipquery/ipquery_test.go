package ipquery

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
		n    int
	}{
		{"4.149.254.68", FullIPv4, 4},
		{"  10.0.0.1 ", FullIPv4, 4},
		{"0.0.0.0", FullIPv4, 4},
		{"255.255.255.255", FullIPv4, 4},
		{"4", Prefix, 1},
		{"4.149", Prefix, 2},
		{"4.149.254", Prefix, 3},
		{"", Invalid, 0},
		{"   ", Invalid, 0},
		{"256.1.1.1", Invalid, 0},
		{"4.300", Invalid, 0},
		{"1.2.3.4.5", Invalid, 0},
		{"1.2.3.", Invalid, 0},
		{".1.2", Invalid, 0},
		{"1..2", Invalid, 0},
		{"abc", Invalid, 0},
		{"1.2.3.4/24", Invalid, 0},
		{"1234", Invalid, 0},
		{"1. 2", Invalid, 0},
		{"١.٢.٣.٤", Invalid, 0},
		{"::1", Invalid, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c := Classify(tt.in)
			assert.Equal(t, tt.kind, c.Kind)
			assert.Equal(t, tt.n, c.N())
		})
	}
}

func TestClassifyRandomOctets(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		a, b, c, d := r.Intn(256), r.Intn(256), r.Intn(256), r.Intn(256)
		full := fmt.Sprintf("%d.%d.%d.%d", a, b, c, d)
		require.Equal(t, FullIPv4, Classify(full).Kind, full)
		require.Equal(t, Prefix, Classify(fmt.Sprintf("%d.%d", a, b)).Kind)

		bad := fmt.Sprintf("%d.%d.%d.%d", 256+r.Intn(744), b, c, d)
		require.Equal(t, Invalid, Classify(bad).Kind, bad)
	}
}

func TestBuildExactKeepsLiteral(t *testing.T) {
	p, err := Build(Classify("4.149.254.68"), Options{})
	require.NoError(t, err)
	assert.Equal(t, ModeExact, p.Mode)
	assert.Equal(t, "4.149.254.68", p.Bind)
	assert.False(t, p.Approximate)
}

func TestBuildNarrowing(t *testing.T) {
	c := Classify("4.149.254.68")

	p, err := Build(c, Options{FullIPv4: PolicyPrefix, NarrowOctets: 2})
	require.NoError(t, err)
	assert.Equal(t, ModePrefix, p.Mode)
	assert.Equal(t, "4.149.", p.Bind)
	assert.True(t, p.Approximate)

	p, err = Build(c, Options{FullIPv4: PolicyPrefix, NarrowOctets: 3})
	require.NoError(t, err)
	assert.Equal(t, "4.149.254.", p.Bind)

	p, err = Build(c, Options{FullIPv4: PolicyPrefix})
	require.NoError(t, err)
	assert.Equal(t, "4.149.254.", p.Bind)
}

func TestBuildPrefix(t *testing.T) {
	p, err := Build(Classify("4.14"), Options{})
	require.NoError(t, err)
	assert.Equal(t, ModePrefix, p.Mode)
	assert.Equal(t, "4.14.", p.Bind)

	p, err = Build(Classify("4.149.254"), Options{NarrowOctets: 2})
	require.NoError(t, err)
	assert.Equal(t, "4.149.", p.Bind)

	p, err = Build(Classify("4"), Options{NarrowOctets: 2})
	require.NoError(t, err)
	assert.Equal(t, "4.", p.Bind)
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(Classify("nope"), Options{})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Build(Classify("4.149"), Options{RequireFull: true})
	assert.ErrorIs(t, err, ErrNotFull)

	p, err := Build(Classify("4.149.254.68"), Options{RequireFull: true, FullIPv4: PolicyPrefix})
	require.NoError(t, err)
	assert.Equal(t, ModeExact, p.Mode)
}

func TestPrefixBind(t *testing.T) {
	o := []string{"4", "149", "254", "68"}
	assert.Equal(t, "4.149.", PrefixBind(o, 2))
	assert.Equal(t, "4.149.254.", PrefixBind(o, 3))
	assert.Equal(t, "4.149.254.68.", PrefixBind(o, 9))
	assert.Equal(t, "", PrefixBind(o, 0))
}

func TestSearch(t *testing.T) {
	assert.Equal(t, Plan{Mode: ModeList}, Search("  "))
	assert.Equal(t, Plan{Mode: ModeSearch, Bind: "abc"}, Search(" abc "))
}
