package rng_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toropanov/capetica/internal/rng"
)

func TestNext_KnownSequence(t *testing.T) {
	// (1*1664525 + 1013904223) mod 2^32
	assert.Equal(t, uint32(1015568748), rng.Next(1))
	// desborda 2^32
	assert.Equal(t, uint32((uint64(4000000000)*1664525+1013904223)%(1<<32)), rng.Next(4000000000))
}

func TestUniform_Deterministic(t *testing.T) {
	v1, s1 := rng.Uniform(42)
	v2, s2 := rng.Uniform(42)
	assert.Equal(t, v1, v2)
	assert.Equal(t, s1, s2)
	assert.Equal(t, rng.Next(42), s1)
	assert.InDelta(t, float64(s1)/4294967296.0, v1, 1e-15)
}

func TestUniform_Range(t *testing.T) {
	seed := uint32(7)
	var v float64
	for i := 0; i < 10000; i++ {
		v, seed = rng.Uniform(seed)
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}

func TestNormal_FiniteAndCentered(t *testing.T) {
	seed := uint32(1337)
	var sum, sumSq float64
	const n = 20000
	for i := 0; i < n; i++ {
		var x float64
		x, seed = rng.Normal(seed, 0, 1)
		require.False(t, math.IsNaN(x) || math.IsInf(x, 0))
		sum += x
		sumSq += x * x
	}
	mean := sum / n
	variance := sumSq/n - mean*mean
	assert.InDelta(t, 0, mean, 0.05)
	assert.InDelta(t, 1, variance, 0.08)
}

func TestNormal_RerollsZeroUniform(t *testing.T) {
	// Next(seed) == 0 cuando seed*1664525 == -1013904223 mod 2^32
	inc := uint32(1013904223)
	target := uint64(-inc) // -inc mod 2^32
	zeroSeed := uint32(target * modInverse(1664525) % (1 << 32))
	require.Equal(t, uint32(0), rng.Next(zeroSeed))

	x, next := rng.Normal(zeroSeed, 0, 1)
	assert.False(t, math.IsInf(x, 0))
	assert.False(t, math.IsNaN(x))
	assert.NotEqual(t, rng.Next(rng.Next(zeroSeed)), next, "el cero no se usa como u")
}

func TestEnsureSeed(t *testing.T) {
	assert.Equal(t, uint32(1), rng.EnsureSeed(0))
	assert.Equal(t, uint32(99), rng.EnsureSeed(99))
}

func TestSeedFromString_Stable(t *testing.T) {
	a := rng.SeedFromString("12345-balanced-0-engineer")
	b := rng.SeedFromString("12345-balanced-0-engineer")
	c := rng.SeedFromString("12345-balanced-1-engineer")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestIndex_Bounds(t *testing.T) {
	assert.Equal(t, 0, rng.Index(0, 4))
	assert.Equal(t, 3, rng.Index(0.9999, 4))
	assert.Equal(t, 3, rng.Index(1, 4))
}

func TestCholesky_Reconstructs(t *testing.T) {
	table := map[string]map[string]float64{
		"a": {"b": 0.6},
		"c": {"a": -0.2, "b": 0.3},
	}
	ids := []string{"a", "b", "c"}
	m := rng.CorrelationMatrix(table, ids)
	assert.Equal(t, 0.6, m[1][0])
	assert.Equal(t, -0.2, m[0][2])

	l := rng.Cholesky(m)
	for i := range m {
		for j := range m {
			var acc float64
			for k := range m {
				acc += l[i][k] * l[j][k]
			}
			assert.InDelta(t, m[i][j], acc, 1e-9)
		}
	}
}

func TestCorrelatedNormals_Identity(t *testing.T) {
	l := rng.Cholesky(rng.CorrelationMatrix(nil, []string{"x", "y"}))
	vals, seed := rng.CorrelatedNormals(l, 5)

	z0, s := rng.Normal(5, 0, 1)
	z1, s := rng.Normal(s, 0, 1)
	assert.InDelta(t, z0, vals[0], 1e-12)
	assert.InDelta(t, z1, vals[1], 1e-12)
	assert.Equal(t, s, seed)
}

func modInverse(a uint64) uint64 {
	// Newton: inverso de un impar mod 2^32
	x := a
	for i := 0; i < 5; i++ {
		x = x * (2 - a*x) % (1 << 32)
	}
	return x % (1 << 32)
}
