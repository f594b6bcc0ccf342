//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.

package corr

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rss3p/mpcsql/p2p"
)

// threeSources builds the three parties' correlated-randomness
// sources from a single set of pairwise keys, modelling party i
// holding (k_i, k_{i-1}) per spec.md §4.B.
func threeSources(t *testing.T, k0, k1, k2 Key) [3]*Source {
	t.Helper()
	s0, err := NewSource(k0, k2)
	require.NoError(t, err)
	s1, err := NewSource(k1, k0)
	require.NoError(t, err)
	s2, err := NewSource(k2, k1)
	require.NoError(t, err)
	return [3]*Source{s0, s1, s2}
}

func randomKey(t *testing.T) Key {
	t.Helper()
	var k Key
	_, err := rand.Read(k[:])
	require.NoError(t, err)
	return k
}

func TestDrawSumsToZero(t *testing.T) {
	k0, k1, k2 := randomKey(t), randomKey(t), randomKey(t)
	sources := threeSources(t, k0, k1, k2)

	for i := 0; i < 256; i++ {
		a0, err := sources[0].Draw()
		require.NoError(t, err)
		a1, err := sources[1].Draw()
		require.NoError(t, err)
		a2, err := sources[2].Draw()
		require.NoError(t, err)

		assert.Falsef(t, a0 != a1 != a2,
			"draw %d: alpha0 xor alpha1 xor alpha2 must be 0", i)
	}
}

func TestDrawIsDeterministicGivenSameKeys(t *testing.T) {
	k0, k1 := randomKey(t), randomKey(t)
	s1, err := NewSource(k0, k1)
	require.NoError(t, err)
	s2, err := NewSource(k0, k1)
	require.NoError(t, err)

	for i := 0; i < 32; i++ {
		b1, err := s1.Draw()
		require.NoError(t, err)
		b2, err := s2.Draw()
		require.NoError(t, err)
		assert.Equal(t, b1, b2)
	}
}

func TestEstablishSourceAgreesAcrossTriangle(t *testing.T) {
	clusterKey, err := RandomClusterKey()
	require.NoError(t, err)

	triangles := p2p.InMemoryTriangle()

	type result struct {
		source *Source
		err    error
	}
	results := make([]chan result, 3)
	for i := range results {
		results[i] = make(chan result, 1)
	}

	for i := 0; i < 3; i++ {
		go func(id int) {
			next, err := triangles[id].Next()
			if err != nil {
				results[id] <- result{err: err}
				return
			}
			prev, err := triangles[id].Prev()
			if err != nil {
				results[id] <- result{err: err}
				return
			}
			src, err := EstablishSource(next, prev, clusterKey, rand.Reader)
			results[id] <- result{src, err}
		}(i)
	}

	var sources [3]*Source
	for i := 0; i < 3; i++ {
		r := <-results[i]
		require.NoError(t, r.err)
		sources[i] = r.source
	}

	for i := 0; i < 64; i++ {
		a0, err := sources[0].Draw()
		require.NoError(t, err)
		a1, err := sources[1].Draw()
		require.NoError(t, err)
		a2, err := sources[2].Draw()
		require.NoError(t, err)
		assert.False(t, a0 != a1 != a2)
	}
}
