//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package rss

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareCorrectness(t *testing.T) {
	for _, b := range []bool{true, false} {
		for i := 0; i < 64; i++ {
			triple, err := Share(b, rand.Reader)
			require.NoError(t, err)

			pairs := triple.Pairs()
			got, err := ReconstructPairs(0, pairs[0], 1, pairs[1])
			require.NoError(t, err)
			assert.Equal(t, b, got)

			got, err = ReconstructPairs(1, pairs[1], 2, pairs[2])
			require.NoError(t, err)
			assert.Equal(t, b, got)

			got, err = ReconstructPairs(2, pairs[2], 0, pairs[0])
			require.NoError(t, err)
			assert.Equal(t, b, got)
		}
	}
}

func TestShareHidingAnyTwoAreUniform(t *testing.T) {
	// Fixing the secret to true, any two of the three share
	// components should be (close to) uniform over 0..3. If the
	// sharing leaked the secret, one of the four combinations would
	// never occur.
	const trials = 4000
	counts := make(map[[2]bool]int)
	for i := 0; i < trials; i++ {
		triple, err := Share(true, rand.Reader)
		require.NoError(t, err)
		counts[[2]bool{triple[0], triple[1]}]++
	}
	assert.Len(t, counts, 4, "expected all four (s0,s1) combinations to occur")
	for k, c := range counts {
		assert.Greaterf(t, c, trials/4-trials/10,
			"combination %v occurred too rarely: %d/%d", k, c, trials)
	}
}

func TestReconstructInvalidShareSet(t *testing.T) {
	_, err := Reconstruct(map[int]bool{0: true, 1: false})
	assert.Error(t, err)

	_, err = ReconstructPairs(1, Pair{}, 1, Pair{})
	assert.Error(t, err)
}

func TestXorLocalHomomorphism(t *testing.T) {
	a, err := Share(true, rand.Reader)
	require.NoError(t, err)
	b, err := Share(false, rand.Reader)
	require.NoError(t, err)

	ap := a.Pairs()
	bp := b.Pairs()

	var xored [3]Pair
	for i := 0; i < 3; i++ {
		xored[i] = ap[i].XOR(bp[i])
	}

	got, err := ReconstructPairs(0, xored[0], 1, xored[1])
	require.NoError(t, err)
	assert.Equal(t, true != false, got)
}

func TestNotLocalHomomorphism(t *testing.T) {
	a, err := Share(false, rand.Reader)
	require.NoError(t, err)
	ap := a.Pairs()

	var notted [3]Pair
	for i := 0; i < 3; i++ {
		notted[i] = ap[i].Not(i)
	}

	got, err := ReconstructPairs(0, notted[0], 2, notted[2])
	require.NoError(t, err)
	assert.Equal(t, true, got)
}
