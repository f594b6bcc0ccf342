//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package rss implements the replicated secret sharing (RSS-2-of-3)
// algebra for single bits and bit-vectors (spec.md §4.A).
package rss

import (
	"fmt"
	"io"

	"github.com/rss3p/mpcsql/errs"
)

// Pair is the pair of share components a single party holds for one
// secret bit: its own component and the component it shares with its
// right neighbour (party i's pair is (xi, xi+1), spec.md §3).
type Pair struct {
	Own   bool
	Right bool
}

// XOR computes the local XOR of two RSS pairs: a valid sharing of the
// XOR of the two underlying secrets (spec.md §4.A, local operation).
func (p Pair) XOR(o Pair) Pair {
	return Pair{
		Own:   p.Own != o.Own,
		Right: p.Right != o.Right,
	}
}

// Not computes the local NOT of an RSS pair as seen by party id.
// Component x0 is complemented: party 0 holds it as Own and party 2
// holds it as Right; party 1 copies its pair unchanged. The three
// pairs stay a consistent sharing of the complemented bit.
func (p Pair) Not(id int) Pair {
	switch id {
	case 0:
		return Pair{Own: !p.Own, Right: p.Right}
	case 2:
		return Pair{Own: p.Own, Right: !p.Right}
	default:
		return p
	}
}

// Triple holds the three parties' share components of one secret bit,
// used only at sharing/reconstruction time (a single party never holds
// a Triple in the engine — it holds one Pair).
type Triple [3]bool

// Share draws a fresh RSS-2-of-3 sharing of b using rng for the two
// random components (spec.md §4.A): s1, s2 uniform, s3 = b^s1^s2.
func Share(b bool, rng io.Reader) (Triple, error) {
	var buf [1]byte
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		return Triple{}, fmt.Errorf("rss: draw share randomness: %w", err)
	}
	r1 := buf[0]&1 == 1
	r2 := buf[0]&2 == 2
	return Triple{r1, r2, b != r1 != r2}, nil
}

// Pairs returns the per-party Pair views of a Triple: party i holds
// (s[i], s[i+1 mod 3]).
func (t Triple) Pairs() [3]Pair {
	return [3]Pair{
		{Own: t[0], Right: t[1]},
		{Own: t[1], Right: t[2]},
		{Own: t[2], Right: t[0]},
	}
}

// Reconstruct XORs the three distinct share components to recover the
// plaintext bit. contributions must cover component indices {0,1,2};
// a missing index is rejected.
func Reconstruct(contributions map[int]bool) (bool, error) {
	if len(contributions) != 3 {
		return false, fmt.Errorf("rss: %w: got %d components, want 3",
			errs.ErrInvalidShareSet, len(contributions))
	}
	for idx := 0; idx < 3; idx++ {
		if _, ok := contributions[idx]; !ok {
			return false, fmt.Errorf("rss: %w: missing component %d",
				errs.ErrInvalidShareSet, idx)
		}
	}
	return contributions[0] != contributions[1] != contributions[2], nil
}

// ReconstructPairs reconstructs a bit from two parties' Pair views,
// the common end-to-end case: any two of the three parties suffice
// (spec.md §3 invariant). left and right are the pairs held by two
// distinct party indices.
func ReconstructPairs(leftID int, left Pair, rightID int, right Pair) (bool, error) {
	if leftID == rightID {
		return false, fmt.Errorf("rss: %w: same party supplied twice",
			errs.ErrInvalidShareSet)
	}
	contributions := map[int]bool{
		leftID:              left.Own,
		(leftID + 1) % 3:    left.Right,
		rightID:             right.Own,
		(rightID + 1) % 3:   right.Right,
	}
	return Reconstruct(contributions)
}
