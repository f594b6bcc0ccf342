//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.

// Package corr implements the correlated-randomness source of
// spec.md §4.B: a deterministic pseudo-random stream of per-party
// bits αᵢ with α0⊕α1⊕α2=0, derived from a one-time per-pair seed
// exchange plus a PRF counter so that AND gates need no online
// communication for their randomness.
package corr

import (
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20"

	"github.com/rss3p/mpcsql/errs"
)

// KeySize is the size, in bytes, of one pair's PRF key (spec.md §4.B:
// "random 128-bit values").
const KeySize = 16

// maxCounter is the largest draw counter (keystream bit index) Draw
// accepts; a draw past it fails with RandomnessExhausted (spec.md:
// "treat as unreachable for realistic queries").
const maxCounter = 1<<32 - 1

// Key is a 128-bit pairwise PRF key.
type Key [KeySize]byte

// zeroBlock supplies the all-zero plaintext XORed against a running
// ChaCha20 cipher to read its raw keystream, one 64-byte block at a
// time.
var zeroBlock [64]byte

// stream wraps one key's ChaCha20 keystream, read one bit at a time.
// Grounded on vole/vole.go's prgChaCha20: zero nonce, key expanded to
// 32 bytes, XOR a block of zeros to read the raw keystream.
type stream struct {
	cipher   cipher.Stream
	block    [64]byte // one ChaCha20 block of keystream.
	consumed uint64   // number of blocks generated so far.
}

func newStream(k Key) (*stream, error) {
	full := make([]byte, 32)
	for i := range full {
		full[i] = k[i%len(k)]
	}
	c, err := chacha20.NewUnauthenticatedCipher(full, make([]byte, chacha20.NonceSize))
	if err != nil {
		return nil, fmt.Errorf("corr: init stream cipher: %w", err)
	}
	return &stream{cipher: c}, nil
}

// bit returns the c-th keystream bit, F(k, c). Bits must be read in
// strictly increasing c order, which Source's monotonic counter
// guarantees.
func (s *stream) bit(c uint64) (bool, error) {
	if c > maxCounter {
		return false, errs.ErrRandomnessExhausted
	}
	byteIdx := c / 8
	for uint64(len(s.block))*s.consumed <= byteIdx {
		s.cipher.XORKeyStream(s.block[:], zeroBlock[:])
		s.consumed++
	}
	off := byteIdx - (s.consumed-1)*uint64(len(s.block))
	return s.block[off]&(1<<(c%8)) != 0, nil
}

// Source produces the per-AND correlated-randomness bit αᵢ for one
// party within one running query. It is constructed from the two
// pairwise keys the party holds after the session Handshake (spec.md
// §4.B: "party i holds (kᵢ₋₁, kᵢ)").
type Source struct {
	own  *stream // keyed with this party's own key kᵢ, shared with party i+1.
	peer *stream // keyed with the key received from party i-1, kᵢ₋₁.
	ctr  uint64
}

// NewSource builds a correlated-randomness source from the pair of
// keys established during the session handshake.
func NewSource(ownKey, peerKey Key) (*Source, error) {
	own, err := newStream(ownKey)
	if err != nil {
		return nil, err
	}
	peer, err := newStream(peerKey)
	if err != nil {
		return nil, err
	}
	return &Source{own: own, peer: peer}, nil
}

// Draw returns the next αᵢ = F(kᵢ, c) ⊕ F(kᵢ₋₁, c), advancing the
// session counter by one. Counter management is per spec.md §4.B: "a
// single monotonic counter per session, incremented by one per AND
// gate in circuit order", here scoped to the lifetime of one Source.
// cmd/node builds one Source per session and shares it across every
// query it runs, so the counter keeps advancing from query to query.
func (s *Source) Draw() (bool, error) {
	ownBit, err := s.own.bit(s.ctr)
	if err != nil {
		return false, fmt.Errorf("corr: %w", err)
	}
	peerBit, err := s.peer.bit(s.ctr)
	if err != nil {
		return false, fmt.Errorf("corr: %w", err)
	}
	s.ctr++
	return ownBit != peerBit, nil
}
