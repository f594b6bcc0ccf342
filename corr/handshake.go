//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.

package corr

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/dchest/blake2b"
)

// Channel is the minimal transport a Handshake needs: send and
// receive one length-prefixed message. p2p.Conn satisfies it.
// Grounded on ot.IO's minimal-interface-over-a-connection pattern
// (ot/ot.go).
type Channel interface {
	SendData(val []byte) error
	Flush() error
	ReceiveData() ([]byte, error)
}

// tagSize is the length, in bytes, of the handshake authentication
// tag.
const tagSize = 32

// mac computes a keyed digest over data, authenticating a handshake
// message against tampering by a party that does not hold key
// (spec.md §4.B: seeds are exchanged "over authenticated channels").
// A concatenation-keyed BLAKE2b hash, not a constant-time HMAC — this
// protocol is semi-honest only (spec.md §1 Non-goals), so the
// handshake only needs to catch accidental corruption, not an active
// forger.
func mac(key, data []byte) []byte {
	h := blake2b.New256()
	h.Write(key)
	h.Write(data)
	return h.Sum(nil)
}

// ClusterKey is the long-lived symmetric key shared out-of-band by
// all three nodes before any session starts, used only to authenticate
// the one-time per-pair seed exchange below.
type ClusterKey [32]byte

// Handshake performs the one-time per-pair seed exchange of spec.md
// §4.B over ch: this party generates its own 128-bit key, sends it
// (with a MAC under clusterKey) to the peer at the other end of ch,
// and receives that peer's key the same way. own is the key this party
// chose; peer is the key received over ch. EstablishSource keeps own
// from the handshake with its right neighbour and peer from the
// handshake with its left neighbour, and builds the α stream from
// those two.
func Handshake(ch Channel, clusterKey ClusterKey, rng io.Reader) (own, peer Key, err error) {
	if _, err = io.ReadFull(rng, own[:]); err != nil {
		return Key{}, Key{}, fmt.Errorf("corr: generate seed: %w", err)
	}
	tag := mac(clusterKey[:], own[:])

	if err = ch.SendData(own[:]); err != nil {
		return Key{}, Key{}, fmt.Errorf("corr: send seed: %w", err)
	}
	if err = ch.SendData(tag); err != nil {
		return Key{}, Key{}, fmt.Errorf("corr: send seed tag: %w", err)
	}
	if err = ch.Flush(); err != nil {
		return Key{}, Key{}, fmt.Errorf("corr: flush handshake: %w", err)
	}

	peerBytes, err := ch.ReceiveData()
	if err != nil {
		return Key{}, Key{}, fmt.Errorf("corr: receive seed: %w", err)
	}
	peerTag, err := ch.ReceiveData()
	if err != nil {
		return Key{}, Key{}, fmt.Errorf("corr: receive seed tag: %w", err)
	}
	if len(peerBytes) != KeySize {
		return Key{}, Key{}, fmt.Errorf("corr: peer seed has wrong length %d", len(peerBytes))
	}
	wantTag := mac(clusterKey[:], peerBytes)
	if !macEqual(wantTag, peerTag) {
		return Key{}, Key{}, fmt.Errorf("corr: peer seed failed authentication")
	}
	copy(peer[:], peerBytes)

	return own, peer, nil
}

func macEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}

// RandomClusterKey draws a fresh cluster key, used by tests.
func RandomClusterKey() (ClusterKey, error) {
	var k ClusterKey
	if _, err := io.ReadFull(rand.Reader, k[:]); err != nil {
		return ClusterKey{}, err
	}
	return k, nil
}

// EstablishSource runs the two per-leg handshakes a party needs
// (spec.md §4.B: "each ordered pair (i, i+1) agrees on a seed") and
// builds the resulting correlated-randomness Source. next is this
// party's transport leg to party i+1, prev its leg to party i-1
// (p2p.Triangle.Next/Prev supply them). Each leg carries one
// bidirectional Handshake exchange, run once from each endpoint; a
// party keeps only the half of each exchange it needs — the seed it
// generated for its right neighbour from the Next handshake, and the
// seed its left neighbour generated for it from the Prev handshake —
// and discards the other half. The two handshakes run concurrently, so
// no party blocks on one leg while its neighbour waits on another.
func EstablishSource(next, prev Channel, clusterKey ClusterKey, rng io.Reader) (*Source, error) {
	var seeds [2 * KeySize]byte
	if _, err := io.ReadFull(rng, seeds[:]); err != nil {
		return nil, fmt.Errorf("corr: generate seeds: %w", err)
	}
	var peerKey Key
	prevErr := make(chan error, 1)
	go func() {
		var err error
		_, peerKey, err = Handshake(prev, clusterKey, bytes.NewReader(seeds[KeySize:]))
		prevErr <- err
	}()

	ownKey, _, err := Handshake(next, clusterKey, bytes.NewReader(seeds[:KeySize]))
	if err != nil {
		return nil, fmt.Errorf("corr: handshake with next peer: %w", err)
	}
	if err := <-prevErr; err != nil {
		return nil, fmt.Errorf("corr: handshake with prev peer: %w", err)
	}

	return NewSource(ownKey, peerKey)
}
