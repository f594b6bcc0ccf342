//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.

package p2p

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTriangleConnectsAllLegs(t *testing.T) {
	triangles := InMemoryTriangle()
	for i := 0; i < numParties; i++ {
		for j := 0; j < numParties; j++ {
			if i == j {
				continue
			}
			leg, err := triangles[i].Leg(j)
			require.NoError(t, err)
			assert.Equal(t, j, leg.PeerID)
		}
	}
}

func TestTriangleNextPrevAreDistinctNeighbours(t *testing.T) {
	triangles := InMemoryTriangle()
	for i := 0; i < numParties; i++ {
		next, err := triangles[i].Next()
		require.NoError(t, err)
		prev, err := triangles[i].Prev()
		require.NoError(t, err)
		assert.NotEqual(t, next.PeerID, prev.PeerID)
		assert.Equal(t, (i+1)%numParties, next.PeerID)
		assert.Equal(t, (i+2)%numParties, prev.PeerID)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	triangles := InMemoryTriangle()
	a, err := triangles[0].Leg(1)
	require.NoError(t, err)
	b, err := triangles[1].Leg(0)
	require.NoError(t, err)

	go func() {
		_ = a.SendFrame(Frame{QueryID: 7, GateSeq: 3, Payload: []byte{1, 2, 3}})
	}()

	f, err := b.RecvFrame(7, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, f.Payload)
}

func TestFrameDesyncRejected(t *testing.T) {
	triangles := InMemoryTriangle()
	a, err := triangles[0].Leg(1)
	require.NoError(t, err)
	b, err := triangles[1].Leg(0)
	require.NoError(t, err)

	go func() {
		_ = a.SendFrame(Frame{QueryID: 1, GateSeq: 5, Payload: nil})
	}()

	_, err = b.RecvFrame(1, 6)
	assert.ErrorContains(t, err, "protocol desync")
}

func TestRecvFrameContextTimesOut(t *testing.T) {
	triangles := InMemoryTriangle()
	b, err := triangles[1].Leg(0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = b.RecvFrameContext(ctx, 1, 0)
	assert.ErrorContains(t, err, "timeout")
}
