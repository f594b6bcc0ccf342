//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rss3p/mpcsql/circuit"
	"github.com/rss3p/mpcsql/p2p"
)

func TestRequestRoundTrip(t *testing.T) {
	client, server := p2p.Pipe()
	want := Request{QueryID: 42, CircuitBytes: []byte{1, 2, 3, 4}}

	done := make(chan error, 1)
	go func() { done <- SendRequest(client, want) }()

	got, err := ReceiveRequest(server)
	require.NoError(t, err)
	require.NoError(t, <-done)
	assert.Equal(t, want, got)
}

func TestResponseRoundTrip(t *testing.T) {
	client, server := p2p.Pipe()
	want := Response{Outputs: map[circuit.Wire]bool{5: true, 1: false, 3: true}}

	done := make(chan error, 1)
	go func() { done <- SendResponse(client, want) }()

	got, err := ReceiveResponse(server)
	require.NoError(t, err)
	require.NoError(t, <-done)
	assert.Equal(t, want.Outputs, got.Outputs)
}

func TestResponseRoundTripEmpty(t *testing.T) {
	client, server := p2p.Pipe()
	want := Response{Outputs: map[circuit.Wire]bool{}}

	done := make(chan error, 1)
	go func() { done <- SendResponse(client, want) }()

	got, err := ReceiveResponse(server)
	require.NoError(t, err)
	require.NoError(t, <-done)
	assert.Empty(t, got.Outputs)
}
