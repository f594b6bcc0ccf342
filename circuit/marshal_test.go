//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	c := sampleCircuit()

	var buf bytes.Buffer
	require.NoError(t, c.Marshal(&buf))

	got, err := Unmarshal(&buf)
	require.NoError(t, err)

	assert.Equal(t, c.NumWires, got.NumWires)
	assert.Equal(t, c.Gates, got.Gates)
	assert.Equal(t, c.Inputs, got.Inputs)
	assert.Equal(t, c.Outputs, got.Outputs)
}

func TestDigestIsDeterministicAndSensitiveToChange(t *testing.T) {
	c := sampleCircuit()
	d1, err := c.Digest()
	require.NoError(t, err)
	d2, err := c.Digest()
	require.NoError(t, err)
	assert.Equal(t, d1, d2)

	other := sampleCircuit()
	other.Outputs = []Wire{2}
	d3, err := other.Digest()
	require.NoError(t, err)
	assert.NotEqual(t, d1, d3)
}

func TestUnmarshalRejectsBadMagic(t *testing.T) {
	_, err := Unmarshal(bytes.NewReader([]byte{0, 0, 0, 0}))
	assert.Error(t, err)
}
