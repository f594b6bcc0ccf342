//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rss3p/mpcsql/circuit"
)

func freshInput(b *Builder) circuit.Wire {
	w := b.nextWire
	b.nextWire++
	b.gates = append(b.gates, circuit.Gate{Op: circuit.Input, Output: w})
	return w
}

func bits(v, width uint) []bool {
	out := make([]bool, width)
	for i := range out {
		out[i] = (v>>uint(i))&1 != 0
	}
	return out
}

func fromBits(bs []bool) uint {
	var v uint
	for i, b := range bs {
		if b {
			v |= 1 << uint(i)
		}
	}
	return v
}

func TestRippleAddMatchesPlainSum(t *testing.T) {
	const width = 4
	for x := uint(0); x < 1<<width; x++ {
		for y := uint(0); y < 1<<width; y++ {
			b := &Builder{}
			r := ripple{b: b}

			xWires := make([]circuit.Wire, width)
			yWires := make([]circuit.Wire, width)
			inputs := make(map[circuit.Wire]bool)
			xBits, yBits := bits(x, width), bits(y, width)
			for i := 0; i < width; i++ {
				xWires[i] = freshInput(b)
				inputs[xWires[i]] = xBits[i]
				yWires[i] = freshInput(b)
				inputs[yWires[i]] = yBits[i]
			}

			z := r.add(xWires, yWires)
			c := &circuit.Circuit{NumWires: int(b.nextWire), Gates: b.gates}
			values := evalPlain(t, c, inputs)

			got := make([]bool, len(z))
			for i, w := range z {
				got[i] = values[w]
			}
			assert.Equal(t, x+y, fromBits(got), "x=%d y=%d", x, y)
		}
	}
}

func TestRippleAddRejectsWidthMismatch(t *testing.T) {
	b := &Builder{}
	r := ripple{b: b}
	defer func() {
		assert.NotNil(t, recover())
	}()
	r.add([]circuit.Wire{freshInput(b)}, []circuit.Wire{freshInput(b), freshInput(b)})
}

func TestHalfAdderTruthTable(t *testing.T) {
	for _, tc := range []struct{ a, c, sum, carry bool }{
		{false, false, false, false},
		{false, true, true, false},
		{true, false, true, false},
		{true, true, false, true},
	} {
		b := &Builder{}
		r := ripple{b: b}
		a := freshInput(b)
		c := freshInput(b)
		sum, carry := r.halfAdder(a, c)
		circ := &circuit.Circuit{NumWires: int(b.nextWire), Gates: b.gates}
		values := evalPlain(t, circ, map[circuit.Wire]bool{a: tc.a, c: tc.c})
		require.Equal(t, tc.sum, values[sum])
		require.Equal(t, tc.carry, values[carry])
	}
}
