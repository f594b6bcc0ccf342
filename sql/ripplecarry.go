//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package sql

import "github.com/rss3p/mpcsql/circuit"

// ripple is the half/full-adder network, reimplemented here from
// compiler/circuits/circ_adder.go's NewHalfAdder/NewFullAdder/NewAdder
// against Builder's gate-at-a-time API instead of that package's
// Wire/Compiler abstraction. Sum and Avg need it once the builder
// grows carry-propagating aggregates; buildAggregate does not call it
// yet (see ErrUnsupportedAggregate), so it is exercised only by its
// own tests until then.
type ripple struct {
	b *Builder
}

// halfAdder returns (sum, carry) for a + b.
func (r ripple) halfAdder(a, c circuit.Wire) (sum, carry circuit.Wire) {
	sum = r.b.xor(a, c)
	carry = r.b.and(a, c)
	return sum, carry
}

// fullAdder returns (sum, carryOut) for a + b + carryIn.
func (r ripple) fullAdder(a, c, carryIn circuit.Wire) (sum, carryOut circuit.Wire) {
	w1 := r.b.xor(c, carryIn)
	sum = r.b.xor(a, w1)
	w2 := r.b.xor(a, carryIn)
	w3 := r.b.and(w1, w2)
	carryOut = r.b.xor(carryIn, w3)
	return sum, carryOut
}

// add returns the (len(x)+1)-bit sum of x and y, both LSB first and
// of equal length, overflow kept as the final carry-out bit.
func (r ripple) add(x, y []circuit.Wire) []circuit.Wire {
	if len(x) != len(y) {
		panic("sql: ripple.add: operand width mismatch")
	}
	z := make([]circuit.Wire, len(x)+1)

	sum, carry := r.halfAdder(x[0], y[0])
	z[0] = sum

	for i := 1; i < len(x); i++ {
		sum, carry = r.fullAdder(x[i], y[i], carry)
		z[i] = sum
	}
	z[len(x)] = carry
	return z
}
