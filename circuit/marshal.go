//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/dchest/blake2b"
)

// magic identifies the wire format version, following the teacher's
// own MAGIC constant convention in this file.
const magic = 0x66736331 // "fsc1"

var bo = binary.BigEndian

// Marshal writes a canonical binary encoding of the circuit: every
// node must compute the same bytes for the same circuit so
// Circuit.Digest is comparable across the orchestrator and all three
// nodes (spec.md §4.E "ship identical bytes"). Inputs is written as a
// sorted-by-wire slice, never map order, per the determinism redesign
// flag.
func (c *Circuit) Marshal(out io.Writer) error {
	header := []interface{}{
		uint32(magic),
		uint32(c.NumWires),
		uint32(len(c.Gates)),
		uint32(len(c.Inputs)),
		uint32(len(c.Outputs)),
	}
	for _, v := range header {
		if err := binary.Write(out, bo, v); err != nil {
			return err
		}
	}

	for _, g := range c.Gates {
		if err := marshalGate(out, g); err != nil {
			return err
		}
	}

	wires := make([]Wire, 0, len(c.Inputs))
	for w := range c.Inputs {
		wires = append(wires, w)
	}
	sort.Slice(wires, func(i, j int) bool { return wires[i] < wires[j] })
	for _, w := range wires {
		ref := c.Inputs[w]
		fields := []interface{}{
			uint32(w),
			ref.TableID,
			uint32(ref.Row),
			uint32(ref.Column),
			uint32(ref.Bit),
		}
		for _, v := range fields {
			if err := binary.Write(out, bo, v); err != nil {
				return err
			}
		}
	}

	for _, w := range c.Outputs {
		if err := binary.Write(out, bo, uint32(w)); err != nil {
			return err
		}
	}

	return nil
}

func marshalGate(out io.Writer, g Gate) error {
	fields := []interface{}{byte(g.Op)}
	switch g.Op {
	case Input:
		fields = append(fields, uint32(g.Output))
	case Not, Output:
		fields = append(fields, uint32(g.Input0), uint32(g.Output))
	case Xor, And:
		fields = append(fields, uint32(g.Input0), uint32(g.Input1), uint32(g.Output))
	default:
		return fmt.Errorf("circuit: unsupported gate type %s", g.Op)
	}
	for _, v := range fields {
		if err := binary.Write(out, bo, v); err != nil {
			return err
		}
	}
	return nil
}

// Unmarshal decodes a circuit encoded by Marshal.
func Unmarshal(in io.Reader) (*Circuit, error) {
	var gotMagic, numWires, numGates, numInputs, numOutputs uint32
	for _, v := range []*uint32{&gotMagic, &numWires, &numGates, &numInputs, &numOutputs} {
		if err := binary.Read(in, bo, v); err != nil {
			return nil, fmt.Errorf("circuit: read header: %w", err)
		}
	}
	if gotMagic != magic {
		return nil, fmt.Errorf("circuit: bad magic %#x", gotMagic)
	}

	c := &Circuit{
		NumWires: int(numWires),
		Gates:    make([]Gate, numGates),
		Inputs:   make(map[Wire]InputRef, numInputs),
		Outputs:  make([]Wire, numOutputs),
	}

	for i := range c.Gates {
		g, err := unmarshalGate(in)
		if err != nil {
			return nil, fmt.Errorf("circuit: read gate %d: %w", i, err)
		}
		c.Gates[i] = g
		c.Stats[g.Op]++
	}

	for i := 0; i < int(numInputs); i++ {
		var w, col, bit, row uint32
		var tableID uint64
		if err := binary.Read(in, bo, &w); err != nil {
			return nil, fmt.Errorf("circuit: read input wire: %w", err)
		}
		if err := binary.Read(in, bo, &tableID); err != nil {
			return nil, fmt.Errorf("circuit: read input table id: %w", err)
		}
		if err := binary.Read(in, bo, &row); err != nil {
			return nil, fmt.Errorf("circuit: read input row: %w", err)
		}
		if err := binary.Read(in, bo, &col); err != nil {
			return nil, fmt.Errorf("circuit: read input column: %w", err)
		}
		if err := binary.Read(in, bo, &bit); err != nil {
			return nil, fmt.Errorf("circuit: read input bit: %w", err)
		}
		c.Inputs[Wire(w)] = InputRef{
			TableID: tableID,
			Row:     int(row),
			Column:  int(col),
			Bit:     int(bit),
		}
	}

	for i := range c.Outputs {
		var w uint32
		if err := binary.Read(in, bo, &w); err != nil {
			return nil, fmt.Errorf("circuit: read output wire: %w", err)
		}
		c.Outputs[i] = Wire(w)
	}

	return c, nil
}

func unmarshalGate(in io.Reader) (Gate, error) {
	var opByte byte
	if err := binary.Read(in, bo, &opByte); err != nil {
		return Gate{}, err
	}
	op := Operation(opByte)

	var g Gate
	g.Op = op
	switch op {
	case Input:
		var out uint32
		if err := binary.Read(in, bo, &out); err != nil {
			return Gate{}, err
		}
		g.Output = Wire(out)
	case Not, Output:
		var in0, out uint32
		if err := binary.Read(in, bo, &in0); err != nil {
			return Gate{}, err
		}
		if err := binary.Read(in, bo, &out); err != nil {
			return Gate{}, err
		}
		g.Input0, g.Output = Wire(in0), Wire(out)
	case Xor, And:
		var in0, in1, out uint32
		if err := binary.Read(in, bo, &in0); err != nil {
			return Gate{}, err
		}
		if err := binary.Read(in, bo, &in1); err != nil {
			return Gate{}, err
		}
		if err := binary.Read(in, bo, &out); err != nil {
			return Gate{}, err
		}
		g.Input0, g.Input1, g.Output = Wire(in0), Wire(in1), Wire(out)
	default:
		return Gate{}, fmt.Errorf("circuit: unsupported gate type %d", opByte)
	}
	return g, nil
}

// Digest returns the BLAKE2b-256 digest of the circuit's canonical
// encoding, letting a node confirm it received the exact same circuit
// the orchestrator sent to its two peers (spec.md §4.E).
func (c *Circuit) Digest() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Marshal(&buf); err != nil {
		return nil, err
	}
	h := blake2b.New256()
	h.Write(buf.Bytes())
	return h.Sum(nil), nil
}
