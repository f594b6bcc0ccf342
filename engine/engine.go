//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package engine evaluates a circuit.Circuit over RSS-2-of-3 shares
// (spec.md §4.D): XOR and NOT are local, AND runs the Araki-Furukawa
// three-party semi-honest protocol, one ring round-trip per AND gate
// in circuit order.
package engine

import (
	"context"
	"fmt"

	"github.com/rss3p/mpcsql/circuit"
	"github.com/rss3p/mpcsql/corr"
	"github.com/rss3p/mpcsql/errs"
	"github.com/rss3p/mpcsql/p2p"
	"github.com/rss3p/mpcsql/rss"
)

// Engine evaluates one query's circuit for one party. Self is this
// party's index (0, 1 or 2); Next/Prev are its triangle legs to party
// self+1 and self-1; Source supplies the per-AND correlated-
// randomness bit αᵢ.
type Engine struct {
	Self    int
	QueryID uint64
	Next    *p2p.Leg
	Prev    *p2p.Leg
	Source  *corr.Source
	Stats   *Stats
}

// New builds an Engine for one running query.
func New(self int, queryID uint64, next, prev *p2p.Leg, source *corr.Source) *Engine {
	return &Engine{
		Self:    self,
		QueryID: queryID,
		Next:    next,
		Prev:    prev,
		Source:  source,
		Stats:   NewStats(),
	}
}

// Run evaluates c against inputs, this party's Pair view of every
// Input wire (spec.md §4.E: a node never sees a plaintext bit, only
// its two shares). It returns this party's Pair view of every output
// wire; the caller (the orchestrator RPC) sends Pair.Right to the
// analyst, per the output-emission convention of spec.md §4.D step 4.
func (e *Engine) Run(ctx context.Context, c *circuit.Circuit, inputs map[circuit.Wire]rss.Pair) (map[circuit.Wire]rss.Pair, error) {
	values := make(map[circuit.Wire]rss.Pair, c.NumWires)

	var gateSeq uint32
	for i, g := range c.Gates {
		switch g.Op {
		case circuit.Input:
			p, ok := inputs[g.Output]
			if !ok {
				return nil, fmt.Errorf("engine: %w: gate %d: no share supplied for input wire %s",
					errs.ErrCircuitValidation, i, g.Output)
			}
			values[g.Output] = p
			e.Stats.NumInput++

		case circuit.Not:
			values[g.Output] = values[g.Input0].Not(e.Self)
			e.Stats.NumNot++

		case circuit.Xor:
			values[g.Output] = values[g.Input0].XOR(values[g.Input1])
			e.Stats.NumXor++

		case circuit.And:
			p, err := e.evalAnd(ctx, gateSeq, values[g.Input0], values[g.Input1])
			if err != nil {
				return nil, fmt.Errorf("engine: gate %d: %w", i, err)
			}
			values[g.Output] = p
			gateSeq++
			e.Stats.NumAnd++

		case circuit.Output:
			// No new wire; g.Input0 is already in values.

		default:
			return nil, fmt.Errorf("engine: gate %d: unknown operation %s", i, g.Op)
		}
	}

	outputs := make(map[circuit.Wire]rss.Pair, len(c.Outputs))
	for _, w := range c.Outputs {
		p, ok := values[w]
		if !ok {
			return nil, fmt.Errorf("engine: %w: output wire %s was never assigned",
				errs.ErrCircuitValidation, w)
		}
		outputs[w] = p
	}

	e.Stats.Done()
	return outputs, nil
}

// evalAnd runs one Araki-Furukawa AND round: compute this party's
// local share zᵢ of x·y, send it to party i-1, and receive zᵢ₊₁ from
// party i+1, reassembling the RSS pair (spec.md §4.D step 2-3).
func (e *Engine) evalAnd(ctx context.Context, gateSeq uint32, x, y rss.Pair) (rss.Pair, error) {
	alpha, err := e.Source.Draw()
	if err != nil {
		return rss.Pair{}, fmt.Errorf("draw correlated randomness: %w", err)
	}

	zi := (x.Own && y.Own) != (x.Own && y.Right) != (x.Right && y.Own) != alpha

	if err := e.Prev.SendFrame(p2p.Frame{
		QueryID: e.QueryID,
		GateSeq: gateSeq,
		Payload: []byte{boolByte(zi)},
	}); err != nil {
		return rss.Pair{}, fmt.Errorf("send share to party %d: %w: %v",
			e.Prev.PeerID, errs.ErrTransportFailure, err)
	}

	frame, err := e.Next.RecvFrameContext(ctx, e.QueryID, gateSeq)
	if err != nil {
		return rss.Pair{}, fmt.Errorf("receive share from party %d: %w",
			e.Next.PeerID, err)
	}
	if len(frame.Payload) != 1 {
		return rss.Pair{}, fmt.Errorf("engine: %w: party %d sent %d-byte AND payload, want 1",
			errs.ErrProtocolDesync, e.Next.PeerID, len(frame.Payload))
	}

	return rss.Pair{Own: zi, Right: frame.Payload[0] != 0}, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
