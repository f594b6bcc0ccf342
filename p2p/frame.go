//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.

package p2p

import (
	"context"
	"fmt"

	"github.com/rss3p/mpcsql/errs"
)

// Frame is one lock-step message exchanged between two parties while
// evaluating a circuit (spec.md §4.D, §6: "nodes exchange exactly one
// message per AND gate, never out of order"). QueryID identifies the
// running query and GateSeq is the position of the AND gate within
// the circuit's topological order; a Leg.RecvFrame call rejects a
// frame whose GateSeq does not match what it expects next.
type Frame struct {
	QueryID uint64
	GateSeq uint32
	Payload []byte
}

// SendFrame writes one Frame to the peer and flushes it immediately:
// AND-gate exchanges are round-tripped one at a time, so batching
// writes across frames would only add latency without saving
// syscalls.
func (l *Leg) SendFrame(f Frame) error {
	if err := l.Conn.SendUint32(int(f.QueryID)); err != nil {
		return fmt.Errorf("p2p: send frame query id: %w", err)
	}
	if err := l.Conn.SendUint32(int(f.GateSeq)); err != nil {
		return fmt.Errorf("p2p: send frame gate seq: %w", err)
	}
	if err := l.Conn.SendData(f.Payload); err != nil {
		return fmt.Errorf("p2p: send frame payload: %w", err)
	}
	return l.Conn.Flush()
}

// RecvFrame reads one Frame from the peer and verifies it matches the
// expected (queryID, gateSeq); a mismatch means the two parties have
// desynchronized their gate order, which is always a protocol bug,
// never a recoverable condition (spec.md §7 ErrProtocolDesync).
func (l *Leg) RecvFrame(queryID uint64, gateSeq uint32) (Frame, error) {
	gotQuery, err := l.Conn.ReceiveUint32()
	if err != nil {
		return Frame{}, fmt.Errorf("p2p: receive frame query id: %w", err)
	}
	gotSeq, err := l.Conn.ReceiveUint32()
	if err != nil {
		return Frame{}, fmt.Errorf("p2p: receive frame gate seq: %w", err)
	}
	payload, err := l.Conn.ReceiveData()
	if err != nil {
		return Frame{}, fmt.Errorf("p2p: receive frame payload: %w", err)
	}

	f := Frame{
		QueryID: uint64(uint32(gotQuery)),
		GateSeq: uint32(gotSeq),
		Payload: payload,
	}
	if f.QueryID != queryID || f.GateSeq != gateSeq {
		return Frame{}, fmt.Errorf(
			"p2p: %w: peer %d sent (query=%d, gate=%d), expected (query=%d, gate=%d)",
			errs.ErrProtocolDesync, l.PeerID, f.QueryID, f.GateSeq, queryID, gateSeq)
	}
	return f, nil
}

// RecvFrameContext is RecvFrame with a per-query deadline (spec.md
// §4.C: "the engine must respect a per-query deadline even while
// blocked waiting on a peer"). Conn has no native deadline support
// (the teacher's protocol.go predates this requirement), so the read
// runs on its own goroutine and the caller gives up waiting on ctx
// cancellation; the goroutine itself stays blocked on the connection
// until a frame arrives or the connection's owner closes it, which
// RecvFrameContext does not do.
func (l *Leg) RecvFrameContext(ctx context.Context, queryID uint64, gateSeq uint32) (Frame, error) {
	type result struct {
		frame Frame
		err   error
	}
	done := make(chan result, 1)
	go func() {
		f, err := l.RecvFrame(queryID, gateSeq)
		done <- result{f, err}
	}()

	select {
	case r := <-done:
		return r.frame, r.err
	case <-ctx.Done():
		return Frame{}, fmt.Errorf("p2p: %w: waiting on peer %d: %v",
			errs.ErrTimeout, l.PeerID, ctx.Err())
	}
}
