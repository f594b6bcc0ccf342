//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package orchestrator implements the analyst-facing client of
// spec.md §4.H: dispatch a compiled circuit to the three computing
// nodes under one query id, collect each party's output-share
// contribution, and reconstruct the plaintext result. If any node
// fails or times out the whole query fails — no partial result is
// ever returned.
package orchestrator

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rss3p/mpcsql/circuit"
	"github.com/rss3p/mpcsql/errs"
	"github.com/rss3p/mpcsql/p2p"
	"github.com/rss3p/mpcsql/rss"
)

// Client holds one connection to each of the three computing nodes.
type Client struct {
	conns [3]*p2p.Conn
}

// Dial connects to all three nodes' query ports, addrs[i] naming
// party i (spec.md §6: "party 0/1/2, each on its own port").
func Dial(addrs [3]string) (*Client, error) {
	var c Client
	for i, addr := range addrs {
		nc, err := net.Dial("tcp", addr)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("orchestrator: dial party %d at %s: %w", i, addr, err)
		}
		c.conns[i] = p2p.NewConn(nc)
	}
	return &c, nil
}

// Close closes every node connection.
func (c *Client) Close() {
	for _, conn := range c.conns {
		if conn != nil {
			conn.Close()
		}
	}
}

// SubmitQuery sends circ, identical bytes to all three nodes, under
// queryID, waits (respecting deadline) for all three output-share
// contributions, and reconstructs the plaintext value of every output
// wire (spec.md §4.H).
func (c *Client) SubmitQuery(queryID uint64, circ *circuit.Circuit, deadline time.Duration) (map[circuit.Wire]bool, error) {
	var circBuf bytes.Buffer
	if err := circ.Marshal(&circBuf); err != nil {
		return nil, fmt.Errorf("orchestrator: marshal circuit: %w", err)
	}
	circBytes := circBuf.Bytes()

	ctx, cancel := context.WithTimeout(context.Background(), deadline)
	defer cancel()

	type result struct {
		party int
		resp  Response
		err   error
	}
	results := make(chan result, 3)

	for i, conn := range c.conns {
		go func(party int, conn *p2p.Conn) {
			done := make(chan result, 1)
			go func() {
				if err := SendRequest(conn, Request{QueryID: queryID, CircuitBytes: circBytes}); err != nil {
					done <- result{party, Response{}, fmt.Errorf("send request: %w", err)}
					return
				}
				resp, err := ReceiveResponse(conn)
				done <- result{party, resp, err}
			}()
			select {
			case r := <-done:
				results <- r
			case <-ctx.Done():
				results <- result{party, Response{}, fmt.Errorf("%w: %v", errs.ErrTimeout, ctx.Err())}
			}
		}(i, conn)
	}

	var responses [3]Response
	var gotErr error
	for i := 0; i < 3; i++ {
		r := <-results
		if r.err != nil && gotErr == nil {
			gotErr = fmt.Errorf("orchestrator: party %d: %w", r.party, r.err)
		}
		responses[r.party] = r.resp
	}
	if gotErr != nil {
		return nil, gotErr
	}

	// Each node sends its "unshared" component (Pair.Right = x_{i+1},
	// the one its right neighbour also holds) for every output wire
	// (spec.md §4.D step 4), so the bit received from party i is the
	// share component belonging to index (i+1)%3.
	outputs := make(map[circuit.Wire]bool, len(circ.Outputs))
	for _, w := range circ.Outputs {
		contributions := make(map[int]bool, 3)
		for party := 0; party < 3; party++ {
			bit, ok := responses[party].Outputs[w]
			if !ok {
				return nil, fmt.Errorf("orchestrator: %w: party %d never reported wire %s",
					errs.ErrCircuitValidation, party, w)
			}
			contributions[(party+1)%3] = bit
		}
		bit, err := rss.Reconstruct(contributions)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: reconstruct wire %s: %w", w, err)
		}
		outputs[w] = bit
	}
	return outputs, nil
}
