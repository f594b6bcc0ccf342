//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package orchestrator

import (
	"fmt"
	"sort"

	"github.com/rss3p/mpcsql/circuit"
	"github.com/rss3p/mpcsql/p2p"
)

// Request is the analyst-to-node message of spec.md §4.H / §6
// SubmitQuery: one query id and the marshaled circuit (circuit.Inputs
// already carries the input manifest, so no separate manifest is
// shipped on the wire).
type Request struct {
	QueryID      uint64
	CircuitBytes []byte
}

// Response is a node's reply: its RSS output-share contribution for
// every output wire of the circuit it just evaluated.
type Response struct {
	Outputs map[circuit.Wire]bool
}

// SendRequest writes req to conn and flushes it.
func SendRequest(conn *p2p.Conn, req Request) error {
	if err := conn.SendUint32(int(req.QueryID)); err != nil {
		return fmt.Errorf("orchestrator: send query id: %w", err)
	}
	if err := conn.SendData(req.CircuitBytes); err != nil {
		return fmt.Errorf("orchestrator: send circuit bytes: %w", err)
	}
	return conn.Flush()
}

// ReceiveRequest reads one Request off conn; it is the node side's
// counterpart of SendRequest.
func ReceiveRequest(conn *p2p.Conn) (Request, error) {
	var req Request
	queryID, err := conn.ReceiveUint32()
	if err != nil {
		return req, fmt.Errorf("orchestrator: receive query id: %w", err)
	}
	circBytes, err := conn.ReceiveData()
	if err != nil {
		return req, fmt.Errorf("orchestrator: receive circuit bytes: %w", err)
	}
	req.QueryID = uint64(uint32(queryID))
	req.CircuitBytes = circBytes
	return req, nil
}

// SendResponse writes resp to conn and flushes it. Outputs are encoded
// as a count-prefixed list of (wire, bit) pairs sorted by wire so the
// encoding is deterministic regardless of map iteration order.
func SendResponse(conn *p2p.Conn, resp Response) error {
	wires := make([]circuit.Wire, 0, len(resp.Outputs))
	for w := range resp.Outputs {
		wires = append(wires, w)
	}
	sort.Slice(wires, func(i, j int) bool { return wires[i] < wires[j] })

	if err := conn.SendUint32(len(wires)); err != nil {
		return fmt.Errorf("orchestrator: send output count: %w", err)
	}
	for _, w := range wires {
		if err := conn.SendUint32(int(w)); err != nil {
			return fmt.Errorf("orchestrator: send output wire: %w", err)
		}
		bit := byte(0)
		if resp.Outputs[w] {
			bit = 1
		}
		if err := conn.SendByte(bit); err != nil {
			return fmt.Errorf("orchestrator: send output bit: %w", err)
		}
	}
	return conn.Flush()
}

// ReceiveResponse reads one Response off conn.
func ReceiveResponse(conn *p2p.Conn) (Response, error) {
	resp := Response{Outputs: make(map[circuit.Wire]bool)}
	count, err := conn.ReceiveUint32()
	if err != nil {
		return resp, fmt.Errorf("orchestrator: receive output count: %w", err)
	}
	for i := 0; i < count; i++ {
		w, err := conn.ReceiveUint32()
		if err != nil {
			return resp, fmt.Errorf("orchestrator: receive output wire: %w", err)
		}
		bit, err := conn.ReceiveByte()
		if err != nil {
			return resp, fmt.Errorf("orchestrator: receive output bit: %w", err)
		}
		resp.Outputs[circuit.Wire(w)] = bit != 0
	}
	return resp, nil
}
