//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Command node runs one of the three computing nodes of spec.md §1:
// it holds share.Bundle data delivered by owners, accepts queries
// from the orchestrator, and evaluates their circuits with engine.
package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"github.com/rss3p/mpcsql/circuit"
	"github.com/rss3p/mpcsql/corr"
	"github.com/rss3p/mpcsql/engine"
	"github.com/rss3p/mpcsql/errs"
	"github.com/rss3p/mpcsql/orchestrator"
	"github.com/rss3p/mpcsql/p2p"
	"github.com/rss3p/mpcsql/rss"
	"github.com/rss3p/mpcsql/share"
)

var verbose = false

func main() {
	self := flag.Int("id", -1, "Party id (0, 1 or 2)")
	peers := flag.String("peers", "", "Triangle listen addresses, comma separated, addrs[id] is this node's own")
	clusterKeyHex := flag.String("cluster-key", "", "64 hex digit cluster key shared out of band by all three nodes")
	shareAddr := flag.String("share-addr", ":9100", "Listen address for owner SendTableShares deliveries")
	queryAddr := flag.String("query-addr", ":9200", "Listen address for orchestrator SubmitQuery requests")
	fVerbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	verbose = *fVerbose

	addrs, err := parsePeers(*peers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "node: %s\n", err)
		os.Exit(1)
	}
	if *self < 0 || *self > 2 {
		fmt.Fprintf(os.Stderr, "node: -id must be 0, 1 or 2\n")
		os.Exit(1)
	}
	clusterKey, err := parseClusterKey(*clusterKeyHex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "node: %s\n", err)
		os.Exit(1)
	}

	log.Printf("node %d: dialing triangle...", *self)
	triangle, err := p2p.Dial(*self, addrs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "node: %s\n", err)
		os.Exit(1)
	}
	defer triangle.Close()

	next, err := triangle.Next()
	if err != nil {
		fmt.Fprintf(os.Stderr, "node: %s\n", err)
		os.Exit(1)
	}
	prev, err := triangle.Prev()
	if err != nil {
		fmt.Fprintf(os.Stderr, "node: %s\n", err)
		os.Exit(1)
	}

	log.Printf("node %d: establishing correlated-randomness source...", *self)
	source, err := corr.EstablishSource(next, prev, clusterKey, rand.Reader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "node: %s\n", err)
		os.Exit(1)
	}

	store := share.NewStore()

	go serveShares(*shareAddr, store)

	log.Printf("node %d: ready, serving queries on %s", *self, *queryAddr)
	if err := serveQueries(*queryAddr, *self, next, prev, source, store); err != nil {
		fmt.Fprintf(os.Stderr, "node: %s\n", err)
		os.Exit(1)
	}
}

func parsePeers(s string) ([3]string, error) {
	var addrs [3]string
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return addrs, fmt.Errorf("-peers must list exactly 3 addresses, got %d", len(parts))
	}
	for i, p := range parts {
		addrs[i] = strings.TrimSpace(p)
	}
	return addrs, nil
}

func parseClusterKey(s string) (corr.ClusterKey, error) {
	var key corr.ClusterKey
	raw, err := hex.DecodeString(s)
	if err != nil {
		return key, fmt.Errorf("-cluster-key: %w", err)
	}
	if len(raw) != len(key) {
		return key, fmt.Errorf("-cluster-key: want %d bytes, got %d", len(key), len(raw))
	}
	copy(key[:], raw)
	return key, nil
}

// serveShares accepts owner connections and stores whatever table
// shares they deliver, one request per connection (spec.md §4.G step
// 4, §6 SendTableShares).
func serveShares(addr string, store *share.Store) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("node: listen for shares on %s: %s", addr, err)
	}
	for {
		nc, err := ln.Accept()
		if err != nil {
			log.Printf("node: share accept: %s", err)
			continue
		}
		go func() {
			defer nc.Close()
			conn := p2p.NewConn(nc)
			if err := share.ServeSendTableShares(conn, store); err != nil {
				log.Printf("node: share delivery from %s: %s", nc.RemoteAddr(), err)
			}
		}()
	}
}

// serveQueries accepts orchestrator connections, each carrying a
// sequence of circuits, and evaluates each with engine.Engine (spec.md §4.D,
// §6 SubmitQuery). A query fails closed: any error aborts this
// connection without sending a response, leaving the orchestrator's
// overall SubmitQuery to time out and fail for the whole query.
func serveQueries(addr string, self int, next, prev *p2p.Leg, source *corr.Source, store *share.Store) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen for queries on %s: %w", addr, err)
	}
	for {
		nc, err := ln.Accept()
		if err != nil {
			log.Printf("node: query accept: %s", err)
			continue
		}
		go func() {
			defer nc.Close()
			conn := p2p.NewConn(nc)
			// One orchestrator connection carries every query that
			// client submits during its lifetime (orchestrator.Client
			// dials once and reuses its conns), so this loops until
			// the client disconnects.
			for {
				if err := handleQuery(conn, self, next, prev, source, store); err != nil {
					log.Printf("node: query from %s: %s", nc.RemoteAddr(), err)
					return
				}
			}
		}()
	}
}

func handleQuery(conn *p2p.Conn, self int, next, prev *p2p.Leg, source *corr.Source, store *share.Store) error {
	req, err := orchestrator.ReceiveRequest(conn)
	if err != nil {
		return fmt.Errorf("receive request: %w", err)
	}

	c, err := circuit.Unmarshal(bytes.NewReader(req.CircuitBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrCircuitValidation, err)
	}
	if err := c.Validate(); err != nil {
		return err
	}

	inputs, err := gatherInputs(c, store)
	if err != nil {
		return err
	}

	eng := engine.New(self, req.QueryID, next, prev, source)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	outputPairs, err := eng.Run(ctx, c, inputs)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	if verbose {
		eng.Stats.Print(conn.Stats)
	}

	// spec.md §4.D step 4: each party reports Pair.Right, the
	// component it shares with its right neighbour.
	resp := orchestrator.Response{Outputs: make(map[circuit.Wire]bool, len(outputPairs))}
	for w, p := range outputPairs {
		resp.Outputs[w] = p.Right
	}
	return orchestrator.SendResponse(conn, resp)
}

// gatherInputs resolves every Input wire's circuit.InputRef against the
// bundles this node has already received from owners.
func gatherInputs(c *circuit.Circuit, store *share.Store) (map[circuit.Wire]rss.Pair, error) {
	inputs := make(map[circuit.Wire]rss.Pair, len(c.Inputs))
	for w, ref := range c.Inputs {
		bundle, ok := store.Get(ref.TableID)
		if !ok {
			return nil, fmt.Errorf("%w: no share bundle for table %d", errs.ErrSchemaMismatch, ref.TableID)
		}
		p, err := bundle.Lookup(ref.Row, ref.Column, ref.Bit)
		if err != nil {
			return nil, fmt.Errorf("input wire %s: %w", w, err)
		}
		inputs[w] = p
	}
	return inputs, nil
}
