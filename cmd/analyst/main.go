//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Command analyst compiles a SQL statement against a table schema,
// submits it to the three computing nodes, and prints the
// reconstructed result (spec.md §4.F, §4.H).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rss3p/mpcsql/orchestrator"
	"github.com/rss3p/mpcsql/schema"
	"github.com/rss3p/mpcsql/sql"
)

func main() {
	statement := flag.String("query", "", `SQL statement, e.g. "SELECT PARITY(salary) FROM employees WHERE dept = 1"`)
	schemaFile := flag.String("schema", "", "JSON file describing the queried table's schema.Schema")
	nodesFlag := flag.String("nodes", "", "Node query-addr endpoints, comma separated, party 0,1,2 in order")
	deadline := flag.Duration("deadline", 30*time.Second, "Query deadline")
	flag.Parse()

	if *statement == "" || *schemaFile == "" || *nodesFlag == "" {
		fmt.Fprintf(os.Stderr, "analyst: -query, -schema and -nodes are required\n")
		os.Exit(1)
	}

	s, err := readSchema(*schemaFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analyst: %s\n", err)
		os.Exit(1)
	}

	nodeAddrs, err := parseNodes(*nodesFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analyst: %s\n", err)
		os.Exit(1)
	}

	q, err := sql.ParseQuery(*statement)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analyst: %s\n", err)
		os.Exit(1)
	}

	plan, err := sql.Lower(q, s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analyst: %s\n", err)
		os.Exit(1)
	}

	circ, err := sql.Build(plan, s.TableID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analyst: %s\n", err)
		os.Exit(1)
	}

	client, err := orchestrator.Dial(nodeAddrs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analyst: %s\n", err)
		os.Exit(1)
	}
	defer client.Close()

	queryID := uint64(time.Now().UnixNano())
	outputs, err := client.SubmitQuery(queryID, circ, *deadline)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analyst: %s\n", err)
		os.Exit(1)
	}

	orchestrator.Report(os.Stdout, outputs)
}

func readSchema(path string) (schema.Schema, error) {
	var s schema.Schema
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("invalid schema: %w", err)
	}
	return s, nil
}

func parseNodes(spec string) ([3]string, error) {
	var addrs [3]string
	parts := strings.Split(spec, ",")
	if len(parts) != 3 {
		return addrs, fmt.Errorf("-nodes must list exactly 3 addresses, got %d", len(parts))
	}
	for i, p := range parts {
		addrs[i] = strings.TrimSpace(p)
	}
	return addrs, nil
}
