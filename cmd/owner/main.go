//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Command owner reads a plaintext CSV table, splits it into RSS-2-of-3
// party bundles, and delivers them to the three computing nodes
// (spec.md §4.G, §6 SendTableShares).
package main

import (
	"crypto/rand"
	"encoding/csv"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rss3p/mpcsql/p2p"
	"github.com/rss3p/mpcsql/schema"
	"github.com/rss3p/mpcsql/share"
)

func main() {
	ownerID := flag.String("owner-id", "", "Data owner id")
	ownerName := flag.String("owner-name", "", "Data owner display name")
	tableName := flag.String("table", "", "Table name")
	tableID := flag.Uint64("table-id", 0, "Table id")
	columnsFlag := flag.String("columns", "", "Column spec, comma separated name:type:bits (type is bool or uint)")
	csvFile := flag.String("csv", "", "CSV file of table rows, one column per -columns entry, no header row")
	nodesFlag := flag.String("nodes", "", "Node share-addr endpoints, comma separated, party 0,1,2 in order")
	flag.Parse()

	if *ownerID == "" || *tableName == "" || *columnsFlag == "" || *csvFile == "" || *nodesFlag == "" {
		fmt.Fprintf(os.Stderr, "owner: -owner-id, -table, -columns, -csv and -nodes are required\n")
		os.Exit(1)
	}

	columns, err := parseColumns(*columnsFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "owner: %s\n", err)
		os.Exit(1)
	}

	nodeAddrs, err := parseNodes(*nodesFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "owner: %s\n", err)
		os.Exit(1)
	}

	values, err := readCSV(*csvFile, len(columns))
	if err != nil {
		fmt.Fprintf(os.Stderr, "owner: %s\n", err)
		os.Exit(1)
	}

	s := schema.Schema{
		TableName: *tableName,
		TableID:   *tableID,
		RowCount:  len(values),
		Columns:   columns,
	}

	rows := make([][]bool, len(values))
	for i, row := range values {
		bits, err := share.FlattenRow(s, row)
		if err != nil {
			fmt.Fprintf(os.Stderr, "owner: row %d: %s\n", i, err)
			os.Exit(1)
		}
		rows[i] = bits
	}

	owner := share.Owner{OwnerID: *ownerID, OwnerName: *ownerName}
	bundles, err := owner.Split(s, rows, rand.Reader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "owner: %s\n", err)
		os.Exit(1)
	}

	submittedAt := time.Now()
	for party := 0; party < 3; party++ {
		if err := deliver(nodeAddrs[party], owner, bundles[party], submittedAt); err != nil {
			fmt.Fprintf(os.Stderr, "owner: deliver to party %d at %s: %s\n", party, nodeAddrs[party], err)
			os.Exit(1)
		}
		fmt.Printf("delivered table %d to party %d at %s\n", s.TableID, party, nodeAddrs[party])
	}
}

func deliver(addr string, owner share.Owner, bundle *share.Bundle, submittedAt time.Time) error {
	nc, err := net.Dial("tcp", addr)
	if err != nil {
		return err
	}
	defer nc.Close()

	conn := p2p.NewConn(nc)
	accepted, path, err := share.SendTableShares(conn, owner, bundle, submittedAt)
	if err != nil {
		return err
	}
	if !accepted {
		return fmt.Errorf("rejected")
	}
	_ = path
	return nil
}

func parseColumns(spec string) ([]schema.Column, error) {
	var columns []schema.Column
	for _, entry := range strings.Split(spec, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("malformed column spec %q, want name:type:bits", entry)
		}
		bits, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, fmt.Errorf("column %q: bad bit width: %w", parts[0], err)
		}
		var t schema.TypeHint
		switch parts[1] {
		case "bool":
			t = schema.Boolean()
		case "uint":
			t = schema.UnsignedInt(bits)
		default:
			return nil, fmt.Errorf("column %q: unsupported type %q", parts[0], parts[1])
		}
		columns = append(columns, schema.Column{Name: parts[0], Type: t})
	}
	return columns, nil
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

func readCSV(path string, numColumns int) ([][]uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	values := make([][]uint64, len(records))
	for i, record := range records {
		if len(record) != numColumns {
			return nil, fmt.Errorf("row %d: want %d columns, got %d", i, numColumns, len(record))
		}
		row := make([]uint64, numColumns)
		for c, field := range record {
			v, err := strconv.ParseUint(strings.TrimSpace(field), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i, c, err)
			}
			row[c] = v
		}
		values[i] = row
	}
	return values, nil
}
