//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package orchestrator

import (
	"fmt"
	"io"
	"sort"

	"github.com/markkurossi/tabulate"

	"github.com/rss3p/mpcsql/circuit"
)

// Report renders a reconstructed query result the way engine.Stats
// renders a gate-count profile: one row per output wire, in ascending
// wire order so repeated runs of the same circuit print identically.
func Report(w io.Writer, outputs map[circuit.Wire]bool) {
	wires := make([]circuit.Wire, 0, len(outputs))
	for wire := range outputs {
		wires = append(wires, wire)
	}
	sort.Slice(wires, func(i, j int) bool { return wires[i] < wires[j] })

	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Wire").SetAlign(tabulate.ML)
	tab.Header("Value").SetAlign(tabulate.MR)

	for _, wire := range wires {
		row := tab.Row()
		row.Column(wire.String())
		bit := 0
		if outputs[wire] {
			bit = 1
		}
		row.Column(fmt.Sprintf("%d", bit))
	}

	tab.Print(w)
}
