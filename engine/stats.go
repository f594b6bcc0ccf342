//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package engine

import (
	"fmt"
	"os"
	"time"

	"github.com/markkurossi/tabulate"

	"github.com/rss3p/mpcsql/p2p"
)

// FileSize renders a byte count in the teacher's decimal-unit style
// (circuit/garbler.go's FileSize), reused here for engine transfer
// reports instead of OT transfer reports.
type FileSize uint64

func (s FileSize) String() string {
	switch {
	case s > 1000*1000*1000*1000:
		return fmt.Sprintf("%dTB", s/(1000*1000*1000*1000))
	case s > 1000*1000*1000:
		return fmt.Sprintf("%dGB", s/(1000*1000*1000))
	case s > 1000*1000:
		return fmt.Sprintf("%dMB", s/(1000*1000))
	case s > 1000:
		return fmt.Sprintf("%dkB", s/1000)
	default:
		return fmt.Sprintf("%dB", s)
	}
}

// Stats records one query run's gate counts and wall-clock duration,
// grounded on the teacher's circuit/timing.go sample/report shape,
// re-pointed at AND-gate and byte counts instead of OT-transfer
// counts (the teacher's protocol has no AND gates; ours has no OT).
type Stats struct {
	Start    time.Time
	End      time.Time
	NumXor   int
	NumAnd   int
	NumNot   int
	NumInput int
}

// NewStats starts a fresh sample.
func NewStats() *Stats {
	return &Stats{Start: time.Now()}
}

// Done marks the run's end time.
func (s *Stats) Done() {
	s.End = time.Now()
}

// Print renders a profiling report to standard output.
func (s *Stats) Print(stats p2p.IOStats) {
	sent := stats.Sent.Load()
	received := stats.Recvd.Load()

	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Gate").SetAlign(tabulate.ML)
	tab.Header("Count").SetAlign(tabulate.MR)

	row := tab.Row()
	row.Column("Input")
	row.Column(fmt.Sprintf("%d", s.NumInput))

	row = tab.Row()
	row.Column("Xor")
	row.Column(fmt.Sprintf("%d", s.NumXor))

	row = tab.Row()
	row.Column("Not")
	row.Column(fmt.Sprintf("%d", s.NumNot))

	row = tab.Row()
	row.Column("And")
	row.Column(fmt.Sprintf("%d", s.NumAnd))

	row = tab.Row()
	row.Column("Duration").SetFormat(tabulate.FmtBold)
	row.Column(s.End.Sub(s.Start).String()).SetFormat(tabulate.FmtBold)

	row = tab.Row()
	row.Column("Xfer").SetFormat(tabulate.FmtItalic)
	row.Column(FileSize(sent + received).String()).SetFormat(tabulate.FmtItalic)

	tab.Print(os.Stdout)
}
