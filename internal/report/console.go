package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/wonny/bullscan/internal/contracts"
)

// ConsoleReporter prints the ranked table
type ConsoleReporter struct {
	out         io.Writer
	showSkipped bool
}

// NewConsoleReporter writes to out. showSkipped lists excluded symbols under the table.
func NewConsoleReporter(out io.Writer, showSkipped bool) *ConsoleReporter {
	return &ConsoleReporter{out: out, showSkipped: showSkipped}
}

// Report implements contracts.Reporter
func (c *ConsoleReporter) Report(ctx context.Context, r *contracts.RankedReport) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\n📈 Adaptive Bullish Scanner | %s  (%s)\n\n", r.AsOf.Format("2006-01-02"), r.RunID)
	for _, e := range r.Entries {
		b.WriteString(FormatEntry(e))
		b.WriteString("\n")
	}

	if c.showSkipped && len(r.Skipped) > 0 {
		fmt.Fprintf(&b, "\nSkipped %d:\n", len(r.Skipped))
		for _, s := range r.Skipped {
			fmt.Fprintf(&b, "  %-6s %s\n", s.Symbol, s.Reason)
		}
	}

	_, err := io.WriteString(c.out, b.String())
	return err
}

// FormatEntry renders one ranked line:
//
//	1. AAPL   Score:  77.3  Price: $1,234.50  Regime: Calm
func FormatEntry(e contracts.RankedEntry) string {
	line := fmt.Sprintf("%d. %-6s Score: %5.1f  Price: $%s  Regime: %s",
		e.Rank, e.Symbol, e.Score, FormatPrice(e.Price), e.Regime)
	if e.LowConfidence {
		line += "  (low confidence)"
	}
	return line
}

// FormatPrice renders a price with thousands separators and two decimals
func FormatPrice(p float64) string {
	return humanize.FormatFloat("#,###.##", p)
}
