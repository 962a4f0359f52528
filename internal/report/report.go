// Package report assembles the per-client report from normalized tables.
//
// A Report is an ordered list of blocks (headings, paragraphs, charts)
// plus the totals they were derived from. It has no notion of a file
// format; see package document for encoding.
package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// BlockKind enumerates the block types a report can contain.
type BlockKind int

const (
	BlockHeading BlockKind = iota
	BlockParagraph
	BlockChart
)

func (k BlockKind) String() string {
	switch k {
	case BlockHeading:
		return "heading"
	case BlockParagraph:
		return "paragraph"
	case BlockChart:
		return "chart"
	default:
		return "unknown"
	}
}

// Block is one element of the report body.
// Level is set for headings (0 = title), Image for charts.
type Block struct {
	Kind  BlockKind
	Text  string
	Level int
	Image []byte
}

// Totals are the headline figures of a report.
type Totals struct {
	Sales  decimal.Decimal
	Profit decimal.Decimal
	Hours  decimal.Decimal
}

// Report is the synthesized document for one client.
type Report struct {
	ClientName string
	Blocks     []Block
	Totals     Totals

	// Degraded lists sub-tables whose fetch was exhausted and which
	// were reported as empty.
	Degraded []string
}

// Charts returns the chart blocks in order.
func (r *Report) Charts() []Block {
	var out []Block
	for _, b := range r.Blocks {
		if b.Kind == BlockChart {
			out = append(out, b)
		}
	}
	return out
}

var fileNameReplacer = strings.NewReplacer("/", "_", "\\", "_", "\x00", "")

// FileName returns "<client>_Report<ext>" with path separators removed.
func (r *Report) FileName(ext string) string {
	name := strings.TrimSpace(fileNameReplacer.Replace(r.ClientName))
	if name == "" || name == "." || name == ".." {
		name = "Client"
	}
	return name + "_Report" + ext
}

func formatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func paragraphs(t Totals) []Block {
	return []Block{
		{Kind: BlockParagraph, Text: "Total Sales: " + formatMoney(t.Sales)},
		{Kind: BlockParagraph, Text: "Total Profit: " + formatMoney(t.Profit)},
		{Kind: BlockParagraph, Text: fmt.Sprintf("Total Hours Worked: %s hours", t.Hours.StringFixed(2))},
	}
}
