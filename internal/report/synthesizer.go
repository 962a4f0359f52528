package report

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"clientreport/internal/aggregate"
	"clientreport/internal/chart"
	"clientreport/internal/records"
)

// Chart titles, in report order.
const (
	TitleListings = "Products Uploaded per Month"
	TitleSales    = "Sales per Month"
	TitleProfit   = "Profit per Month"
	TitleHours    = "Hours Worked per Month"
)

// Synthesizer builds reports, rendering charts through a chart.Renderer.
type Synthesizer struct {
	renderer chart.Renderer
}

// NewSynthesizer returns a Synthesizer using renderer.
func NewSynthesizer(renderer chart.Renderer) *Synthesizer {
	return &Synthesizer{renderer: renderer}
}

type plannedChart struct {
	series aggregate.Series
	opts   chart.Options
}

// Synthesize computes totals and the four monthly charts for one client.
// Charts with an empty series are omitted. A render failure aborts the
// report.
func (s *Synthesizer) Synthesize(clientName string, listings records.ListingsTable, orders records.OrdersTable, hours records.TimeTable) (*Report, error) {
	totals := Totals{
		Sales:  orders.TotalSales(),
		Profit: orders.TotalProfit(),
		Hours:  hours.TotalHours(),
	}

	rep := &Report{ClientName: clientName, Totals: totals}
	rep.Blocks = append(rep.Blocks, Block{Kind: BlockHeading, Text: "Report for " + clientName, Level: 0})
	rep.Blocks = append(rep.Blocks, paragraphs(totals)...)
	rep.Blocks = append(rep.Blocks, Block{Kind: BlockHeading, Text: "Graphs", Level: 1})

	for _, pc := range plan(listings, orders, hours) {
		buf, err := s.renderer.Render(pc.series, pc.opts)
		if err != nil {
			return nil, fmt.Errorf("chart %q: %w", pc.opts.Title, err)
		}
		if buf == nil {
			continue
		}
		rep.Blocks = append(rep.Blocks, Block{Kind: BlockChart, Text: pc.opts.Title, Image: buf})
	}
	return rep, nil
}

func plan(listings records.ListingsTable, orders records.OrdersTable, hours records.TimeTable) []plannedChart {
	listingDate := func(l records.Listing) sql.NullTime { return l.UploadedDate }
	orderDate := func(o records.Order) sql.NullTime { return o.PurchaseDate }
	entryDate := func(e records.TimeEntry) sql.NullTime { return e.Date }

	return []plannedChart{
		{
			series: aggregate.Aggregate(listings.Rows, listingDate, nil, aggregate.Count),
			opts:   chart.Options{Title: TitleListings, XLabel: "Month", YLabel: "Number of Products", Kind: chart.Bar},
		},
		{
			series: aggregate.Aggregate(orders.Rows, orderDate, func(o records.Order) decimal.NullDecimal { return o.Price }, aggregate.Count),
			opts:   chart.Options{Title: TitleSales, XLabel: "Month", YLabel: "Number of Sales", Kind: chart.Bar},
		},
		{
			series: aggregate.Aggregate(orders.Rows, orderDate, func(o records.Order) decimal.NullDecimal { return o.ProfitUSD }, aggregate.Sum),
			opts:   chart.Options{Title: TitleProfit, XLabel: "Month", YLabel: "Profit ($)", Kind: chart.Bar},
		},
		{
			series: aggregate.Aggregate(hours.Rows, entryDate, func(e records.TimeEntry) decimal.NullDecimal { return e.Hours }, aggregate.Sum),
			opts:   chart.Options{Title: TitleHours, XLabel: "Month", YLabel: "Hours", Kind: chart.Bar},
		},
	}
}
