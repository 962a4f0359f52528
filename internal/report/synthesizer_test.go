package report

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientreport/internal/aggregate"
	"clientreport/internal/chart"
	"clientreport/internal/records"
)

// recordingRenderer returns a fixed buffer for non-empty series and keeps
// every call for inspection.
type recordingRenderer struct {
	calls []renderCall
	err   error
}

type renderCall struct {
	series aggregate.Series
	opts   chart.Options
}

func (r *recordingRenderer) Render(series aggregate.Series, opts chart.Options) ([]byte, error) {
	r.calls = append(r.calls, renderCall{series: series, opts: opts})
	if r.err != nil {
		return nil, r.err
	}
	if series.Empty() {
		return nil, nil
	}
	return []byte("png:" + opts.Title), nil
}

func date(y int, m time.Month, d int) sql.NullTime {
	return sql.NullTime{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

func num(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func sampleTables() (records.ListingsTable, records.OrdersTable, records.TimeTable) {
	listings := records.ListingsTable{Rows: []records.Listing{
		{UploadedDate: date(2024, 1, 5), Price: num("10")},
		{UploadedDate: date(2024, 1, 20), Price: num("12")},
		{UploadedDate: date(2024, 2, 1)},
	}}
	orders := records.OrdersTable{Rows: []records.Order{
		{PurchaseDate: date(2024, 1, 3), Price: num("20"), ProfitUSD: num("5"), TotalSales: num("100"), TotalProfit: num("30")},
		{PurchaseDate: date(2024, 2, 3), ProfitUSD: num("2.5"), TotalSales: num("50.5")},
	}}
	hours := records.TimeTable{Rows: []records.TimeEntry{
		{Date: date(2024, 1, 2), Hours: num("3.5")},
		{Date: date(2024, 1, 9), Hours: num("4")},
	}}
	return listings, orders, hours
}

func TestSynthesizeFullReport(t *testing.T) {
	renderer := &recordingRenderer{}
	listings, orders, hours := sampleTables()

	rep, err := NewSynthesizer(renderer).Synthesize("Acme", listings, orders, hours)
	require.NoError(t, err)

	texts := make([]string, 0, len(rep.Blocks))
	for _, b := range rep.Blocks {
		texts = append(texts, b.Text)
	}
	assert.Equal(t, []string{
		"Report for Acme",
		"Total Sales: $150.50",
		"Total Profit: $30.00",
		"Total Hours Worked: 7.50 hours",
		"Graphs",
		TitleListings,
		TitleSales,
		TitleProfit,
		TitleHours,
	}, texts)

	assert.Equal(t, BlockHeading, rep.Blocks[0].Kind)
	assert.Equal(t, 0, rep.Blocks[0].Level)
	assert.Equal(t, BlockHeading, rep.Blocks[4].Kind)
	assert.Equal(t, 1, rep.Blocks[4].Level)
	assert.Len(t, rep.Charts(), 4)
	assert.Equal(t, []byte("png:"+TitleSales), rep.Charts()[1].Image)

	require.Len(t, renderer.calls, 4)

	listingSeries := renderer.calls[0].series
	require.Len(t, listingSeries, 2)
	assert.True(t, listingSeries[0].Value.Equal(decimal.NewFromInt(2)))
	assert.True(t, listingSeries[1].Value.Equal(decimal.NewFromInt(1)))

	// February's order has no price, so it counts as zero sales.
	salesSeries := renderer.calls[1].series
	require.Len(t, salesSeries, 2)
	assert.True(t, salesSeries[0].Value.Equal(decimal.NewFromInt(1)))
	assert.True(t, salesSeries[1].Value.IsZero())

	profitSeries := renderer.calls[2].series
	assert.True(t, profitSeries[1].Value.Equal(decimal.RequireFromString("2.5")))

	assert.Equal(t, "Profit ($)", renderer.calls[2].opts.YLabel)
	assert.Equal(t, "Hours", renderer.calls[3].opts.YLabel)
	for _, c := range renderer.calls {
		assert.Equal(t, chart.Bar, c.opts.Kind)
		assert.Equal(t, "Month", c.opts.XLabel)
	}
}

func TestSynthesizeEmptyTables(t *testing.T) {
	renderer := &recordingRenderer{}

	rep, err := NewSynthesizer(renderer).Synthesize("Empty Co", records.ListingsTable{}, records.OrdersTable{}, records.TimeTable{})
	require.NoError(t, err)

	assert.Len(t, rep.Blocks, 5)
	assert.Empty(t, rep.Charts())
	assert.Equal(t, "Total Sales: $0.00", rep.Blocks[1].Text)
	assert.Equal(t, "Total Profit: $0.00", rep.Blocks[2].Text)
	assert.Equal(t, "Total Hours Worked: 0.00 hours", rep.Blocks[3].Text)
	assert.True(t, rep.Totals.Sales.IsZero())
}

func TestSynthesizeOmitsChartsWithoutDates(t *testing.T) {
	renderer := &recordingRenderer{}
	orders := records.OrdersTable{Rows: []records.Order{
		{Price: num("9"), TotalSales: num("9")},
	}}

	rep, err := NewSynthesizer(renderer).Synthesize("NoDates", records.ListingsTable{}, orders, records.TimeTable{})
	require.NoError(t, err)

	assert.Empty(t, rep.Charts())
	assert.Equal(t, "Total Sales: $9.00", rep.Blocks[1].Text)
}

func TestSynthesizeRenderFailure(t *testing.T) {
	renderer := &recordingRenderer{err: errors.New("font missing")}
	listings, orders, hours := sampleTables()

	rep, err := NewSynthesizer(renderer).Synthesize("Acme", listings, orders, hours)
	require.Error(t, err)
	assert.Nil(t, rep)
	assert.Contains(t, err.Error(), TitleListings)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		client string
		want   string
	}{
		{client: "Acme", want: "Acme_Report.xlsx"},
		{client: "Jane Doe", want: "Jane Doe_Report.xlsx"},
		{client: "a/b\\c", want: "a_b_c_Report.xlsx"},
		{client: "  ", want: "Client_Report.xlsx"},
		{client: "..", want: "Client_Report.xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.client, func(t *testing.T) {
			r := &Report{ClientName: tt.client}
			assert.Equal(t, tt.want, r.FileName(".xlsx"))
		})
	}
}
