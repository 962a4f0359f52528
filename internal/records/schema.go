package records

import "strings"

// Source header names as they appear in client sheets.
const (
	colDateUploaded   = "Date Uploaded:"
	colEbayPrice      = "eBay Price"
	colProfitPercent  = "Profit Per Product Present"
	colDateOfPurchase = "Date Of Purchase"
	colProfitPerSale  = "Profit Per Sale USD"
	colTotalSales     = "Total Sales"
	colTotalProfits   = "Total Profits"
	colDate           = "Date:"
	colHours          = "Hours:"
)

// ColumnSpec maps one source header to a typed target column.
type ColumnSpec struct {
	Source string
	Target string
}

// Schema is the declared column mapping of one record kind.
type Schema struct {
	Table   string
	Columns []ColumnSpec
}

var listingsSchema = Schema{
	Table: TableProducts,
	Columns: []ColumnSpec{
		{Source: colDateUploaded, Target: "uploaded_date"},
		{Source: colEbayPrice, Target: "price"},
		{Source: colProfitPercent, Target: "profit_fraction"},
	},
}

var ordersSchema = Schema{
	Table: TableOrders,
	Columns: []ColumnSpec{
		{Source: colDateOfPurchase, Target: "purchase_date"},
		{Source: colEbayPrice, Target: "price"},
		{Source: colProfitPerSale, Target: "profit_usd"},
		{Source: colTotalSales, Target: "total_sales"},
		{Source: colTotalProfits, Target: "total_profit"},
	},
}

var timeSchema = Schema{
	Table: TableHoursWorked,
	Columns: []ColumnSpec{
		{Source: colDate, Target: "date"},
		{Source: colHours, Target: "hours"},
	},
}

// SchemaFor returns the declared schema of a record kind.
func SchemaFor(kind Kind) (Schema, bool) {
	switch kind {
	case KindListings:
		return listingsSchema, true
	case KindOrders:
		return ordersSchema, true
	case KindTime:
		return timeSchema, true
	}
	return Schema{}, false
}

func (s Schema) targets() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Target
	}
	return out
}

// binding is a schema resolved against one header row.
type binding struct {
	index map[string]int
}

// bind resolves every declared source column against the header. It returns
// the data rows to normalize, or nil rows when the grid has no data.
func (s Schema) bind(grid RawGrid) (binding, [][]string, error) {
	if len(grid) < 2 {
		return binding{}, nil, nil
	}

	positions := make(map[string]int, len(grid[0]))
	for i, name := range grid[0] {
		name = strings.TrimSpace(name)
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	b := binding{index: make(map[string]int, len(s.Columns))}
	for _, col := range s.Columns {
		pos, ok := positions[col.Source]
		if !ok {
			return binding{}, nil, &MissingColumnError{Table: s.Table, Column: col.Source}
		}
		b.index[col.Source] = pos
	}
	return b, grid[1:], nil
}

// cell returns the raw value of a bound column, or "" for a short row.
func (b binding) cell(row []string, source string) string {
	pos := b.index[source]
	if pos >= len(row) {
		return ""
	}
	return row[pos]
}
