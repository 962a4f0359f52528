package records

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// RawGrid is a header row followed by data rows, exactly as fetched.
type RawGrid [][]string

// DataRows returns the number of rows after the header.
func (g RawGrid) DataRows() int {
	if len(g) < 2 {
		return 0
	}
	return len(g) - 1
}

// Kind identifies one of the record kinds a source carries.
type Kind string

const (
	KindListings Kind = "listings"
	KindOrders   Kind = "orders"
	KindTime     Kind = "time"
)

// Kinds lists the record kinds in the order they are fetched.
var Kinds = []Kind{KindListings, KindOrders, KindTime}

// Remote sub-table names
const (
	TableProducts    = "PRODUCTS"
	TableOrders      = "ORDERS"
	TableHoursWorked = "HOURSWORKED"
)

// TableName returns the remote sub-table the kind is read from.
func (k Kind) TableName() string {
	switch k {
	case KindListings:
		return TableProducts
	case KindOrders:
		return TableOrders
	case KindTime:
		return TableHoursWorked
	default:
		return ""
	}
}

// Listing is one normalized row of the PRODUCTS sub-table.
type Listing struct {
	UploadedDate   sql.NullTime
	Price          decimal.NullDecimal
	ProfitFraction decimal.NullDecimal
}

// ListingsTable holds normalized product listings.
type ListingsTable struct {
	Rows []Listing
}

// Columns returns the target column names of the listings schema.
func (ListingsTable) Columns() []string { return listingsSchema.targets() }

// Len returns the number of rows.
func (t ListingsTable) Len() int { return len(t.Rows) }

// Order is one normalized row of the ORDERS sub-table.
type Order struct {
	PurchaseDate sql.NullTime
	Price        decimal.NullDecimal
	ProfitUSD    decimal.NullDecimal
	TotalSales   decimal.NullDecimal
	TotalProfit  decimal.NullDecimal
}

// OrdersTable holds normalized sales orders.
type OrdersTable struct {
	Rows []Order
}

// Columns returns the target column names of the orders schema.
func (OrdersTable) Columns() []string { return ordersSchema.targets() }

// Len returns the number of rows.
func (t OrdersTable) Len() int { return len(t.Rows) }

// TotalSales sums the present total_sales values. Absent values are skipped.
func (t OrdersTable) TotalSales() decimal.Decimal {
	total := decimal.Zero
	for _, o := range t.Rows {
		if o.TotalSales.Valid {
			total = total.Add(o.TotalSales.Decimal)
		}
	}
	return total
}

// TotalProfit sums the present total_profit values.
func (t OrdersTable) TotalProfit() decimal.Decimal {
	total := decimal.Zero
	for _, o := range t.Rows {
		if o.TotalProfit.Valid {
			total = total.Add(o.TotalProfit.Decimal)
		}
	}
	return total
}

// TimeEntry is one normalized row of the HOURSWORKED sub-table.
type TimeEntry struct {
	Date  sql.NullTime
	Hours decimal.NullDecimal
}

// TimeTable holds normalized time-tracking entries.
type TimeTable struct {
	Rows []TimeEntry
}

// Columns returns the target column names of the time schema.
func (TimeTable) Columns() []string { return timeSchema.targets() }

// Len returns the number of rows.
func (t TimeTable) Len() int { return len(t.Rows) }

// TotalHours sums the present hours values.
func (t TimeTable) TotalHours() decimal.Decimal {
	total := decimal.Zero
	for _, e := range t.Rows {
		if e.Hours.Valid {
			total = total.Add(e.Hours.Decimal)
		}
	}
	return total
}

// Tables groups the three typed tables of one source.
type Tables struct {
	Listings ListingsTable
	Orders   OrdersTable
	Time     TimeTable
}
