package records

import "fmt"

// NormalizeListings converts a PRODUCTS grid into a ListingsTable.
func NormalizeListings(grid RawGrid) (ListingsTable, error) {
	b, rows, err := listingsSchema.bind(grid)
	if err != nil || rows == nil {
		return ListingsTable{}, err
	}

	out := make([]Listing, 0, len(rows))
	for _, row := range rows {
		out = append(out, Listing{
			UploadedDate:   ParseDate(b.cell(row, colDateUploaded)),
			Price:          ParseCurrency(b.cell(row, colEbayPrice)),
			ProfitFraction: ParsePercent(b.cell(row, colProfitPercent)),
		})
	}
	return ListingsTable{Rows: out}, nil
}

// NormalizeOrders converts an ORDERS grid into an OrdersTable.
func NormalizeOrders(grid RawGrid) (OrdersTable, error) {
	b, rows, err := ordersSchema.bind(grid)
	if err != nil || rows == nil {
		return OrdersTable{}, err
	}

	out := make([]Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, Order{
			PurchaseDate: ParseDate(b.cell(row, colDateOfPurchase)),
			Price:        ParseCurrency(b.cell(row, colEbayPrice)),
			ProfitUSD:    ParseCurrency(b.cell(row, colProfitPerSale)),
			TotalSales:   ParseCurrency(b.cell(row, colTotalSales)),
			TotalProfit:  ParseCurrency(b.cell(row, colTotalProfits)),
		})
	}
	return OrdersTable{Rows: out}, nil
}

// NormalizeTime converts an HOURSWORKED grid into a TimeTable.
func NormalizeTime(grid RawGrid) (TimeTable, error) {
	b, rows, err := timeSchema.bind(grid)
	if err != nil || rows == nil {
		return TimeTable{}, err
	}

	out := make([]TimeEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, TimeEntry{
			Date:  ParseDate(b.cell(row, colDate)),
			Hours: ParseNumber(b.cell(row, colHours)),
		})
	}
	return TimeTable{Rows: out}, nil
}

// Load normalizes grid as the given kind and stores the result in t.
func (t *Tables) Load(kind Kind, grid RawGrid) error {
	var err error
	switch kind {
	case KindListings:
		t.Listings, err = NormalizeListings(grid)
	case KindOrders:
		t.Orders, err = NormalizeOrders(grid)
	case KindTime:
		t.Time, err = NormalizeTime(grid)
	default:
		return fmt.Errorf("unknown record kind %q", kind)
	}
	return err
}
