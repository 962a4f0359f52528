// Package records turns the raw string grids fetched from a client sheet into
// typed tables with a fixed column schema.
//
// # Schemas
//
// Three record kinds are supported, each read from its own sub-table:
//
//	Listings (PRODUCTS)     uploaded_date, price, profit_fraction
//	Orders   (ORDERS)       purchase_date, price, profit_usd, total_sales, total_profit
//	Time     (HOURSWORKED)  date, hours
//
// Row 0 of a grid is the header. Source columns are located by header name
// once per grid; a required header that is missing is a structural mismatch
// and fails the whole table with a *MissingColumnError.
//
// # Coercion
//
// Cells are coerced on a best-effort basis. A cell that cannot be parsed
// becomes an absent value (an invalid sql.NullTime or decimal.NullDecimal);
// it never produces an error and never removes its row.
//
//	listings, err := records.NormalizeListings(grid)
//	if errors.Is(err, records.ErrSchemaMismatch) {
//	    // header is missing a required column
//	}
package records
