package testutil

// Header rows of the three client sub-tables.
var (
	ListingsHeader = []string{"Date Uploaded:", "Item", "eBay Price", "Profit Per Product Present"}
	OrdersHeader   = []string{"Date Of Purchase", "Item", "eBay Price", "Profit Per Sale USD", "Total Sales", "Total Profits"}
	HoursHeader    = []string{"Date:", "Hours:", "Notes"}
)

// ListingsGrid returns a PRODUCTS grid with listings in January and
// February 2024 and one undated row.
func ListingsGrid() [][]string {
	return [][]string{
		ListingsHeader,
		{"05/01/2024", "Lamp", "$25.00", "20%"},
		{"17/01/2024", "Desk", "$120.50", "15%"},
		{"3/2/2024", "Chair", "45", "10%"},
		{"", "Rug", "$80", "12%"},
	}
}

// OrdersGrid returns an ORDERS grid totalling $290.50 in sales and
// $61.00 in profit.
func OrdersGrid() [][]string {
	return [][]string{
		OrdersHeader,
		{"10/01/2024", "Lamp", "$25.00", "$5.00", "$25.00", "$5.00"},
		{"20/02/2024", "Desk", "$120.50", "$18.00", "$120.50", "$18.00"},
		{"21/02/2024", "Chair", "", "$8.00", "$45.00", "$8.00"},
		{"02/03/2024", "Shelf", "$100", "$30", "$100.00", "$30.00"},
	}
}

// HoursGrid returns an HOURSWORKED grid totalling 12.5 hours.
func HoursGrid() [][]string {
	return [][]string{
		HoursHeader,
		{"01/01/2024", "4", "setup"},
		{"15/01/2024", "2.5", ""},
		{"01/02/2024", "6", "listing"},
		{"02/02/2024", "n/a", "sick"},
	}
}
