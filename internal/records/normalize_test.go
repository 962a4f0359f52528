package records

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingsGrid() RawGrid {
	return RawGrid{
		{"Title", "Date Uploaded:", "eBay Price", "Profit Per Product Present", "Notes"},
		{"Lamp", "01/02/2024", "£12.50", "45%", "x"},
		{"Chair", "not-a-date", "", "n/a", ""},
		{"Desk", "15/02/2024"},
	}
}

func TestNormalizeListings(t *testing.T) {
	table, err := NormalizeListings(listingsGrid())
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	first := table.Rows[0]
	assert.True(t, first.UploadedDate.Valid)
	assert.True(t, decimal.RequireFromString("12.50").Equal(first.Price.Decimal))
	assert.True(t, decimal.RequireFromString("0.45").Equal(first.ProfitFraction.Decimal))

	second := table.Rows[1]
	assert.False(t, second.UploadedDate.Valid)
	assert.False(t, second.Price.Valid)
	assert.False(t, second.ProfitFraction.Valid)

	// short row keeps its slot, missing cells are absent
	third := table.Rows[2]
	assert.True(t, third.UploadedDate.Valid)
	assert.False(t, third.Price.Valid)
}

func TestNormalizeOrders(t *testing.T) {
	grid := RawGrid{
		{"Date Of Purchase", "eBay Price", "Profit Per Sale USD", "Total Sales", "Total Profits"},
		{"03/01/2024", "$20.00", "$5.00", "$20.00", "$5.00"},
		{"17/01/2024", "$30.00", "$7.50", "$30.00", "$7.50"},
		{"", "", "", "", ""},
	}

	table, err := NormalizeOrders(grid)
	require.NoError(t, err)
	assert.Equal(t, grid.DataRows(), table.Len())
	assert.True(t, decimal.NewFromInt(50).Equal(table.TotalSales()))
	assert.True(t, decimal.RequireFromString("12.5").Equal(table.TotalProfit()))
}

func TestNormalizeTime(t *testing.T) {
	grid := RawGrid{
		{"Date:", "Hours:"},
		{"01/03/2024", "7.5"},
		{"02/03/2024", "8"},
		{"03/03/2024", "sick"},
	}

	table, err := NormalizeTime(grid)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
	assert.False(t, table.Rows[2].Hours.Valid)
	assert.True(t, decimal.RequireFromString("15.5").Equal(table.TotalHours()))
}

func TestNormalizeEmptyGrid(t *testing.T) {
	grids := map[string]RawGrid{
		"nil":               nil,
		"header only":       {{"Date:", "Hours:"}},
		"wrong header only": {{"something", "else"}},
	}

	for name, grid := range grids {
		t.Run(name, func(t *testing.T) {
			listings, err := NormalizeListings(grid)
			require.NoError(t, err)
			assert.Zero(t, listings.Len())
			assert.Equal(t, []string{"uploaded_date", "price", "profit_fraction"}, listings.Columns())

			orders, err := NormalizeOrders(grid)
			require.NoError(t, err)
			assert.Zero(t, orders.Len())
			assert.Len(t, orders.Columns(), 5)

			hours, err := NormalizeTime(grid)
			require.NoError(t, err)
			assert.Zero(t, hours.Len())
			assert.Equal(t, []string{"date", "hours"}, hours.Columns())
		})
	}
}

func TestNormalizeMissingColumn(t *testing.T) {
	grid := RawGrid{
		{"Date Of Purchase", "eBay Price", "Total Sales", "Total Profits"},
		{"03/01/2024", "$20.00", "$20.00", "$5.00"},
	}

	_, err := NormalizeOrders(grid)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))

	var missing *MissingColumnError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "Profit Per Sale USD", missing.Column)
	assert.Equal(t, TableOrders, missing.Table)
}

func TestNormalizeHeaderWhitespace(t *testing.T) {
	grid := RawGrid{
		{" Date: ", "Hours: "},
		{"01/03/2024", "2"},
	}
	table, err := NormalizeTime(grid)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestTablesLoad(t *testing.T) {
	var tables Tables
	require.NoError(t, tables.Load(KindListings, listingsGrid()))
	assert.Equal(t, 3, tables.Listings.Len())

	err := tables.Load(KindTime, RawGrid{{"Day", "Hours:"}, {"1", "2"}})
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	assert.Error(t, tables.Load(Kind("bogus"), nil))
}

func TestKindTableName(t *testing.T) {
	assert.Equal(t, "PRODUCTS", KindListings.TableName())
	assert.Equal(t, "ORDERS", KindOrders.TableName())
	assert.Equal(t, "HOURSWORKED", KindTime.TableName())
	assert.Empty(t, Kind("x").TableName())
}
