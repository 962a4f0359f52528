// Package aggregate groups typed rows into calendar-month buckets.
package aggregate

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Month is a calendar month key.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf truncates t to its calendar month.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Before reports whether m is chronologically earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// Point is one month of a series.
type Point struct {
	Month Month
	Value decimal.Decimal
}

// Series is a chronologically ordered month → value mapping.
type Series []Point

// Empty reports whether there is nothing to chart.
func (s Series) Empty() bool { return len(s) == 0 }

// Labels returns the month keys in order.
func (s Series) Labels() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.Month.String()
	}
	return out
}

// Floats returns the values as float64 for plotting.
func (s Series) Floats() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value.InexactFloat64()
	}
	return out
}

// Lookup returns the value for a month.
func (s Series) Lookup(m Month) (decimal.Decimal, bool) {
	for _, p := range s {
		if p.Month == m {
			return p.Value, true
		}
	}
	return decimal.Zero, false
}

// Reducer selects how a month bucket is reduced.
type Reducer int

const (
	// Count counts rows whose value is present, or every row when no value
	// column is given.
	Count Reducer = iota
	// Sum adds the present values.
	Sum
)

func (r Reducer) String() string {
	switch r {
	case Count:
		return "count"
	case Sum:
		return "sum"
	default:
		return fmt.Sprintf("reducer(%d)", int(r))
	}
}

// DateFunc selects the grouping date of a row.
type DateFunc[R any] func(R) sql.NullTime

// ValueFunc selects the reduced value of a row.
type ValueFunc[R any] func(R) decimal.NullDecimal

var one = decimal.NewFromInt(1)

// Aggregate groups rows by the calendar month of date and reduces value.
//
// Rows with an absent date fall into no bucket. A row with a present date
// always opens its month bucket; an absent value adds nothing to it.
func Aggregate[R any](rows []R, date DateFunc[R], value ValueFunc[R], reducer Reducer) Series {
	buckets := make(map[Month]decimal.Decimal)
	for _, row := range rows {
		d := date(row)
		if !d.Valid {
			continue
		}
		m := MonthOf(d.Time)
		acc := buckets[m]

		switch reducer {
		case Count:
			if value == nil || value(row).Valid {
				acc = acc.Add(one)
			}
		case Sum:
			if value != nil {
				if v := value(row); v.Valid {
					acc = acc.Add(v.Decimal)
				}
			}
		}
		buckets[m] = acc
	}

	series := make(Series, 0, len(buckets))
	for m, v := range buckets {
		series = append(series, Point{Month: m, Value: v})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Month.Before(series[j].Month)
	})
	return series
}
