// Package inference detects the time and price columns of a raw table
// and produces the cleaned canonical series.
package inference

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"trading-backtester/services/dataset"
	"trading-backtester/services/series"
)

// ErrNoPriceColumn is returned when every price detection strategy has
// been exhausted.
var ErrNoPriceColumn = errors.New("no numeric price column found")

// Result reports the detected columns and the canonical series built
// from them. Rows survive only when both the timestamp parsed and the
// price coerced.
type Result struct {
	TimeColumn  string
	PriceColumn string
	Series      series.Series
}

// Common price column names, checked in this exact order with
// case-sensitive matching.
var priceNamePriority = []string{"Close", "close", "PRICE", "Price", "price", "Last", "last"}

// A priceStrategy nominates a price column index, or reports no match.
// Strategies are tried in declaration order.
type priceStrategy struct {
	name string
	pick func(tbl *dataset.Table, timeCol int) (int, bool)
}

var priceStrategies = []priceStrategy{
	{"priority-name", pickByPriorityName},
	{"numeric-scan", pickFirstNumeric},
	{"coerce-scan", pickFirstCoercible},
}

// Infer selects the time column (always the first column in file order),
// picks the price column via the strategy chain, and returns the sorted,
// coerced canonical series.
func Infer(tbl *dataset.Table) (*Result, error) {
	if len(tbl.Columns) == 0 {
		return nil, ErrNoPriceColumn
	}
	timeCol := 0

	priceCol := -1
	for _, st := range priceStrategies {
		if idx, ok := st.pick(tbl, timeCol); ok {
			priceCol = idx
			break
		}
	}
	if priceCol < 0 {
		return nil, ErrNoPriceColumn
	}

	s := make(series.Series, 0, len(tbl.Rows))
	for i := range tbl.Rows {
		ts, ok := parseTime(tbl.Cell(i, timeCol))
		if !ok {
			continue
		}
		price, ok := coerceFloat(tbl.Cell(i, priceCol))
		if !ok {
			continue
		}
		s = append(s, series.Point{Time: ts, Price: price})
	}
	s.Sort()

	return &Result{
		TimeColumn:  tbl.Columns[timeCol],
		PriceColumn: tbl.Columns[priceCol],
		Series:      s,
	}, nil
}

func pickByPriorityName(tbl *dataset.Table, timeCol int) (int, bool) {
	for _, name := range priceNamePriority {
		for idx, col := range tbl.Columns {
			if idx != timeCol && col == name {
				return idx, true
			}
		}
	}
	return 0, false
}

// pickFirstNumeric takes the first non-time column whose every non-empty
// cell already parses as a float.
func pickFirstNumeric(tbl *dataset.Table, timeCol int) (int, bool) {
	for idx := range tbl.Columns {
		if idx == timeCol {
			continue
		}
		seen := false
		numeric := true
		for row := range tbl.Rows {
			v := tbl.Cell(row, idx)
			if v == "" {
				continue
			}
			seen = true
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				numeric = false
				break
			}
		}
		if seen && numeric {
			return idx, true
		}
	}
	return 0, false
}

// pickFirstCoercible retries with lenient coercion: a column qualifies
// as soon as one of its cells coerces to a number.
func pickFirstCoercible(tbl *dataset.Table, timeCol int) (int, bool) {
	for idx := range tbl.Columns {
		if idx == timeCol {
			continue
		}
		for row := range tbl.Rows {
			if _, ok := coerceFloat(tbl.Cell(row, idx)); ok {
				return idx, true
			}
		}
	}
	return 0, false
}

// coerceFloat parses a price cell leniently: quotes and inner spaces are
// stripped, and a decimal comma is accepted when no dot is present.
func coerceFloat(v string) (float64, bool) {
	v = strings.Trim(strings.TrimSpace(v), `"`)
	v = strings.ReplaceAll(v, " ", "")
	if v == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f, true
	}
	if strings.Count(v, ",") == 1 && !strings.Contains(v, ".") {
		if f, err := strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"02-01-2006",
	"01/02/2006",
}

// parseTime tries the known layouts, then epoch seconds/milliseconds.
// Naive timestamps are taken as UTC so bucket alignment is stable.
func parseTime(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), true
		}
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		// heuristics: 13 digits is millis, 10 is seconds
		switch {
		case n >= 1e12:
			return time.UnixMilli(n).UTC(), true
		case n >= 1e9:
			return time.Unix(n, 0).UTC(), true
		}
	}
	return time.Time{}, false
}
