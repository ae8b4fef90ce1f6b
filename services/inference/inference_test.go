package inference

import (
	"errors"
	"testing"
	"time"

	"trading-backtester/services/dataset"
)

func table(cols []string, rows ...[]string) *dataset.Table {
	return &dataset.Table{Columns: cols, Rows: rows}
}

func TestTimeColumnIsAlwaysFirst(t *testing.T) {
	tbl := table(
		[]string{"Whatever", "Close"},
		[]string{"2020-01-01", "100"},
	)
	res, err := Infer(tbl)
	if err != nil {
		t.Fatal(err)
	}
	if res.TimeColumn != "Whatever" {
		t.Errorf("time column = %q, want first column", res.TimeColumn)
	}
}

func TestCloseBeatsOtherNumericColumns(t *testing.T) {
	tbl := table(
		[]string{"Date", "Volume", "Close"},
		[]string{"2020-01-01", "12345", "100.5"},
		[]string{"2020-01-02", "23456", "101.5"},
	)
	res, err := Infer(tbl)
	if err != nil {
		t.Fatal(err)
	}
	if res.PriceColumn != "Close" {
		t.Errorf("price column = %q, want Close", res.PriceColumn)
	}
	if res.Series[0].Price != 100.5 {
		t.Errorf("price[0] = %v", res.Series[0].Price)
	}
}

func TestPriorityNameOrderWins(t *testing.T) {
	// "Close" outranks "price" even when "price" appears first in the file.
	tbl := table(
		[]string{"Date", "price", "Close"},
		[]string{"2020-01-01", "1", "2"},
	)
	res, err := Infer(tbl)
	if err != nil {
		t.Fatal(err)
	}
	if res.PriceColumn != "Close" {
		t.Errorf("price column = %q, want Close", res.PriceColumn)
	}
}

func TestFirstNumericColumnWhenNoNameMatches(t *testing.T) {
	tbl := table(
		[]string{"Date", "Ticker", "Value"},
		[]string{"2020-01-01", "OMX", "100"},
		[]string{"2020-01-02", "OMX", "101"},
	)
	res, err := Infer(tbl)
	if err != nil {
		t.Fatal(err)
	}
	if res.PriceColumn != "Value" {
		t.Errorf("price column = %q, want Value", res.PriceColumn)
	}
}

func TestCoercionFallbackHandlesDecimalCommas(t *testing.T) {
	tbl := table(
		[]string{"Date", "Kurs"},
		[]string{"2020-01-01", "1 234,5"},
		[]string{"2020-01-02", "1 240,0"},
	)
	res, err := Infer(tbl)
	if err != nil {
		t.Fatal(err)
	}
	if res.PriceColumn != "Kurs" {
		t.Errorf("price column = %q, want Kurs", res.PriceColumn)
	}
	if res.Series[0].Price != 1234.5 {
		t.Errorf("price[0] = %v, want 1234.5", res.Series[0].Price)
	}
}

func TestAllTextColumnsFail(t *testing.T) {
	tbl := table(
		[]string{"Date", "Name", "Note"},
		[]string{"2020-01-01", "omx", "hello"},
		[]string{"2020-01-02", "omx", "world"},
	)
	_, err := Infer(tbl)
	if !errors.Is(err, ErrNoPriceColumn) {
		t.Errorf("err = %v, want ErrNoPriceColumn", err)
	}
}

func TestBadTimestampsAndPricesAreDropped(t *testing.T) {
	tbl := table(
		[]string{"Date", "Close"},
		[]string{"not-a-date", "100"},
		[]string{"2020-01-02", "oops"},
		[]string{"2020-01-03", "103"},
	)
	res, err := Infer(tbl)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Series) != 1 {
		t.Fatalf("series length = %d, want 1", len(res.Series))
	}
	if res.Series[0].Price != 103 {
		t.Errorf("surviving price = %v", res.Series[0].Price)
	}
}

func TestSeriesIsSortedAscending(t *testing.T) {
	tbl := table(
		[]string{"Date", "Close"},
		[]string{"2020-01-03", "3"},
		[]string{"2020-01-01", "1"},
		[]string{"2020-01-02", "2"},
	)
	res, err := Infer(tbl)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(res.Series); i++ {
		if res.Series[i].Time.Before(res.Series[i-1].Time) {
			t.Fatalf("series not sorted: %+v", res.Series)
		}
	}
}

func TestEpochTimestampsParse(t *testing.T) {
	tbl := table(
		[]string{"ts", "Close"},
		[]string{"1577872800000", "100"}, // 2020-01-01 10:00:00 UTC, millis
	)
	res, err := Infer(tbl)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC)
	if !res.Series[0].Time.Equal(want) {
		t.Errorf("time = %v, want %v", res.Series[0].Time, want)
	}
}
