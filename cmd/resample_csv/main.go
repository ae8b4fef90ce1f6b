// Command resample_csv runs the chart pipeline offline: it loads a
// price CSV, infers the time/price columns and writes the resampled
// canonical series as time,price rows.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"trading-backtester/services/dataset"
	"trading-backtester/services/inference"
	"trading-backtester/services/series"
)

func main() {
	in := flag.String("in", "", "Input CSV (any header; time column first)")
	out := flag.String("out", "", "Output CSV path (time,price)")
	granularity := flag.String("granularity", "daily", "Bucket width: daily, hourly, 15m or 5m")
	flag.Parse()

	if *in == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "-in and -out are required")
		os.Exit(2)
	}

	g, err := series.ParseGranularity(*granularity)
	if err != nil {
		fatal(err)
	}

	tbl, err := dataset.Load(*in)
	if err != nil {
		fatal(err)
	}

	res, err := inference.Infer(tbl)
	if err != nil {
		fatal(err)
	}
	fmt.Fprintf(os.Stderr, "detected time column %q, price column %q\n",
		res.TimeColumn, res.PriceColumn)

	resampled := series.Resample(res.Series, g)
	if len(resampled) == 0 {
		fatal(fmt.Errorf("no rows survived parsing in %s", *in))
	}

	of, err := os.Create(*out)
	if err != nil {
		fatal(err)
	}
	defer of.Close()

	w := bufio.NewWriter(of)
	fmt.Fprintln(w, "time,price")
	for _, p := range resampled {
		fmt.Fprintf(w, "%s,%.8f\n", p.Time.Format(time.RFC3339), p.Price)
	}
	if err := w.Flush(); err != nil {
		fatal(err)
	}

	fmt.Fprintf(os.Stderr, "wrote %d buckets to %s\n", len(resampled), *out)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
