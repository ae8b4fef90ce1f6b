// Package series holds the canonical time/price series and its resampling.
package series

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Point is one observation of the canonical series.
type Point struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// Series is a time-ordered price series. Resample and the chart builder
// expect ascending timestamps; Sort establishes that.
type Series []Point

// Sort orders the series ascending by timestamp. The sort is stable so
// rows sharing a timestamp keep file order, which is what makes
// "last observation wins" deterministic downstream.
func (s Series) Sort() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Time.Before(s[j].Time) })
}

// Granularity is a fixed resampling bucket width.
type Granularity string

const (
	Daily  Granularity = "daily"
	Hourly Granularity = "hourly"
	Min15  Granularity = "15m"
	Min5   Granularity = "5m"
)

// Granularities lists the supported widths in UI order.
var Granularities = []Granularity{Daily, Hourly, Min15, Min5}

// Width returns the bucket width. Daily is a fixed 24h window aligned to
// the UTC epoch, matching midnight UTC for naive input timestamps.
func (g Granularity) Width() time.Duration {
	switch g {
	case Daily:
		return 24 * time.Hour
	case Hourly:
		return time.Hour
	case Min15:
		return 15 * time.Minute
	case Min5:
		return 5 * time.Minute
	}
	return 0
}

func (g Granularity) String() string { return string(g) }

// ParseGranularity accepts the four supported widths plus a few common
// spellings ("1d", "1h", "15min", "5min").
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "d", "1d":
		return Daily, nil
	case "hourly", "h", "1h":
		return Hourly, nil
	case "15m", "15min", "15t":
		return Min15, nil
	case "5m", "5min", "5t":
		return Min5, nil
	}
	return "", fmt.Errorf("unsupported granularity: %q", s)
}

// Resample buckets s into fixed-width, epoch-aligned half-open windows
// [start, start+width) and keeps the chronologically last price of each
// window. Windows with no observations produce no output point. The
// input must be sorted ascending; output is keyed by bucket start,
// ascending. Resampling an already-resampled series at the same width
// returns the same series.
func Resample(s Series, g Granularity) Series {
	width := g.Width()
	if width <= 0 || len(s) == 0 {
		return nil
	}

	buckets := make(map[int64]float64, len(s))
	order := make([]int64, 0, len(s))

	for _, p := range s {
		start := p.Time.UnixMilli() - mod(p.Time.UnixMilli(), width.Milliseconds())
		if _, ok := buckets[start]; !ok {
			order = append(order, start)
		}
		// input is chronological, so the last write wins the bucket
		buckets[start] = p.Price
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	out := make(Series, 0, len(order))
	for _, start := range order {
		out = append(out, Point{Time: time.UnixMilli(start).UTC(), Price: buckets[start]})
	}
	return out
}

// mod is a floor modulus so pre-epoch timestamps still align to the
// bucket start on their left.
func mod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
