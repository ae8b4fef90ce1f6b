// Package chart assembles the two-panel figure model rendered by the UI.
package chart

import (
	"time"

	"trading-backtester/services/series"
)

const (
	// Fixed layout contract: overall height and margins.
	FigureHeight = 700

	pricePanelHeight     = 0.7
	indicatorPanelHeight = 0.3
	verticalSpacing      = 0.08
)

// Margin is the figure margin in pixels.
type Margin struct {
	Left   int `json:"l"`
	Right  int `json:"r"`
	Top    int `json:"t"`
	Bottom int `json:"b"`
}

// Panel is one stacked subplot. Kind is "bar" or "line"; Height is the
// panel's share of the vertical space.
type Panel struct {
	Name   string      `json:"name"`
	Kind   string      `json:"kind"`
	Height float64     `json:"height"`
	X      []time.Time `json:"x"`
	Y      []float64   `json:"y"`
}

// RangeButton is a quick-range shortcut counted backward from the latest
// point.
type RangeButton struct {
	Count    int    `json:"count,omitempty"`
	Label    string `json:"label"`
	Step     string `json:"step"`
	StepMode string `json:"stepmode,omitempty"`
}

// XAxis is the shared time axis carried by the bottom panel.
type XAxis struct {
	RangeSlider  bool          `json:"rangeslider"`
	RangeButtons []RangeButton `json:"rangebuttons"`
}

// Model is the renderable two-panel figure. Both panels share the x
// axis; panning one pans the other.
type Model struct {
	Height          int     `json:"height"`
	Margin          Margin  `json:"margin"`
	VerticalSpacing float64 `json:"vertical_spacing"`
	Panels          []Panel `json:"panels"`
	XAxis           XAxis   `json:"xaxis"`
}

// Build constructs the figure for a resampled series: price bars on top
// (70%), a flat zero line below (30%) reserved for a future indicator,
// and the range slider plus 1M/6M/1Y/5Y/All shortcuts on the shared
// bottom axis.
func Build(resampled series.Series) *Model {
	x := make([]time.Time, len(resampled))
	prices := make([]float64, len(resampled))
	zeros := make([]float64, len(resampled))
	for i, p := range resampled {
		x[i] = p.Time
		prices[i] = p.Price
	}

	return &Model{
		Height:          FigureHeight,
		Margin:          Margin{Left: 20, Right: 20, Top: 40, Bottom: 20},
		VerticalSpacing: verticalSpacing,
		Panels: []Panel{
			{Name: "Price", Kind: "bar", Height: pricePanelHeight, X: x, Y: prices},
			{Name: "Indicator placeholder", Kind: "line", Height: indicatorPanelHeight, X: x, Y: zeros},
		},
		XAxis: XAxis{
			RangeSlider: true,
			RangeButtons: []RangeButton{
				{Count: 1, Label: "1M", Step: "month", StepMode: "backward"},
				{Count: 6, Label: "6M", Step: "month", StepMode: "backward"},
				{Count: 1, Label: "1Y", Step: "year", StepMode: "backward"},
				{Count: 5, Label: "5Y", Step: "year", StepMode: "backward"},
				{Label: "All", Step: "all"},
			},
		},
	}
}
