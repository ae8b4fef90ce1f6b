// Package pipeline wires load, inference, resampling and chart building
// into one render call invoked by the UI host on every state change.
package pipeline

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trading-backtester/services/chart"
	"trading-backtester/services/dataset"
	"trading-backtester/services/inference"
	"trading-backtester/services/series"
)

// PreviewRows is how many resampled rows the preview table shows.
const PreviewRows = 20

// SeriesSource is an alternative to the CSV path, e.g. the ClickHouse
// bar source.
type SeriesSource interface {
	LoadSeries(ctx context.Context, symbol string, from, to time.Time) (series.Series, error)
}

// Request describes one render. CSVPath is the default source; setting
// Symbol switches to the configured SeriesSource instead.
type Request struct {
	CSVPath     string
	Granularity series.Granularity

	Symbol string
	From   time.Time
	To     time.Time
}

// Result is everything the UI needs for one render.
type Result struct {
	RenderID    string        `json:"render_id"`
	TimeColumn  string        `json:"time_column"`
	PriceColumn string        `json:"price_column"`
	Buckets     int           `json:"buckets"`
	Chart       *chart.Model  `json:"chart"`
	Preview     series.Series `json:"preview"`
}

type Pipeline struct {
	store  *dataset.Store
	bars   SeriesSource // nil unless a bar source is configured
	logger *zap.Logger
}

func New(store *dataset.Store, bars SeriesSource, logger *zap.Logger) *Pipeline {
	return &Pipeline{store: store, bars: bars, logger: logger}
}

// Render runs the full pipeline. It is pure with respect to the host:
// the only state it touches is the dataset cache.
func (p *Pipeline) Render(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	renderID := uuid.New().String()

	log := p.logger.With(zap.String("render_id", renderID))
	log.Info("render started",
		zap.String("csv_path", req.CSVPath),
		zap.String("granularity", req.Granularity.String()),
		zap.String("symbol", req.Symbol),
	)

	canonical, timeCol, priceCol, err := p.loadCanonical(ctx, req)
	if err != nil {
		log.Warn("render failed", zap.Error(err))
		return nil, err
	}

	resampled := series.Resample(canonical, req.Granularity)

	preview := resampled
	if len(preview) > PreviewRows {
		preview = preview[:PreviewRows]
	}

	log.Info("render completed",
		zap.String("time_column", timeCol),
		zap.String("price_column", priceCol),
		zap.Int("raw_rows", len(canonical)),
		zap.Int("buckets", len(resampled)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Result{
		RenderID:    renderID,
		TimeColumn:  timeCol,
		PriceColumn: priceCol,
		Buckets:     len(resampled),
		Chart:       chart.Build(resampled),
		Preview:     preview,
	}, nil
}

// FlushCache drops every memoized table. Exposed so the host can force
// re-reads without restarting.
func (p *Pipeline) FlushCache() { p.store.Flush() }

func (p *Pipeline) loadCanonical(ctx context.Context, req Request) (series.Series, string, string, error) {
	if req.Symbol != "" && p.bars != nil {
		s, err := p.bars.LoadSeries(ctx, req.Symbol, req.From, req.To)
		if err != nil {
			return nil, "", "", err
		}
		return s, "ts", "close", nil
	}

	tbl, err := p.store.Load(req.CSVPath)
	if err != nil {
		return nil, "", "", err
	}
	res, err := inference.Infer(tbl)
	if err != nil {
		return nil, "", "", err
	}
	return res.Series, res.TimeColumn, res.PriceColumn, nil
}

// APIError is the wire shape of a user-visible failure.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

var (
	errFileNotFound  = APIError{Code: "FILE_NOT_FOUND", Message: "Input file does not exist"}
	errNoPriceColumn = APIError{Code: "NO_PRICE_COLUMN", Message: "Could not find a numeric price column. Check your CSV columns."}
	errInternal      = APIError{Code: "INTERNAL", Message: "Render failed"}
)

// Classify maps a render error to its API error and HTTP status. The
// two terminal user-visible failures get dedicated codes; anything else
// is internal.
func Classify(err error) (APIError, int) {
	switch {
	case errors.Is(err, dataset.ErrFileNotFound):
		e := errFileNotFound
		e.Details = err.Error()
		return e, http.StatusNotFound
	case errors.Is(err, inference.ErrNoPriceColumn):
		e := errNoPriceColumn
		e.Details = err.Error()
		return e, http.StatusUnprocessableEntity
	default:
		e := errInternal
		e.Details = err.Error()
		return e, http.StatusInternalServerError
	}
}
