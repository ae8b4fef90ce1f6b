// Package clickhouse provides an alternative series source reading
// close prices from a ClickHouse candle table.
package clickhouse

import (
	"context"
	"fmt"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"trading-backtester/services/config"
	"trading-backtester/services/series"
)

// Source reads (ts, close) pairs over the native protocol.
type Source struct {
	conn   driver.Conn
	table  string
	logger *zap.Logger
}

func NewSource(cfg config.ClickHouseConfig, logger *zap.Logger) (*Source, error) {
	conn, err := ch.Open(&ch.Options{
		Addr: []string{cfg.Addr},
		Auth: ch.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Settings: ch.Settings{
			"max_execution_time": uint64(60),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	return &Source{conn: conn, table: cfg.Table, logger: logger}, nil
}

// LoadSeries fetches the close-price series for a symbol in [from, to),
// ordered by timestamp. Prices travel as decimals and are flattened to
// float64 for the chart pipeline.
func (s *Source) LoadSeries(ctx context.Context, symbol string, from, to time.Time) (series.Series, error) {
	query := fmt.Sprintf(`
		SELECT ts, close
		FROM %s
		WHERE symbol = ? AND ts >= ? AND ts < ?
		ORDER BY ts
	`, s.table)

	rows, err := s.conn.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("query bars for %s: %w", symbol, err)
	}
	defer rows.Close()

	var out series.Series
	for rows.Next() {
		var (
			ts    time.Time
			price decimal.Decimal
		)
		if err := rows.Scan(&ts, &price); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, series.Point{Time: ts.UTC(), Price: price.InexactFloat64()})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bars: %w", err)
	}

	s.logger.Info("clickhouse series loaded",
		zap.String("symbol", symbol),
		zap.Int("rows", len(out)),
	)
	return out, nil
}

func (s *Source) Close() error { return s.conn.Close() }
