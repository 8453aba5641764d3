package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"crypto-screener/internal/storage"
)

const binanceKlinesPath = "/api/v3/klines"

// BinanceOptions parameterise the Binance fetcher.
type BinanceOptions struct {
	BaseURL   string
	Interval  string
	Timeout   time.Duration
	UserAgent string
}

// Binance fetches OHLCV candles from the Binance REST API.
type Binance struct {
	opts    BinanceOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewBinance constructs a Binance fetcher.
func NewBinance(opts BinanceOptions, logger zerolog.Logger) *Binance {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.binance.com"
	}

	if opts.Interval == "" {
		opts.Interval = "1d"
	}

	return &Binance{
		opts:    opts,
		logger:  logger.With().Str("component", "binance_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// FetchKlines retrieves full OHLCV candles for a symbol. Kline rows are
// positional arrays: open time, open, high, low, close, volume, close
// time, and further fields this client ignores.
func (b *Binance) FetchKlines(ctx context.Context, symbol, interval string, start, end *time.Time, limit int) ([]storage.PriceBar, error) {
	if symbol == "" {
		return nil, errors.New("symbol is required")
	}
	if interval == "" {
		interval = b.opts.Interval
	}

	query := url.Values{}
	query.Set("symbol", strings.ToUpper(symbol))
	query.Set("interval", interval)
	if start != nil {
		query.Set("startTime", strconv.FormatInt(start.UnixMilli(), 10))
	}
	if end != nil {
		query.Set("endTime", strconv.FormatInt(end.UnixMilli(), 10))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	endpoint := b.baseURL + binanceKlinesPath + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(b.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "crypto-screener/1.0")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseHTTPError("binance", resp.StatusCode, payload)
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("decode klines: %w", err)
	}

	bars := make([]storage.PriceBar, 0, len(rows))
	for _, raw := range rows {
		bar, err := parseKline(raw)
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}

	b.logger.Info().Str("symbol", symbol).Str("interval", interval).Int("bars", len(bars)).Msg("klines fetched")
	return bars, nil
}

func parseKline(raw json.RawMessage) (storage.PriceBar, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return storage.PriceBar{}, fmt.Errorf("decode kline row: %w", err)
	}
	if len(fields) < 6 {
		return storage.PriceBar{}, fmt.Errorf("kline row has %d fields, want at least 6", len(fields))
	}

	var openTimeMS int64
	if err := json.Unmarshal(fields[0], &openTimeMS); err != nil {
		return storage.PriceBar{}, fmt.Errorf("parse kline open time: %w", err)
	}

	parse := func(idx int, name string) (decimal.Decimal, error) {
		var str string
		if err := json.Unmarshal(fields[idx], &str); err != nil {
			return decimal.Decimal{}, fmt.Errorf("parse kline %s: %w", name, err)
		}
		value, err := decimal.NewFromString(str)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("parse kline %s: %w", name, err)
		}
		return value, nil
	}

	open, err := parse(1, "open")
	if err != nil {
		return storage.PriceBar{}, err
	}
	high, err := parse(2, "high")
	if err != nil {
		return storage.PriceBar{}, err
	}
	low, err := parse(3, "low")
	if err != nil {
		return storage.PriceBar{}, err
	}
	closeValue, err := parse(4, "close")
	if err != nil {
		return storage.PriceBar{}, err
	}
	volume, err := parse(5, "volume")
	if err != nil {
		return storage.PriceBar{}, err
	}

	return storage.PriceBar{
		Time:   time.UnixMilli(openTimeMS).UTC(),
		Open:   decimal.NullDecimal{Decimal: open, Valid: true},
		High:   decimal.NullDecimal{Decimal: high, Valid: true},
		Low:    decimal.NullDecimal{Decimal: low, Valid: true},
		Close:  closeValue,
		Volume: decimal.NullDecimal{Decimal: volume, Valid: true},
	}, nil
}

var _ KlinesFetcher = (*Binance)(nil)
