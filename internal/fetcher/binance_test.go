package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestBinanceKlinesMissingSymbol(t *testing.T) {
	b := NewBinance(BinanceOptions{}, noopLogger())
	if _, err := b.FetchKlines(context.Background(), "", "1d", nil, nil, 0); err == nil {
		t.Fatal("missing symbol should return an error")
	}
}

func TestBinanceKlinesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	}))
	defer srv.Close()

	b := NewBinance(BinanceOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	if _, err := b.FetchKlines(context.Background(), "NOPEUSDT", "1d", nil, nil, 0); err == nil {
		t.Fatal("HTTP 400 should return an error")
	}
}

func TestBinanceKlinesSuccess(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			[1700000000000, "35000.10", "35500.00", "34800.00", "35250.90", "123.456", 1700086399999, "0", 0, "0", "0", "0"],
			[1700086400000, "35250.90", "36000.00", "35100.00", "35900.00", "98.765", 1700172799999, "0", 0, "0", "0", "0"]
		]`))
	}))
	defer srv.Close()

	start := time.UnixMilli(1700000000000).UTC()
	b := NewBinance(BinanceOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	bars, err := b.FetchKlines(context.Background(), "btcusdt", "1d", &start, nil, 500)
	if err != nil {
		t.Fatalf("successful response should not error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("want 2 bars, got %d", len(bars))
	}
	if bars[0].Open.Decimal.String() != "35000.1" || bars[0].Close.String() != "35250.9" {
		t.Fatalf("unexpected OHLC parse: %+v", bars[0])
	}
	if !bars[0].High.Valid || !bars[0].Low.Valid || !bars[0].Volume.Valid {
		t.Fatal("kline source must fill the full OHLCV set")
	}
	if !bars[0].Time.Equal(start) {
		t.Fatalf("unexpected open time: %s", bars[0].Time)
	}
	for _, want := range []string{"symbol=BTCUSDT", "interval=1d", "startTime=1700000000000", "limit=500"} {
		if !containsParam(gotQuery, want) {
			t.Fatalf("query %q should contain %q", gotQuery, want)
		}
	}
}

func TestBinanceKlinesMalformedRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[1700000000000, "35000.10"]]`))
	}))
	defer srv.Close()

	b := NewBinance(BinanceOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	if _, err := b.FetchKlines(context.Background(), "BTCUSDT", "1d", nil, nil, 0); err == nil {
		t.Fatal("short kline row should return an error")
	}
}

func containsParam(query, param string) bool {
	for _, part := range strings.Split(query, "&") {
		if part == param {
			return true
		}
	}
	return false
}
