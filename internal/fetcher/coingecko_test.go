package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCoinGeckoMarketChartMissingCoinID(t *testing.T) {
	cg := NewCoinGecko(CoinGeckoOptions{}, noopLogger())
	if _, err := cg.FetchMarketChart(context.Background(), "", 7); err == nil {
		t.Fatal("missing coin id should return an error")
	}
	if _, err := cg.FetchMarketChart(context.Background(), "bitcoin", 0); err == nil {
		t.Fatal("non-positive days should return an error")
	}
}

func TestCoinGeckoMarketChartHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"status":{"error_message":"rate limited"}}`))
	}))
	defer srv.Close()

	cg := NewCoinGecko(CoinGeckoOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	if _, err := cg.FetchMarketChart(context.Background(), "bitcoin", 7); err == nil {
		t.Fatal("HTTP 429 should return an error")
	}
}

func TestCoinGeckoMarketChartSuccess(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-cg-demo-api-key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"prices": [[1700000000000, 35000.5], [1700086400000, 35500.25]],
			"total_volumes": [[1700000000000, 1200000]]
		}`))
	}))
	defer srv.Close()

	cg := NewCoinGecko(CoinGeckoOptions{
		BaseURL:    srv.URL,
		APIKey:     "demo-key",
		VsCurrency: "usd",
		Timeout:    time.Second,
	}, noopLogger())

	bars, err := cg.FetchMarketChart(context.Background(), "bitcoin", 2)
	if err != nil {
		t.Fatalf("successful response should not error: %v", err)
	}
	if gotKey != "demo-key" {
		t.Fatal("API key header should be forwarded")
	}
	if len(bars) != 2 {
		t.Fatalf("want 2 bars, got %d", len(bars))
	}
	if bars[0].Close.String() != "35000.5" {
		t.Fatalf("unexpected close: %s", bars[0].Close)
	}
	if bars[0].Open.Valid || bars[0].High.Valid || bars[0].Low.Valid {
		t.Fatal("close-only source must leave open/high/low null")
	}
	if !bars[0].Volume.Valid {
		t.Fatal("aligned total_volumes entry should fill volume")
	}
	if bars[1].Volume.Valid {
		t.Fatal("bar without aligned volume should stay null")
	}
	if !bars[0].Time.Equal(time.UnixMilli(1700000000000).UTC()) {
		t.Fatalf("unexpected timestamp: %s", bars[0].Time)
	}
}

func TestCoinGeckoCoinDetailsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"symbol": "btc",
			"name": "Bitcoin",
			"description": {"en": "Digital gold."},
			"categories": ["Layer 1"],
			"links": {
				"homepage": ["https://bitcoin.org"],
				"twitter_screen_name": "bitcoin",
				"subreddit_url": "https://reddit.com/r/bitcoin"
			},
			"market_data": {
				"market_cap": {"usd": 680000000000},
				"circulating_supply": 19600000,
				"total_supply": 21000000,
				"max_supply": 21000000,
				"last_updated": "2024-01-15T12:00:00Z"
			}
		}`))
	}))
	defer srv.Close()

	cg := NewCoinGecko(CoinGeckoOptions{BaseURL: srv.URL, VsCurrency: "usd", Timeout: time.Second}, noopLogger())
	details, err := cg.FetchCoinDetails(context.Background(), "bitcoin")
	if err != nil {
		t.Fatalf("successful response should not error: %v", err)
	}
	if details.Symbol != "BTC" || details.Name != "Bitcoin" {
		t.Fatalf("unexpected identity: %s %s", details.Symbol, details.Name)
	}
	if details.Description == nil || *details.Description != "Digital gold." {
		t.Fatal("description should be populated")
	}
	if !details.MarketCapUSD.Valid || details.MarketCapUSD.Decimal.String() != "680000000000" {
		t.Fatalf("unexpected market cap: %+v", details.MarketCapUSD)
	}
	if details.SocialLinks["twitter"] != "bitcoin" {
		t.Fatal("twitter handle should land in social links")
	}
	if _, ok := details.SocialLinks["facebook"]; ok {
		t.Fatal("absent social handles should be omitted")
	}
	if details.LastUpdated == nil || !details.LastUpdated.Equal(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)) {
		t.Fatal("last_updated should be parsed")
	}
}

func TestCoinGeckoCoinDetailsNullSupplies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"symbol": "eth",
			"name": "Ethereum",
			"market_data": {
				"market_cap": {"usd": 280000000000},
				"circulating_supply": 120000000,
				"total_supply": null,
				"max_supply": null
			}
		}`))
	}))
	defer srv.Close()

	cg := NewCoinGecko(CoinGeckoOptions{BaseURL: srv.URL, VsCurrency: "usd", Timeout: time.Second}, noopLogger())
	details, err := cg.FetchCoinDetails(context.Background(), "ethereum")
	if err != nil {
		t.Fatalf("successful response should not error: %v", err)
	}
	if details.MaxSupply.Valid || details.TotalSupply.Valid {
		t.Fatal("null supplies must stay null")
	}
	if !details.CirculatingSupply.Valid {
		t.Fatal("present supply should be parsed")
	}
}
