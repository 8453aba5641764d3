package storage

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Source tags identify where an asset's data originates.
const (
	SourceCoinGecko = "coingecko"
	SourceBinance   = "binance"
)

// Asset maps an external symbol or provider id to an internal handle.
type Asset struct {
	ID        int64
	Symbol    string
	Name      string
	Source    string
	CreatedAt time.Time
}

// PriceBar is one persisted OHLCV observation. Close is always present;
// open/high/low/volume are null when the source provides close-only data.
type PriceBar struct {
	Time   time.Time
	Open   decimal.NullDecimal
	High   decimal.NullDecimal
	Low    decimal.NullDecimal
	Close  decimal.Decimal
	Volume decimal.NullDecimal
}

// IndicatorRow is one long-format indicator observation. Value is nil when
// the indicator is undefined at that timestamp.
type IndicatorRow struct {
	Time  time.Time
	Name  string
	Value *float64
}

// FundamentalSnapshot holds point-in-time descriptive data for an asset;
// the latest fetch wins.
type FundamentalSnapshot struct {
	AssetID           int64
	Description       *string
	Categories        []string
	HomepageURL       *string
	SocialLinks       json.RawMessage
	MarketCapUSD      decimal.NullDecimal
	CirculatingSupply decimal.NullDecimal
	TotalSupply       decimal.NullDecimal
	MaxSupply         decimal.NullDecimal
	LastUpdatedAPI    *time.Time
	FetchedAt         time.Time
}
