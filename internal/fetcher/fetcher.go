package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"crypto-screener/internal/storage"
)

// MarketChartFetcher retrieves a close-only historical price series for a
// provider coin id.
type MarketChartFetcher interface {
	FetchMarketChart(ctx context.Context, coinID string, days int) ([]storage.PriceBar, error)
}

// KlinesFetcher retrieves full OHLCV candles for an exchange symbol.
type KlinesFetcher interface {
	FetchKlines(ctx context.Context, symbol, interval string, start, end *time.Time, limit int) ([]storage.PriceBar, error)
}

// CoinDetailsFetcher retrieves descriptive/fundamental attributes for a
// provider coin id.
type CoinDetailsFetcher interface {
	FetchCoinDetails(ctx context.Context, coinID string) (CoinDetails, error)
}

// CoinDetails is a point-in-time fundamentals payload.
type CoinDetails struct {
	Symbol            string
	Name              string
	Description       *string
	Categories        []string
	HomepageURL       *string
	SocialLinks       map[string]string
	MarketCapUSD      decimal.NullDecimal
	CirculatingSupply decimal.NullDecimal
	TotalSupply       decimal.NullDecimal
	MaxSupply         decimal.NullDecimal
	LastUpdated       *time.Time
}

// SocialLinksJSON renders the social link map as a jsonb payload.
func (d CoinDetails) SocialLinksJSON() (json.RawMessage, error) {
	if len(d.SocialLinks) == 0 {
		return json.RawMessage("{}"), nil
	}
	payload, err := json.Marshal(d.SocialLinks)
	if err != nil {
		return nil, fmt.Errorf("marshal social links: %w", err)
	}
	return payload, nil
}

type apiError struct {
	Message string `json:"msg"`
	Error   string `json:"error"`
	Status  struct {
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
}

func parseHTTPError(provider string, status int, payload []byte) error {
	var apiErr apiError
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Status.ErrorMessage != "" {
			return fmt.Errorf("%s api error (%d): %s", provider, status, apiErr.Status.ErrorMessage)
		}
		if apiErr.Error != "" {
			return fmt.Errorf("%s api error (%d): %s", provider, status, apiErr.Error)
		}
		if apiErr.Message != "" {
			return fmt.Errorf("%s api error (%d): %s", provider, status, apiErr.Message)
		}
	}
	if len(payload) > 0 {
		return fmt.Errorf("%s api error (%d): %s", provider, status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("%s api error (%d)", provider, status)
}

func nullDecimalFromNumber(n *json.Number) (decimal.NullDecimal, error) {
	if n == nil || n.String() == "" {
		return decimal.NullDecimal{}, nil
	}
	parsed, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: parsed, Valid: true}, nil
}
