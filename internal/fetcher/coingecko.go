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

const coingeckoAPIKeyHeader = "x-cg-demo-api-key"

// CoinGeckoOptions parameterise the CoinGecko fetcher.
type CoinGeckoOptions struct {
	BaseURL    string
	APIKey     string
	VsCurrency string
	Timeout    time.Duration
	UserAgent  string
}

// CoinGecko fetches market charts and coin details from the CoinGecko API.
type CoinGecko struct {
	opts    CoinGeckoOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewCoinGecko constructs a CoinGecko fetcher.
func NewCoinGecko(opts CoinGeckoOptions, logger zerolog.Logger) *CoinGecko {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.coingecko.com/api/v3"
	}

	if opts.VsCurrency == "" {
		opts.VsCurrency = "usd"
	}

	return &CoinGecko{
		opts:    opts,
		logger:  logger.With().Str("component", "coingecko_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

type marketChartResponse struct {
	Prices       [][]json.Number `json:"prices"`
	TotalVolumes [][]json.Number `json:"total_volumes"`
}

// FetchMarketChart retrieves the historical close-only price series for a
// coin. Open/high/low stay null; volume is filled when the API returns an
// aligned total_volumes series.
func (c *CoinGecko) FetchMarketChart(ctx context.Context, coinID string, days int) ([]storage.PriceBar, error) {
	if coinID == "" {
		return nil, errors.New("coin id is required")
	}
	if days <= 0 {
		return nil, errors.New("days must be greater than zero")
	}

	endpoint := fmt.Sprintf("%s/coins/%s/market_chart", c.baseURL, url.PathEscape(coinID))
	query := url.Values{}
	query.Set("vs_currency", c.opts.VsCurrency)
	query.Set("days", strconv.Itoa(days))

	payload, err := c.get(ctx, endpoint+"?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var chart marketChartResponse
	if err := json.Unmarshal(payload, &chart); err != nil {
		return nil, fmt.Errorf("decode market chart: %w", err)
	}
	if len(chart.Prices) == 0 {
		return nil, errors.New("market chart returned no prices")
	}

	volumes := make(map[int64]decimal.Decimal, len(chart.TotalVolumes))
	for _, pair := range chart.TotalVolumes {
		if len(pair) != 2 {
			continue
		}
		ms, err := pair[0].Int64()
		if err != nil {
			continue
		}
		vol, err := decimal.NewFromString(pair[1].String())
		if err != nil {
			continue
		}
		volumes[ms] = vol
	}

	bars := make([]storage.PriceBar, 0, len(chart.Prices))
	for _, pair := range chart.Prices {
		if len(pair) != 2 {
			return nil, fmt.Errorf("malformed price pair: %v", pair)
		}
		ms, err := pair[0].Int64()
		if err != nil {
			return nil, fmt.Errorf("parse price timestamp: %w", err)
		}
		price, err := decimal.NewFromString(pair[1].String())
		if err != nil {
			return nil, fmt.Errorf("parse price: %w", err)
		}

		bar := storage.PriceBar{
			Time:  time.UnixMilli(ms).UTC(),
			Close: price,
		}
		if vol, ok := volumes[ms]; ok {
			bar.Volume = decimal.NullDecimal{Decimal: vol, Valid: true}
		}
		bars = append(bars, bar)
	}

	c.logger.Info().Str("coin_id", coinID).Int("days", days).Int("bars", len(bars)).Msg("market chart fetched")
	return bars, nil
}

type coinDetailsResponse struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Description struct {
		EN string `json:"en"`
	} `json:"description"`
	Categories []string `json:"categories"`
	Links      struct {
		Homepage          []string `json:"homepage"`
		TwitterScreenName string   `json:"twitter_screen_name"`
		FacebookUsername  string   `json:"facebook_username"`
		TelegramChannelID string   `json:"telegram_channel_identifier"`
		SubredditURL      string   `json:"subreddit_url"`
	} `json:"links"`
	MarketData struct {
		MarketCap         map[string]json.Number `json:"market_cap"`
		CirculatingSupply *json.Number           `json:"circulating_supply"`
		TotalSupply       *json.Number           `json:"total_supply"`
		MaxSupply         *json.Number           `json:"max_supply"`
		LastUpdated       string                 `json:"last_updated"`
	} `json:"market_data"`
}

// FetchCoinDetails retrieves descriptive and fundamental attributes for a
// coin.
func (c *CoinGecko) FetchCoinDetails(ctx context.Context, coinID string) (CoinDetails, error) {
	if coinID == "" {
		return CoinDetails{}, errors.New("coin id is required")
	}

	endpoint := fmt.Sprintf("%s/coins/%s", c.baseURL, url.PathEscape(coinID))
	query := url.Values{}
	query.Set("localization", "false")
	query.Set("tickers", "false")
	query.Set("market_data", "true")
	query.Set("community_data", "true")
	query.Set("developer_data", "false")
	query.Set("sparkline", "false")

	payload, err := c.get(ctx, endpoint+"?"+query.Encode())
	if err != nil {
		return CoinDetails{}, err
	}

	var resp coinDetailsResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return CoinDetails{}, fmt.Errorf("decode coin details: %w", err)
	}

	details := CoinDetails{
		Symbol:      strings.ToUpper(resp.Symbol),
		Name:        resp.Name,
		Categories:  resp.Categories,
		SocialLinks: map[string]string{},
	}
	if details.Categories == nil {
		details.Categories = []string{}
	}

	if desc := strings.TrimSpace(resp.Description.EN); desc != "" {
		details.Description = &desc
	}
	if len(resp.Links.Homepage) > 0 && resp.Links.Homepage[0] != "" {
		home := resp.Links.Homepage[0]
		details.HomepageURL = &home
	}
	if resp.Links.TwitterScreenName != "" {
		details.SocialLinks["twitter"] = resp.Links.TwitterScreenName
	}
	if resp.Links.FacebookUsername != "" {
		details.SocialLinks["facebook"] = resp.Links.FacebookUsername
	}
	if resp.Links.TelegramChannelID != "" {
		details.SocialLinks["telegram"] = resp.Links.TelegramChannelID
	}
	if resp.Links.SubredditURL != "" {
		details.SocialLinks["subreddit"] = resp.Links.SubredditURL
	}

	if capValue, ok := resp.MarketData.MarketCap[c.opts.VsCurrency]; ok {
		if details.MarketCapUSD, err = nullDecimalFromNumber(&capValue); err != nil {
			return CoinDetails{}, fmt.Errorf("parse market cap: %w", err)
		}
	}
	if details.CirculatingSupply, err = nullDecimalFromNumber(resp.MarketData.CirculatingSupply); err != nil {
		return CoinDetails{}, fmt.Errorf("parse circulating supply: %w", err)
	}
	if details.TotalSupply, err = nullDecimalFromNumber(resp.MarketData.TotalSupply); err != nil {
		return CoinDetails{}, fmt.Errorf("parse total supply: %w", err)
	}
	if details.MaxSupply, err = nullDecimalFromNumber(resp.MarketData.MaxSupply); err != nil {
		return CoinDetails{}, fmt.Errorf("parse max supply: %w", err)
	}

	if resp.MarketData.LastUpdated != "" {
		if ts, err := time.Parse(time.RFC3339, resp.MarketData.LastUpdated); err == nil {
			utc := ts.UTC()
			details.LastUpdated = &utc
		} else {
			c.logger.Warn().Str("last_updated", resp.MarketData.LastUpdated).Msg("could not parse last_updated timestamp")
		}
	}

	c.logger.Info().Str("coin_id", coinID).Msg("coin details fetched")
	return details, nil
}

func (c *CoinGecko) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "crypto-screener/1.0")
	}
	if c.opts.APIKey != "" {
		req.Header.Set(coingeckoAPIKeyHeader, c.opts.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseHTTPError("coingecko", resp.StatusCode, payload)
	}
	return payload, nil
}

var _ MarketChartFetcher = (*CoinGecko)(nil)
var _ CoinDetailsFetcher = (*CoinGecko)(nil)
