package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"crypto-screener/internal/config"
	"crypto-screener/internal/fetcher"
	"crypto-screener/internal/indicator"
	"crypto-screener/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newCoinGecko() *fetcher.CoinGecko {
	return fetcher.NewCoinGecko(fetcher.CoinGeckoOptions{
		BaseURL:    a.Config.CoinGecko.BaseURL,
		APIKey:     a.Config.CoinGecko.APIKey,
		VsCurrency: a.Config.CoinGecko.VsCurrency,
		Timeout:    a.Config.CoinGecko.RequestTimeout,
		UserAgent:  a.Config.CoinGecko.UserAgent,
	}, a.Logger)
}

func (a *App) newBinance() *fetcher.Binance {
	return fetcher.NewBinance(fetcher.BinanceOptions{
		BaseURL:   a.Config.Binance.BaseURL,
		Interval:  a.Config.Binance.Interval,
		Timeout:   a.Config.Binance.RequestTimeout,
		UserAgent: a.Config.Binance.UserAgent,
	}, a.Logger)
}

func (a *App) indicatorParams() indicator.Params {
	cfg := a.Config.Indicator
	return indicator.Params{
		SMAWindow:        cfg.SMAWindow,
		RSIWindow:        cfg.RSIWindow,
		MACDFast:         cfg.MACDFast,
		MACDSlow:         cfg.MACDSlow,
		MACDSignal:       cfg.MACDSignal,
		StochWindow:      cfg.StochWindow,
		StochSmooth:      cfg.StochSmooth,
		BollingerWindow:  cfg.BollingerWindow,
		BollingerStdDevs: cfg.BollingerStdDevs,
		ATRWindow:        cfg.ATRWindow,
		IchimokuTenkan:   cfg.IchimokuTenkan,
		IchimokuKijun:    cfg.IchimokuKijun,
		IchimokuSenkouB:  cfg.IchimokuSenkouB,
	}
}

// openStore validates credentials and wires a connection pool. Callers must
// invoke the returned closer when non-nil.
func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if err := a.Config.RequireDSN(); err != nil {
		return nil, nil, err
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// lockIngestion serialises ingestion runs against one database.
func (a *App) lockIngestion(ctx context.Context, store *storage.Store) (func(), error) {
	key := a.Config.Database.AdvisoryLockKey
	if key == 0 {
		return func() {}, nil
	}
	unlock, acquired, err := store.TryAdvisoryLock(ctx, key)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, errAnotherRunActive
	}
	return unlock, nil
}

// FetchOptions configure the fetch command.
type FetchOptions struct {
	Source   string
	Symbol   string
	CoinID   string
	Days     int
	Interval string
	From     *time.Time
	To       *time.Time
	Limit    int
	OutPath  string
	NoDB     bool
}

// AnalyzeOptions configure the indicator pipeline command.
type AnalyzeOptions struct {
	Symbol    string
	InputPath string
	OutPath   string
	From      *time.Time
	To        *time.Time
	Limit     int
	NoDB      bool
}

// FundamentalsOptions configure the fundamentals command.
type FundamentalsOptions struct {
	CoinID string
	Symbol string
}

// PredictOptions configure the predict command.
type PredictOptions struct {
	Symbol string
	Window int
	Epochs int
	Split  float64
	From   *time.Time
	To     *time.Time
	Limit  int
}

// ExportOptions hold parameters for exporting a stored series.
type ExportOptions struct {
	Symbol    string
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Symbol     string
	Limit      int
	Indicators bool
}
