package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"crypto-screener/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	CoinGecko CoinGeckoConfig `mapstructure:"coingecko"`
	Binance   BinanceConfig   `mapstructure:"binance"`
	Indicator IndicatorConfig `mapstructure:"indicator"`
	Export    ExportConfig    `mapstructure:"export"`
	Predict   PredictConfig   `mapstructure:"predict"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates PostgreSQL/TimescaleDB connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
	AdvisoryLockKey int64         `mapstructure:"advisory_lock_key"`
}

// CoinGeckoConfig covers CoinGecko API access.
type CoinGeckoConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	VsCurrency     string        `mapstructure:"vs_currency"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// BinanceConfig covers Binance REST API access.
type BinanceConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Interval       string        `mapstructure:"interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// IndicatorConfig tunes the indicator pipeline windows.
type IndicatorConfig struct {
	SMAWindow        int     `mapstructure:"sma_window"`
	RSIWindow        int     `mapstructure:"rsi_window"`
	MACDFast         int     `mapstructure:"macd_fast"`
	MACDSlow         int     `mapstructure:"macd_slow"`
	MACDSignal       int     `mapstructure:"macd_signal"`
	StochWindow      int     `mapstructure:"stoch_window"`
	StochSmooth      int     `mapstructure:"stoch_smooth"`
	BollingerWindow  int     `mapstructure:"bollinger_window"`
	BollingerStdDevs float64 `mapstructure:"bollinger_std_devs"`
	ATRWindow        int     `mapstructure:"atr_window"`
	IchimokuTenkan   int     `mapstructure:"ichimoku_tenkan"`
	IchimokuKijun    int     `mapstructure:"ichimoku_kijun"`
	IchimokuSenkouB  int     `mapstructure:"ichimoku_senkou_b"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// PredictConfig tunes the price predictor.
type PredictConfig struct {
	Window       int     `mapstructure:"window"`
	Epochs       int     `mapstructure:"epochs"`
	LearningRate float64 `mapstructure:"learning_rate"`
	TrainSplit   float64 `mapstructure:"train_split"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCREENER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "crypto-screener")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Empty defaults keep env-only keys visible to Unmarshal.
	v.SetDefault("database.dsn", "")
	v.SetDefault("coingecko.api_key", "")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.migrations_path", "migrations")
	v.SetDefault("database.advisory_lock_key", int64(0x63727970))

	v.SetDefault("coingecko.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("coingecko.vs_currency", "usd")
	v.SetDefault("coingecko.request_timeout", "10s")
	v.SetDefault("coingecko.user_agent", "crypto-screener/1.0")

	v.SetDefault("binance.base_url", "https://api.binance.com")
	v.SetDefault("binance.interval", "1d")
	v.SetDefault("binance.request_timeout", "10s")
	v.SetDefault("binance.user_agent", "crypto-screener/1.0")

	v.SetDefault("indicator.sma_window", 20)
	v.SetDefault("indicator.rsi_window", 14)
	v.SetDefault("indicator.macd_fast", 12)
	v.SetDefault("indicator.macd_slow", 26)
	v.SetDefault("indicator.macd_signal", 9)
	v.SetDefault("indicator.stoch_window", 14)
	v.SetDefault("indicator.stoch_smooth", 3)
	v.SetDefault("indicator.bollinger_window", 20)
	v.SetDefault("indicator.bollinger_std_devs", 2.0)
	v.SetDefault("indicator.atr_window", 14)
	v.SetDefault("indicator.ichimoku_tenkan", 9)
	v.SetDefault("indicator.ichimoku_kijun", 26)
	v.SetDefault("indicator.ichimoku_senkou_b", 52)

	v.SetDefault("export.max_data_points", 100000)

	v.SetDefault("predict.window", 60)
	v.SetDefault("predict.epochs", 200)
	v.SetDefault("predict.learning_rate", 0.01)
	v.SetDefault("predict.train_split", 0.8)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.Indicator.SMAWindow <= 0 || c.Indicator.RSIWindow <= 0 {
		return fmt.Errorf("indicator windows must be greater than zero")
	}
	if c.Indicator.MACDFast >= c.Indicator.MACDSlow {
		return fmt.Errorf("indicator.macd_fast must be smaller than indicator.macd_slow")
	}
	if c.Indicator.IchimokuTenkan >= c.Indicator.IchimokuKijun || c.Indicator.IchimokuKijun >= c.Indicator.IchimokuSenkouB {
		return fmt.Errorf("ichimoku spans must satisfy tenkan < kijun < senkou_b")
	}
	if c.Indicator.BollingerStdDevs <= 0 {
		return fmt.Errorf("indicator.bollinger_std_devs must be greater than zero")
	}
	if c.Predict.Window <= 1 {
		return fmt.Errorf("predict.window must be greater than one")
	}
	if c.Predict.TrainSplit <= 0 || c.Predict.TrainSplit >= 1 {
		return fmt.Errorf("predict.train_split must be between 0 and 1 exclusive")
	}
	return nil
}

// RequireDSN enforces database credentials before any network or database work.
func (c *Config) RequireDSN() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required for this operation; set --dsn or SCREENER_DATABASE_DSN")
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
