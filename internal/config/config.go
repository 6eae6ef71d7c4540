package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/quantfarer/vigil/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig              `mapstructure:"server"`
	Scoring    ScoringConfig             `mapstructure:"scoring"`
	Scalp      ScalpConfig               `mapstructure:"scalp"`
	Swing      SwingConfig               `mapstructure:"swing"`
	Scan       ScanConfig                `mapstructure:"scan"`
	MarketData MarketDataConfig          `mapstructure:"market_data"`
	Sentiment  SentimentConfig           `mapstructure:"sentiment"`
	News       NewsConfig                `mapstructure:"news"`
	Notifiers  map[string]NotifierConfig `mapstructure:"notifiers"`
	Archive    ArchiveConfig             `mapstructure:"archive"`
	Metrics    MetricsConfig             `mapstructure:"metrics"`
	Universe   []string                  `mapstructure:"universe"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// ScoringConfig holds the combined-score weights and swing buy/sell thresholds.
type ScoringConfig struct {
	TechWeight           float64 `mapstructure:"tech_weight"`
	SentimentWeight      float64 `mapstructure:"sentiment_weight"`
	BuyThreshold         float64 `mapstructure:"buy_threshold"`
	FallbackBuyThreshold float64 `mapstructure:"fallback_buy_threshold"`
	SellThreshold        float64 `mapstructure:"sell_threshold"`
}

// ScalpConfig holds short-horizon position management parameters.
type ScalpConfig struct {
	StopLossPct        float64 `mapstructure:"stop_loss_pct"`
	TakeProfitPct      float64 `mapstructure:"take_profit_pct"`
	BreakevenTrigger   float64 `mapstructure:"breakeven_trigger_pct"`
	TrailTrigger       float64 `mapstructure:"trail_trigger_pct"`
	TrailPct           float64 `mapstructure:"trail_pct"`
	MaxHoldingDays     int     `mapstructure:"max_holding_days"`
	BuyThreshold       float64 `mapstructure:"buy_threshold"`
	RSIMin             float64 `mapstructure:"rsi_min"`
	RSIMax             float64 `mapstructure:"rsi_max"`
	VolumeMultiplier   float64 `mapstructure:"volume_multiplier"`
}

// SwingConfig holds multi-day position management parameters.
type SwingConfig struct {
	StopLossPct           float64 `mapstructure:"stop_loss_pct"`
	TakeProfitPct         float64 `mapstructure:"take_profit_pct"`
	NewsCombinedThreshold float64 `mapstructure:"news_combined_threshold"`
	NewsAloneThreshold    float64 `mapstructure:"news_alone_threshold"`
}

// ScanConfig controls the buy-side ranking pipeline.
type ScanConfig struct {
	TechConcurrency      int           `mapstructure:"tech_concurrency"`
	SentimentConcurrency int           `mapstructure:"sentiment_concurrency"`
	ShortlistSize        int           `mapstructure:"shortlist_size"`
	TopN                 int           `mapstructure:"top_n"`
	SellCheckInterval    time.Duration `mapstructure:"sell_check_interval"`
}

type MarketDataConfig struct {
	Provider string        `mapstructure:"provider"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Lookback int           `mapstructure:"lookback"`
}

type SentimentConfig struct {
	Provider             string       `mapstructure:"provider"`
	Claude               ClaudeConfig `mapstructure:"claude"`
	OpenAI               OpenAIConfig `mapstructure:"openai"`
	PortfolioConcurrency int          `mapstructure:"portfolio_concurrency"`
}

type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type NewsConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Headlines  int    `mapstructure:"headlines"`
	WindowDays int    `mapstructure:"window_days"`
}

type NotifierConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Email notifier fields
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
	// Webhook notifier fields
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}

// ArchiveConfig selects where daily analysis reports are persisted.
type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Scoring: ScoringConfig{
			TechWeight:      0.6,
			SentimentWeight: 0.4,
			BuyThreshold:    70.0,
			// Without sentiment the combined score regresses toward 50,
			// so the buy bar is discounted: 0.6*tech + 0.4*50 >= 62
			// passes at tech >= 66.7.
			FallbackBuyThreshold: 62.0,
			SellThreshold:        40.0,
		},
		Scalp: ScalpConfig{
			StopLossPct:      -2.0,
			TakeProfitPct:    3.0,
			BreakevenTrigger: 1.5,
			TrailTrigger:     2.0,
			TrailPct:         1.0,
			MaxHoldingDays:   5,
			BuyThreshold:     75.0,
			RSIMin:           45.0,
			RSIMax:           68.0,
			VolumeMultiplier: 1.3,
		},
		Swing: SwingConfig{
			StopLossPct:           -5.0,
			TakeProfitPct:         15.0,
			NewsCombinedThreshold: 60.0,
			NewsAloneThreshold:    70.0,
		},
		Scan: ScanConfig{
			TechConcurrency:      30,
			SentimentConcurrency: 5,
			ShortlistSize:        20,
			TopN:                 3,
			SellCheckInterval:    10 * time.Minute,
		},
		MarketData: MarketDataConfig{
			Provider: "yahoo",
			Timeout:  10 * time.Second,
			Lookback: 260,
		},
		Sentiment: SentimentConfig{
			PortfolioConcurrency: 3,
		},
		News: NewsConfig{
			Headlines:  10,
			WindowDays: 7,
		},
		Archive: ArchiveConfig{
			Type: "localfs",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if w := c.Scoring.TechWeight + c.Scoring.SentimentWeight; w < 0.99 || w > 1.01 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("score weights must sum to 1.0, got %.2f", w))
	}

	if c.Scalp.StopLossPct >= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("scalp stop_loss_pct must be negative, got %.2f", c.Scalp.StopLossPct))
	}
	if c.Scalp.TakeProfitPct <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("scalp take_profit_pct must be positive, got %.2f", c.Scalp.TakeProfitPct))
	}
	if c.Scalp.MaxHoldingDays < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("scalp max_holding_days must be at least 1, got %d", c.Scalp.MaxHoldingDays))
	}
	if c.Swing.StopLossPct >= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("swing stop_loss_pct must be negative, got %.2f", c.Swing.StopLossPct))
	}

	if c.Scan.ShortlistSize < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("scan shortlist_size must be at least 1, got %d", c.Scan.ShortlistSize))
	}
	if c.Scan.TechConcurrency < 1 || c.Scan.SentimentConcurrency < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("scan concurrency limits must be at least 1"))
	}

	// Sentiment validation - if provider set, check config exists
	switch c.Sentiment.Provider {
	case "", "none":
	case "claude":
		if c.Sentiment.Claude.APIKey == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("claude api_key required when sentiment provider is claude"))
		}
	case "openai":
		if c.Sentiment.OpenAI.APIKey == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("openai api_key required when sentiment provider is openai"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown sentiment provider: %s", c.Sentiment.Provider))
	}

	return nil
}
