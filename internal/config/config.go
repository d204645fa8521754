package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Symbols []string `yaml:"symbols" validate:"min=1,dive,required"`
	Finnhub struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url" validate:"url"`
	} `yaml:"finnhub"`
	AlphaVantage struct {
		APIKey      string        `yaml:"api_key"`
		BaseURL     string        `yaml:"base_url" validate:"url"`
		MinInterval time.Duration `yaml:"min_interval" validate:"gte=0"`
	} `yaml:"alphavantage"`
	Stooq struct {
		BaseURL string `yaml:"base_url" validate:"url"`
	} `yaml:"stooq"`
	FX struct {
		ExchangeRateHostURL string `yaml:"exchangerate_host_url" validate:"url"`
		ECBURL              string `yaml:"ecb_url" validate:"url"`
		StooqPair           string `yaml:"stooq_pair" validate:"required"`
	} `yaml:"fx"`
	HTTP struct {
		Timeout    time.Duration `yaml:"timeout" validate:"gt=0"`
		Retries    int           `yaml:"retries" validate:"gte=0,lte=10"`
		RetryDelay time.Duration `yaml:"retry_delay" validate:"gte=0"`
		UserAgent  string        `yaml:"user_agent"`
	} `yaml:"http"`
	Output struct {
		Path string `yaml:"path" validate:"required"`
	} `yaml:"output"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
	} `yaml:"telegram"`
	Log struct {
		Level   string `yaml:"level" validate:"oneof=trace debug info warn error"`
		Console bool   `yaml:"console"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// MissingCredentialError reports a required credential that is not configured.
type MissingCredentialError struct {
	Name string
	Env  string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s is required (set %s)", e.Name, e.Env)
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Log.Console = true

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("FINNHUB_KEY"); v != "" {
		cfg.Finnhub.APIKey = v
	}
	if v := os.Getenv("ALPHA_KEY"); v != "" {
		cfg.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("TICKERS"); v != "" {
		cfg.Symbols = splitCSV(v)
	}
	if v := os.Getenv("OUTPUT_PATH"); v != "" {
		cfg.Output.Path = v
	}
	if v := os.Getenv("SCHEDULE_CRON"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}

	// Defaults
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = []string{"AAPL", "MSFT", "NVDA"}
	}
	if cfg.Finnhub.BaseURL == "" {
		cfg.Finnhub.BaseURL = "https://finnhub.io/api/v1"
	}
	if cfg.AlphaVantage.BaseURL == "" {
		cfg.AlphaVantage.BaseURL = "https://www.alphavantage.co"
	}
	if cfg.AlphaVantage.MinInterval == 0 {
		cfg.AlphaVantage.MinInterval = 12500 * time.Millisecond
	}
	if cfg.Stooq.BaseURL == "" {
		cfg.Stooq.BaseURL = "https://stooq.com"
	}
	if cfg.FX.ExchangeRateHostURL == "" {
		cfg.FX.ExchangeRateHostURL = "https://api.exchangerate.host/latest?base=USD&symbols=EUR"
	}
	if cfg.FX.ECBURL == "" {
		cfg.FX.ECBURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"
	}
	if cfg.FX.StooqPair == "" {
		cfg.FX.StooqPair = "eurusd.fx"
	}
	if cfg.HTTP.Timeout == 0 {
		cfg.HTTP.Timeout = 30 * time.Second
	}
	if cfg.HTTP.Retries == 0 {
		cfg.HTTP.Retries = 1
	}
	if cfg.HTTP.RetryDelay == 0 {
		cfg.HTTP.RetryDelay = 1500 * time.Millisecond
	}
	if cfg.HTTP.UserAgent == "" {
		cfg.HTTP.UserAgent = "stockboard/1.0"
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = "public/data/latest.json"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Finnhub.APIKey == "" {
		return &MissingCredentialError{Name: "finnhub.api_key", Env: "FINNHUB_KEY"}
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// FundamentalsEnabled reports whether the optional fundamentals provider is configured.
func (c *Config) FundamentalsEnabled() bool {
	return c.AlphaVantage.APIKey != ""
}

// NotifyEnabled reports whether run summaries are sent to Telegram.
func (c *Config) NotifyEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}
