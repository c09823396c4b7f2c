package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	RateFeed  RateFeedConfig  `mapstructure:"rate_feed"`
	PriceFeed PriceFeedConfig `mapstructure:"price_feed"`
	Probe     ProbeConfig     `mapstructure:"probe"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Environment string `mapstructure:"environment"` // "dev" or "prod"
}

type RateFeedConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type PriceFeedConfig struct {
	URL       string        `mapstructure:"url"`
	PartnerID string        `mapstructure:"partner_id"`
	Timeout   time.Duration `mapstructure:"timeout"`
	// ProbeTimeout bounds the connectivity check that gates each price
	// request; it is tighter than the probe used elsewhere because a
	// guaranteed-timeout round trip is worse than skipping the call.
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
}

type ProbeConfig struct {
	Addresses []string      `mapstructure:"addresses"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	Path string `mapstructure:"path"`
}

// Load loads application configuration using Viper.
// It reads from config.yaml when present and overrides with environment
// variables. Every field has a default, so a missing config file is fine.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("server.port", "8081")
	v.SetDefault("server.environment", "prod")
	v.SetDefault("rate_feed.url", "https://www.cbr-xml-daily.ru/daily_json.js")
	v.SetDefault("rate_feed.timeout", 2*time.Second)
	v.SetDefault("price_feed.url", "https://plati.market/asp/price_options.asp")
	v.SetDefault("price_feed.partner_id", "4100297")
	v.SetDefault("price_feed.timeout", 2*time.Second)
	v.SetDefault("price_feed.probe_timeout", 500*time.Millisecond)
	v.SetDefault("probe.addresses", []string{"8.8.8.8:53", "1.1.1.1:53"})
	v.SetDefault("probe.timeout", time.Second)
	v.SetDefault("cache.path", "currency_cache.json")

	// Support environment variables with dot notation (e.g., RATE_FEED_URL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
