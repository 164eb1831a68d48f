package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"market-sim-go/infrastructure/logger"
)

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env         string         `yaml:"env"`
	Sim         SimConfig      `yaml:"sim"`
	Universe    UniverseConfig `yaml:"universe"`
	Sink        SinkConfig     `yaml:"sink"`
	Logger      logger.Config  `yaml:"logger"`
	MetricsAddr string         `yaml:"metricsAddr"`
}

// SimConfig 两路独立定时源的周期与随机种子。
type SimConfig struct {
	TradeIntervalMs  int   `yaml:"tradeIntervalMs"`
	MarketIntervalMs int   `yaml:"marketIntervalMs"`
	Seed             int64 `yaml:"seed"` // 0 表示用当前时间
}

// UniverseConfig 随机生成所用的枚举与范围。
type UniverseConfig struct {
	Instruments []string `yaml:"instruments"`
	Traders     []string `yaml:"traders"`
	Books       []string `yaml:"books"`
	MaxQuantity float64  `yaml:"maxQuantity"`
	MaxPrice    float64  `yaml:"maxPrice"`
	PriceDelta  float64  `yaml:"priceDelta"`
}

// SinkConfig 外部 sink（图表数据源替身）的参数。
type SinkConfig struct {
	Retention int      `yaml:"retention"` // 每字段保留条数，0 取默认 100
	Keys      []string `yaml:"keys"`      // sink schema 字段
	WSAddr    string   `yaml:"wsAddr"`    // 为空则不开 ws 推送
}

// TradeInterval 返回成交生成周期。
func (s SimConfig) TradeInterval() time.Duration {
	return time.Duration(s.TradeIntervalMs) * time.Millisecond
}

// MarketInterval 返回行情扰动周期。
func (s SimConfig) MarketInterval() time.Duration {
	return time.Duration(s.MarketIntervalMs) * time.Millisecond
}

// Default 内置默认配置，配置文件字段缺省时逐项回填。
func Default() AppConfig {
	return AppConfig{
		Env: "dev",
		Sim: SimConfig{
			TradeIntervalMs:  1000,
			MarketIntervalMs: 1500,
		},
		Universe: UniverseConfig{
			Instruments: []string{"MSFT", "IBM", "GOOG", "AAPL", "ORCL"},
			Traders:     []string{"Lee", "Vijay", "Sunil", "Maria", "Olga"},
			Books:       []string{"book1", "book2", "book3"},
			MaxQuantity: 100,
			MaxPrice:    10,
			PriceDelta:  5,
		},
		Sink: SinkConfig{
			Retention: 100,
			Keys:      []string{"quantity", "price"},
		},
		Logger:      logger.DefaultConfig(),
		MetricsAddr: ":9100",
	}
}

// Load reads YAML config from path, fills defaults and validates.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	cfg.fillDefaults()
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *AppConfig) fillDefaults() {
	d := Default()
	if len(c.Universe.Instruments) == 0 {
		c.Universe.Instruments = d.Universe.Instruments
	}
	if len(c.Universe.Traders) == 0 {
		c.Universe.Traders = d.Universe.Traders
	}
	if len(c.Universe.Books) == 0 {
		c.Universe.Books = d.Universe.Books
	}
	if c.Universe.MaxQuantity == 0 {
		c.Universe.MaxQuantity = d.Universe.MaxQuantity
	}
	if c.Universe.MaxPrice == 0 {
		c.Universe.MaxPrice = d.Universe.MaxPrice
	}
	if c.Universe.PriceDelta == 0 {
		c.Universe.PriceDelta = d.Universe.PriceDelta
	}
	if c.Sink.Retention == 0 {
		c.Sink.Retention = d.Sink.Retention
	}
	if len(c.Sink.Keys) == 0 {
		c.Sink.Keys = d.Sink.Keys
	}
	if c.Logger.Level == "" {
		c.Logger = d.Logger
	}
}
