package config

import (
	"errors"
	"fmt"
)

// Validate ensures required fields are present and ranges are sane.
func Validate(cfg AppConfig) error {
	if cfg.Env == "" {
		return errors.New("env is required")
	}
	if cfg.Sim.TradeIntervalMs <= 0 {
		return errors.New("sim.tradeIntervalMs must be > 0")
	}
	if cfg.Sim.MarketIntervalMs <= 0 {
		return errors.New("sim.marketIntervalMs must be > 0")
	}
	if len(cfg.Universe.Instruments) == 0 {
		return errors.New("universe.instruments is required")
	}
	if len(cfg.Universe.Traders) == 0 {
		return errors.New("universe.traders is required")
	}
	if len(cfg.Universe.Books) == 0 {
		return errors.New("universe.books is required")
	}
	if cfg.Universe.MaxQuantity <= 0 {
		return fmt.Errorf("universe.maxQuantity must be > 0 (got %v)", cfg.Universe.MaxQuantity)
	}
	if cfg.Universe.MaxPrice <= 0 {
		return fmt.Errorf("universe.maxPrice must be > 0 (got %v)", cfg.Universe.MaxPrice)
	}
	if cfg.Universe.PriceDelta <= 0 {
		return fmt.Errorf("universe.priceDelta must be > 0 (got %v)", cfg.Universe.PriceDelta)
	}
	if cfg.Sink.Retention < 0 {
		return errors.New("sink.retention must be >= 0")
	}
	return nil
}
