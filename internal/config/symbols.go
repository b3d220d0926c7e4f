package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vportella/tradeyard/internal/engine"
)

// symbolEntry is one symbol in the YAML catalog. Zero-valued tuning
// fields fall back to the catalog defaults.
type symbolEntry struct {
	Code       string  `yaml:"code"`
	Name       string  `yaml:"name"`
	Price      float64 `yaml:"price"`
	Volatility float64 `yaml:"volatility"`
	Liquidity  float64 `yaml:"liquidity"`
	Spread     float64 `yaml:"spread"`
	FeeBps     float64 `yaml:"fee_bps"`
	Supply     float64 `yaml:"supply"`
}

// catalog is the YAML symbol catalog file format.
type catalog struct {
	Symbols []symbolEntry `yaml:"symbols"`
}

// Per-symbol defaults applied when the catalog omits a tuning field.
const (
	defaultVolatility = 0.002
	defaultLiquidity  = 12000.0
	defaultSpread     = 0.002
	defaultFeeBps     = 12.0
	defaultSupply     = 1_000_000.0
)

// DefaultSymbols is the built-in catalog used when no SYMBOLS_PATH is
// configured.
func DefaultSymbols() []engine.SymbolSeed {
	return []engine.SymbolSeed{
		{Code: "BTC", Name: "Bitcoin", Price: 60000, Volatility: defaultVolatility, Liquidity: defaultLiquidity, Spread: defaultSpread, FeeBps: defaultFeeBps, Supply: defaultSupply},
		{Code: "ETH", Name: "Ethereum", Price: 3000, Volatility: defaultVolatility, Liquidity: defaultLiquidity, Spread: defaultSpread, FeeBps: defaultFeeBps, Supply: defaultSupply},
		{Code: "SOL", Name: "Solana", Price: 120, Volatility: defaultVolatility, Liquidity: defaultLiquidity, Spread: defaultSpread, FeeBps: defaultFeeBps, Supply: defaultSupply},
		{Code: "DOGE", Name: "Dogecoin", Price: 0.15, Volatility: defaultVolatility, Liquidity: defaultLiquidity, Spread: defaultSpread, FeeBps: defaultFeeBps, Supply: defaultSupply},
	}
}

// LoadSymbols reads the YAML catalog at path. An empty path returns the
// built-in catalog.
func LoadSymbols(path string) ([]engine.SymbolSeed, error) {
	if path == "" {
		return DefaultSymbols(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read symbol catalog: %w", err)
	}
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse symbol catalog: %w", err)
	}
	if len(c.Symbols) == 0 {
		return nil, fmt.Errorf("symbol catalog %s has no symbols", path)
	}

	seeds := make([]engine.SymbolSeed, 0, len(c.Symbols))
	seen := make(map[string]bool)
	for _, e := range c.Symbols {
		if e.Code == "" {
			return nil, fmt.Errorf("symbol catalog entry missing code")
		}
		if seen[e.Code] {
			return nil, fmt.Errorf("duplicate symbol in catalog: %s", e.Code)
		}
		seen[e.Code] = true
		if e.Price <= 0 {
			return nil, fmt.Errorf("symbol %s: price must be > 0", e.Code)
		}

		seed := engine.SymbolSeed{
			Code:       e.Code,
			Name:       e.Name,
			Price:      e.Price,
			Volatility: e.Volatility,
			Liquidity:  e.Liquidity,
			Spread:     e.Spread,
			FeeBps:     e.FeeBps,
			Supply:     e.Supply,
		}
		if seed.Name == "" {
			seed.Name = seed.Code
		}
		if seed.Volatility == 0 {
			seed.Volatility = defaultVolatility
		}
		if seed.Liquidity == 0 {
			seed.Liquidity = defaultLiquidity
		}
		if seed.Spread == 0 {
			seed.Spread = defaultSpread
		}
		if seed.FeeBps == 0 {
			seed.FeeBps = defaultFeeBps
		}
		if seed.Supply == 0 {
			seed.Supply = defaultSupply
		}
		seeds = append(seeds, seed)
	}
	return seeds, nil
}
