// Package config handles accounting and global configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// Config describes one accounting setup: which assets are tracked and
// which exchanges and holders may appear in the ledger. Names are matched
// exactly; a ledger row naming anything not declared here is rejected.
type Config struct {
	Assets    []string `json:"assets"`
	Exchanges []string `json:"exchanges"`
	Holders   []string `json:"holders"`

	// FromYear/ToYear bound the accounting years covered by reports and
	// queries. Zero means no limit on that side.
	FromYear int `json:"from_year,omitempty"`
	ToYear   int `json:"to_year,omitempty"`

	assets    map[string]bool
	exchanges map[string]bool
	holders   map[string]bool
}

// Validation errors.
var (
	ErrNoAssets    = errors.New("configuration declares no assets")
	ErrNoExchanges = errors.New("configuration declares no exchanges")
	ErrNoHolders   = errors.New("configuration declares no holders")
)

// Load reads a configuration file and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.init(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// New builds a configuration from explicit name lists. For tests and
// programmatic use.
func New(assets, exchanges, holders []string) (*Config, error) {
	cfg := &Config{Assets: assets, Exchanges: exchanges, Holders: holders}
	if err := cfg.init(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) init() error {
	if len(c.Assets) == 0 {
		return ErrNoAssets
	}
	if len(c.Exchanges) == 0 {
		return ErrNoExchanges
	}
	if len(c.Holders) == 0 {
		return ErrNoHolders
	}
	c.assets = toSet(c.Assets)
	c.exchanges = toSet(c.Exchanges)
	c.holders = toSet(c.Holders)
	if c.FromYear != 0 && c.ToYear != 0 && c.ToYear < c.FromYear {
		return fmt.Errorf("to_year %d precedes from_year %d", c.ToYear, c.FromYear)
	}
	return nil
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// KnownAsset reports whether the asset is declared.
func (c *Config) KnownAsset(name string) bool {
	return c.assets[name]
}

// KnownExchange reports whether the exchange is declared. Matching is
// exact: "blockfi" does not match a declared "BlockFi".
func (c *Config) KnownExchange(name string) bool {
	return c.exchanges[name]
}

// KnownHolder reports whether the holder is declared.
func (c *Config) KnownHolder(name string) bool {
	return c.holders[name]
}

// SortedAssets returns the declared assets in lexical order.
func (c *Config) SortedAssets() []string {
	out := make([]string, len(c.Assets))
	copy(out, c.Assets)
	sort.Strings(out)
	return out
}

// Save writes the configuration to a file as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
