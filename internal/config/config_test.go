package config

import (
	"os"
	"path/filepath"
	"testing"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := New(
		[]string{"B1", "B2"},
		[]string{"BlockFi", "Coinbase"},
		[]string{"Bob", "Alice"},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return cfg
}

func TestKnownNames(t *testing.T) {
	cfg := testConfig(t)

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{name: "known asset", got: cfg.KnownAsset("B1"), want: true},
		{name: "unknown asset", got: cfg.KnownAsset("yyy"), want: false},
		{name: "known exchange", got: cfg.KnownExchange("BlockFi"), want: true},
		{name: "exchange case mismatch", got: cfg.KnownExchange("blockfi"), want: false},
		{name: "known holder", got: cfg.KnownHolder("Alice"), want: true},
		{name: "unknown holder", got: cfg.KnownHolder("qwerty"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %t, want %t", tt.got, tt.want)
			}
		})
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name      string
		assets    []string
		exchanges []string
		holders   []string
		wantErr   error
	}{
		{name: "no assets", exchanges: []string{"X"}, holders: []string{"H"}, wantErr: ErrNoAssets},
		{name: "no exchanges", assets: []string{"A"}, holders: []string{"H"}, wantErr: ErrNoExchanges},
		{name: "no holders", assets: []string{"A"}, exchanges: []string{"X"}, wantErr: ErrNoHolders},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.assets, tt.exchanges, tt.holders)
			if err != tt.wantErr {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := testConfig(t)
	cfg.FromYear = 2020
	cfg.ToYear = 2021
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.KnownAsset("B2") || !loaded.KnownExchange("Coinbase") || !loaded.KnownHolder("Bob") {
		t.Error("loaded config lost declared names")
	}
	if loaded.FromYear != 2020 || loaded.ToYear != 2021 {
		t.Errorf("loaded years = %d-%d, want 2020-2021", loaded.FromYear, loaded.ToYear)
	}
}

func TestLoadRejectsBadYears(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data := `{"assets":["A"],"exchanges":["X"],"holders":["H"],"from_year":2021,"to_year":2019}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load accepted to_year before from_year")
	}
}

func TestSortedAssets(t *testing.T) {
	cfg, err := New([]string{"ETH", "BTC", "ADA"}, []string{"X"}, []string{"H"})
	if err != nil {
		t.Fatal(err)
	}
	got := cfg.SortedAssets()
	want := []string{"ADA", "BTC", "ETH"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortedAssets = %v, want %v", got, want)
		}
	}
}
