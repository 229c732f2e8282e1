package main

import (
	"context"
	"os"

	"github.com/eprbell/rp2go/internal/config"
	"github.com/eprbell/rp2go/internal/price"
	"github.com/eprbell/rp2go/internal/transaction"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var priceFiat string

func init() {
	priceCmd.Flags().StringVar(&priceFiat, "fiat", "USD", "Fiat currency for the price")
	rootCmd.AddCommand(priceCmd)
}

var priceCmd = &cobra.Command{
	Use:   "price <asset> <timestamp>",
	Short: "Look up a historical spot price",
	Long: `Look up the historical spot price of an asset at a given time, for
ledger rows missing one. The API key is read from RP2_PRICE_API_KEY
(.env supported) or the global config file.`,
	Args: cobra.ExactArgs(2),
	RunE: runPrice,
}

// PriceResponse is the response for the price command.
type PriceResponse struct {
	Asset     string `json:"asset"`
	Fiat      string `json:"fiat"`
	Timestamp string `json:"timestamp"`
	SpotPrice string `json:"spot_price"`
}

// priceAPIKey resolves the API key: environment (with .env loading)
// first, then the global config file.
func priceAPIKey() string {
	_ = godotenv.Load()
	if key := os.Getenv("RP2_PRICE_API_KEY"); key != "" {
		return key
	}
	if cfg, err := config.LoadGlobalConfig(); err == nil {
		return cfg.PriceAPIKey
	}
	return ""
}

func runPrice(cmd *cobra.Command, args []string) error {
	asset := args[0]
	at, err := transaction.ParseTimestamp(args[1])
	if err != nil {
		exitWithError(ExitError, "parsing timestamp: %v", err)
	}

	opts := []price.ClientOption{price.WithAPIKey(priceAPIKey())}
	if cfg, err := config.LoadGlobalConfig(); err == nil && cfg.PriceBaseURL != "" {
		opts = append(opts, price.WithBaseURL(cfg.PriceBaseURL))
	}
	client := price.NewClient(opts...)

	spot, err := client.Spot(context.Background(), asset, priceFiat, at)
	if err != nil {
		exitWithError(ExitError, "fetching price: %v", err)
	}

	if humanOutput {
		outputHuman("%s/%s at %s: %s\n", asset, priceFiat, args[1], spot.Fiat())
		return nil
	}
	return outputJSON(PriceResponse{
		Asset:     asset,
		Fiat:      priceFiat,
		Timestamp: args[1],
		SpotPrice: spot.String(),
	})
}
