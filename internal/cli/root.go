package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkmbinder/pkmbinder/internal/cards"
	"github.com/pkmbinder/pkmbinder/internal/collection"
	"github.com/pkmbinder/pkmbinder/internal/config"
	"github.com/pkmbinder/pkmbinder/internal/logging"
)

var (
	flagConfig    string
	flagAPIKey    string
	flagLogLevel  string
	flagLogFormat string

	cfg    config.Config
	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for the pkmbinder CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pkmbinder",
		Short: "pkmbinder — Pokémon TCG catalog browser and binder tracker",
		Long: "pkmbinder browses the pokemontcg.io card catalog and tracks the cards\n" +
			"you own, with market prices from TCGplayer and Cardmarket.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(flagConfig)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			// Flags beat the file and the environment.
			if flagAPIKey != "" {
				cfg.APIKey = flagAPIKey
			}
			if flagLogLevel != "" {
				cfg.LogLevel = flagLogLevel
			}
			if flagLogFormat != "" {
				cfg.LogFormat = flagLogFormat
			}
			logger = logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.config/pkmbinder/config.toml)")
	root.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "pokemontcg.io API key (or POKEMONTCG_API_KEY env)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format (text, json)")

	root.AddCommand(
		newSetsCmd(),
		newCardsCmd(),
		newCardCmd(),
		newCollectionCmd(),
		newRefreshCmd(),
		newServeCmd(),
	)

	return root
}

// newCatalog builds the card client from the resolved config.
func newCatalog() *cards.PokeTCGIO {
	opts := []cards.Option{cards.WithLogger(logger)}
	if cfg.BaseURL != "" {
		opts = append(opts, cards.WithBaseURL(cfg.BaseURL))
	}
	if cfg.TimeoutSeconds > 0 {
		opts = append(opts, cards.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		}))
	}
	return cards.NewPokeTCGIO(cfg.APIKey, opts...)
}

// openBinder opens the collection database and applies migrations.
func openBinder(ctx context.Context) (*collection.Store, error) {
	store, err := collection.Open(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open collection db: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate collection db: %w", err)
	}
	return store, nil
}

// money renders an optional price.
func money(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("$%.2f", *v)
}
