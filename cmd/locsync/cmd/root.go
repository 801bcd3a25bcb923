// Package cmd implements the locsync command tree.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	locsync "github.com/redshield/locsync"
	"github.com/redshield/locsync/internal/config"
	"github.com/redshield/locsync/internal/store"
	"github.com/redshield/locsync/pkg/ledger"
	"github.com/redshield/locsync/pkg/logging"
	"github.com/redshield/locsync/pkg/sources"
)

var (
	flagConfig        string
	flagSourceRoot    string
	flagSourceBaseURL string
	flagStoreBackend  string
	flagStorePath     string
	flagStoreURL      string
)

var rootCmd = &cobra.Command{
	Use:   "locsync",
	Short: "Reconcile location data between GDOS and the Zesty web CMS",
	Long: `locsync loads location exports from the GDOS facility system of record
and the Zesty web CMS, computes field-level differences under
normalization, applies persisted reviewer corrections, and exports the
corrected result.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the command tree.
func Execute(ctx context.Context) error {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&flagSourceRoot, "source-root", "", "directory holding the source exports")
	rootCmd.PersistentFlags().StringVar(&flagSourceBaseURL, "source-base-url", "", "base URL to fetch source exports from (overrides --source-root)")
	rootCmd.PersistentFlags().StringVar(&flagStoreBackend, "store", "", "correction store backend: file, sqlite, or http")
	rootCmd.PersistentFlags().StringVar(&flagStorePath, "store-path", "", "correction store file or database path")
	rootCmd.PersistentFlags().StringVar(&flagStoreURL, "store-url", "", "corrections service URL for the http backend")
}

// loadConfig builds the runtime config from flags, environment, and the
// optional config file.
func loadConfig() (*config.Config, error) {
	v := viper.New()
	if flagConfig != "" {
		v.Set("config", flagConfig)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	if flagSourceRoot != "" {
		cfg.SourceRoot = flagSourceRoot
	}
	if flagSourceBaseURL != "" {
		cfg.SourceBaseURL = flagSourceBaseURL
	}
	if flagStoreBackend != "" {
		cfg.Store.Backend = flagStoreBackend
	}
	if flagStorePath != "" {
		cfg.Store.Path = flagStorePath
	}
	if flagStoreURL != "" {
		cfg.Store.URL = flagStoreURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildStore opens the configured correction store. The returned closer is
// a no-op for backends without a handle to release.
func buildStore(cfg *config.Config) (ledger.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreSQLite:
		s, err := store.OpenSQLite(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.StoreHTTP:
		return store.NewHTTPStore(cfg.Store.URL, cfg.Store.Token), func() {}, nil
	default:
		return store.NewFileStore(cfg.Store.Path), func() {}, nil
	}
}

// buildClient wires the pipeline from config.
func buildClient(cfg *config.Config, st ledger.Store) (*locsync.Client, error) {
	var fetcher sources.Fetcher
	if cfg.SourceBaseURL != "" {
		fetcher = sources.NewHTTPFetcher(cfg.SourceBaseURL)
	} else {
		fetcher = &sources.FileFetcher{Root: cfg.SourceRoot}
	}

	return locsync.New(
		locsync.WithFetcher(fetcher),
		locsync.WithSourceConfig(cfg.Sources),
		locsync.WithStore(st),
		locsync.WithLogger(logging.Default()),
	)
}
