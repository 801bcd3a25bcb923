package locsync

import (
	"github.com/rs/zerolog"

	"github.com/redshield/locsync/pkg/ledger"
	"github.com/redshield/locsync/pkg/logging"
	"github.com/redshield/locsync/pkg/reconcile"
	"github.com/redshield/locsync/pkg/sources"
)

// Option configures a Client.
type Option func(*config) error

type config struct {
	fetcher sources.Fetcher
	sources sources.Config
	store   ledger.Store
	fields  []reconcile.ComparedField
	logger  *zerolog.Logger
}

func defaultConfig() *config {
	return &config{logger: logging.Default()}
}

func (c *Client) options(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c.config); err != nil {
			return err
		}
	}
	return nil
}

// WithFetcher sets the transport sources load through.
func WithFetcher(fetcher sources.Fetcher) Option {
	return func(c *config) error {
		c.fetcher = fetcher
		return nil
	}
}

// WithSourceConfig sets the source paths and partitions.
func WithSourceConfig(cfg sources.Config) Option {
	return func(c *config) error {
		c.sources = cfg
		return nil
	}
}

// WithStore sets the correction store. Without one, corrections are
// neither loaded nor persisted.
func WithStore(store ledger.Store) Option {
	return func(c *config) error {
		c.store = store
		return nil
	}
}

// WithComparedFields overrides the compared field set.
func WithComparedFields(fields []reconcile.ComparedField) Option {
	return func(c *config) error {
		c.fields = fields
		return nil
	}
}

// WithLogger sets the logger used across the pipeline.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}
