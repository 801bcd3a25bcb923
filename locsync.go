// Package locsync reconciles location data between the GDOS facility
// system of record and the Zesty web CMS: it loads both systems' exports,
// computes field-level differences under normalization, applies persisted
// reviewer corrections, and exposes the corrected result for export.
package locsync

import (
	"context"
	"fmt"

	"github.com/redshield/locsync/pkg/ledger"
	"github.com/redshield/locsync/pkg/locations"
	"github.com/redshield/locsync/pkg/reconcile"
	"github.com/redshield/locsync/pkg/sources"
)

// Client runs the full pipeline: load, reconcile, apply corrections.
type Client struct {
	config *config

	loader *sources.Loader
	engine *reconcile.Engine
	ledger *ledger.Ledger
}

// New creates a Client. A fetcher and source config are required; a
// correction store is optional and its absence means every difference keeps
// its default choice.
func New(opts ...Option) (*Client, error) {
	c := &Client{config: defaultConfig()}
	if err := c.options(opts...); err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}

	if c.config.fetcher == nil {
		return nil, fmt.Errorf("a source fetcher is required")
	}
	if err := c.config.sources.Validate(); err != nil {
		return nil, err
	}

	c.loader = sources.New(c.config.fetcher, c.config.sources, sources.WithLogger(c.config.logger))

	engineOpts := []reconcile.Option{reconcile.WithLogger(c.config.logger)}
	if c.config.fields != nil {
		engineOpts = append(engineOpts, reconcile.WithFields(c.config.fields))
	}
	c.engine = reconcile.New(engineOpts...)

	c.ledger = ledger.New(c.config.store, ledger.WithLogger(c.config.logger))

	return c, nil
}

// Load runs the source loader set.
func (c *Client) Load(ctx context.Context) *locations.Dataset {
	return c.loader.LoadAll(ctx)
}

// Run loads all sources, reconciles them, and applies stored corrections.
func (c *Client) Run(ctx context.Context) (*reconcile.Result, error) {
	ds := c.Load(ctx)

	result, err := c.engine.Reconcile(ds)
	if err != nil {
		return nil, err
	}

	if err := c.ledger.Apply(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Ledger exposes the correction ledger, for recording reviewer decisions
// against a result produced by Run.
func (c *Client) Ledger() *ledger.Ledger {
	return c.ledger
}
