// Package ledger records reviewer decisions over field differences and
// keeps them durable across reload cycles. The persisted store is the
// source of truth: on every run, live differences are matched against
// stored corrections by (identifier, field) and re-derived. Only deviations
// from the default source-side choice are stored, so storage grows with
// reviewer activity, not dataset size.
package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/redshield/locsync/pkg/logging"
	"github.com/redshield/locsync/pkg/normalize"
	"github.com/redshield/locsync/pkg/reconcile"
)

// Correction is one persisted reviewer decision.
type Correction struct {
	ID        string           `json:"gdos_id"`
	Field     normalize.Field  `json:"field"`
	Correct   reconcile.Choice `json:"correct"`
	Value     string           `json:"value,omitempty"`
	Territory string           `json:"territory,omitempty"`
}

// Store persists the full correction set. Save replaces the previous
// contents wholesale; last write wins and readers never observe a partial
// document.
type Store interface {
	Load(ctx context.Context) ([]Correction, time.Time, error)
	Save(ctx context.Context, corrections []Correction) error
}

// Ledger applies stored corrections to reconciliation results and persists
// new reviewer decisions.
type Ledger struct {
	store Store
	log   *zerolog.Logger

	// reverted holds the source-side decisions on synthetic differences.
	// The differences themselves are deleted from the result, but the
	// decision must stay persisted or the next run would re-synthesize
	// them at their web-side default.
	reverted map[string]Correction
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the ledger's logger.
func WithLogger(log *zerolog.Logger) Option {
	return func(l *Ledger) {
		l.log = log
	}
}

// New creates a Ledger over a store.
func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		log:      logging.Default(),
		reverted: make(map[string]Correction),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Apply loads the stored correction set and applies it to a result. An
// unreachable store degrades to "no corrections applied" with a warning;
// every difference keeps its default choice. Stored corrections that no
// longer match a live difference are logged and skipped; the discrepancy
// they resolved no longer exists.
func (l *Ledger) Apply(ctx context.Context, result *reconcile.Result) error {
	if l.store == nil {
		return nil
	}

	corrections, updated, err := l.store.Load(ctx)
	if err != nil {
		l.log.Warn().Err(err).Msg("correction store unreachable, applying no corrections")
		return nil
	}

	applied := 0
	for _, c := range corrections {
		diff, ok := result.Difference(c.ID, c.Field)
		if !ok {
			l.log.Debug().Str("id", c.ID).Str("field", string(c.Field)).Msg("stored correction matches no live difference")
			continue
		}
		l.apply(result, diff, c.Correct)
		applied++
	}

	l.log.Info().
		Int("stored", len(corrections)).
		Int("applied", applied).
		Time("last_updated", updated).
		Msg("corrections applied")

	return nil
}

// Choose records one reviewer decision, re-derives the final value, and
// persists the entire non-default correction set. A failed save leaves the
// in-memory decision intact; it is visible this session but not durable
// until the store is reachable again.
func (l *Ledger) Choose(ctx context.Context, result *reconcile.Result, diff *reconcile.FieldDifference, choice reconcile.Choice) error {
	l.apply(result, diff, choice)

	if l.store == nil {
		return nil
	}
	if err := l.store.Save(ctx, l.persistSet(result)); err != nil {
		l.log.Warn().Err(err).Msg("correction save failed, decision held in memory only")
		return err
	}
	return nil
}

// apply sets the choice on a difference and enforces the synthetic removal
// rule: a synthetic row reverted to the source side stops being an open
// action item and is deleted outright. The revert decision itself is kept
// so it persists across runs.
func (l *Ledger) apply(result *reconcile.Result, diff *reconcile.FieldDifference, choice reconcile.Choice) {
	diff.Choice = choice
	diff.Derive()

	if !diff.Synthetic {
		return
	}

	key := correctionKey(diff.ID, diff.Field)
	if choice == reconcile.ChoiceSource {
		result.Remove(diff)
		l.reverted[key] = Correction{
			ID:        diff.ID,
			Field:     diff.Field,
			Correct:   reconcile.ChoiceSource,
			Territory: diff.Territory,
		}
		return
	}
	delete(l.reverted, key)
}

// persistSet is the full correction set to store: live deviations plus the
// retained synthetic reverts.
func (l *Ledger) persistSet(result *reconcile.Result) []Correction {
	corrections := Persist(result)
	keys := make([]string, 0, len(l.reverted))
	for key := range l.reverted {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		corrections = append(corrections, l.reverted[key])
	}
	return corrections
}

func correctionKey(id string, field normalize.Field) string {
	return id + "\x00" + string(field)
}

// Persist extracts the correction set to store: every difference whose
// choice deviates from the default source side. The chosen side's value
// rides along when it is non-empty, for consumers that render corrections
// without re-running reconciliation.
func Persist(result *reconcile.Result) []Correction {
	corrections := make([]Correction, 0)
	for _, diff := range result.Differences {
		if diff.Choice == reconcile.ChoiceSource {
			continue
		}
		c := Correction{
			ID:        diff.ID,
			Field:     diff.Field,
			Correct:   diff.Choice,
			Territory: diff.Territory,
		}
		if diff.FinalValue != "" {
			c.Value = diff.FinalValue
		}
		corrections = append(corrections, c)
	}
	return corrections
}
