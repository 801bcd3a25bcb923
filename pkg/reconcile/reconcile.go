// Package reconcile joins facility-system records against web-CMS records
// by resolved identity, classifies every identifier as matched, source-only
// or web-only, and computes per-field differences after normalization. The
// engine performs no I/O and is total over whatever the loaders produced: a
// degraded load yields a smaller result, never an error.
package reconcile

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/redshield/locsync/pkg/errors"
	"github.com/redshield/locsync/pkg/extract"
	"github.com/redshield/locsync/pkg/locations"
	"github.com/redshield/locsync/pkg/logging"
	"github.com/redshield/locsync/pkg/normalize"
)

// Engine computes reconciliation results over one loaded dataset.
type Engine struct {
	fields []ComparedField
	log    *zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithFields overrides the compared field set.
func WithFields(fields []ComparedField) Option {
	return func(e *Engine) {
		e.fields = fields
	}
}

// WithLogger sets the engine's logger.
func WithLogger(log *zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// New creates an Engine with the default compared field set.
func New(opts ...Option) *Engine {
	e := &Engine{
		fields: DefaultFields(),
		log:    logging.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reconcile runs the join and diff over a loaded dataset. A nil dataset is
// a contract violation; everything else reconciles.
func (e *Engine) Reconcile(ds *locations.Dataset) (*Result, error) {
	if ds == nil {
		return nil, errors.NewValidationError("dataset", nil, "dataset must not be nil")
	}

	result := &Result{
		Summary: Summary{
			ByTerritory:        make(map[string]int),
			ByPropertyType:     make(map[string]int),
			WebSourceCounts:    ds.WebSourceCounts,
			SuppressionReasons: ds.Suppression.Reasons(),
		},
	}

	consumed := make(map[string]bool, len(ds.Facilities))

	for _, id := range sortedIDs(ds.Facilities) {
		facility := ds.Facilities[id]
		web := ds.Web[id]
		consumed[id] = true

		row := &Row{
			ID:       id,
			Facility: facility,
			Web:      web,
			Status:   StatusSourceOnly,
		}
		if web != nil {
			row.Status = StatusMatched
		}
		if entry, ok := ds.Suppression.Lookup(id); ok {
			row.Suppressed = true
			row.SuppressionReason = entry.Reason
			row.Duplicate = entry.Duplicate
			row.DoNotImport = entry.DoNotImport
		}
		result.Rows = append(result.Rows, row)

		e.diffRow(result, row)
		e.applySuppressionPolicy(result, row)
	}

	for _, id := range sortedWebIDs(ds.Web) {
		if consumed[id] {
			continue
		}
		result.Rows = append(result.Rows, &Row{
			ID:     id,
			Web:    ds.Web[id],
			Status: StatusWebOnly,
		})
	}

	sortDifferences(result.Differences)
	summarize(result)

	e.log.Info().
		Int("rows", len(result.Rows)).
		Int("matched", result.Summary.Matched).
		Int("source_only", result.Summary.SourceOnly).
		Int("web_only", result.Summary.WebOnly).
		Int("differences", result.Summary.Differences).
		Msg("reconciliation complete")

	return result, nil
}

// diffRow expands one row into its organic field differences. Only matched
// rows can produce any: an absent web side normalizes to nil and nil values
// never diff.
func (e *Engine) diffRow(result *Result, row *Row) {
	if row.Status != StatusMatched {
		return
	}

	for _, cf := range e.fields {
		rawWeb, webOK := webValue(row.Web, cf)
		if normalize.Ignorable(cf.Field, extract.String(rawWeb)) {
			continue
		}

		rawSource, sourceOK := facilityValue(row.Facility, cf)
		if !sourceOK || !webOK {
			continue
		}

		sourceNorm := normalize.Normalize(rawSource, cf.Field)
		webNorm := normalize.Normalize(rawWeb, cf.Field)
		if sourceNorm == nil || webNorm == nil || *sourceNorm == *webNorm {
			continue
		}

		diff := &FieldDifference{
			ID:          row.ID,
			Field:       cf.Field,
			SourceValue: extract.String(rawSource),
			WebValue:    extract.String(rawWeb),
			Choice:      ChoiceSource,
		}
		decorate(diff, row)
		diff.Derive()
		result.Differences = append(result.Differences, diff)
	}
}

// applySuppressionPolicy synthesizes a publish-status difference for
// records that must end up unpublished even though no raw field disagrees:
// matched records flagged duplicate or do-not-import, and published
// source-only records explicitly on the do-not-import list. The synthetic
// difference defaults to the web side; choosing the source side later
// deletes it outright.
func (e *Engine) applySuppressionPolicy(result *Result, row *Row) {
	if row.Facility == nil || !row.Facility.Published {
		return
	}

	needed := false
	switch row.Status {
	case StatusMatched:
		needed = row.Duplicate || row.DoNotImport
	case StatusSourceOnly:
		needed = row.DoNotImport
	}
	if !needed {
		return
	}

	for _, d := range result.Differences {
		if d.ID == row.ID && d.Field == normalize.FieldPublished {
			return
		}
	}

	diff := &FieldDifference{
		ID:          row.ID,
		Field:       normalize.FieldPublished,
		SourceValue: "True",
		WebValue:    "False",
		Choice:      ChoiceWeb,
		Synthetic:   true,
	}
	decorate(diff, row)
	diff.Derive()
	result.Differences = append(result.Differences, diff)

	e.log.Debug().Str("id", row.ID).Str("status", string(row.Status)).Msg("synthesized publish-status difference")
}

func decorate(diff *FieldDifference, row *Row) {
	if row.Facility == nil {
		return
	}
	diff.Name = row.Facility.Name
	diff.Territory = row.Facility.Territory
	diff.Division = row.Facility.Division
	diff.PropertyType = row.Facility.PropertyType
}

func summarize(result *Result) {
	for _, row := range result.Rows {
		switch row.Status {
		case StatusMatched:
			result.Summary.Matched++
		case StatusSourceOnly:
			result.Summary.SourceOnly++
		case StatusWebOnly:
			result.Summary.WebOnly++
		}
		if row.Facility != nil {
			result.Summary.ByTerritory[row.Facility.Territory]++
			if row.Facility.PropertyType != "" {
				result.Summary.ByPropertyType[row.Facility.PropertyType]++
			}
		}
	}
	result.Summary.Differences = len(result.Differences)
	for _, d := range result.Differences {
		if d.Synthetic {
			result.Summary.Synthetic++
		}
	}
}

func sortedIDs(f locations.Facilities) []string {
	ids := f.IDs()
	sort.Strings(ids)
	return ids
}

func sortedWebIDs(w locations.WebRecords) []string {
	ids := make([]string, 0, len(w))
	for id := range w {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortDifferences(diffs []*FieldDifference) {
	sort.Slice(diffs, func(i, j int) bool {
		if diffs[i].ID != diffs[j].ID {
			return diffs[i].ID < diffs[j].ID
		}
		return diffs[i].Field < diffs[j].Field
	})
}
