package reconcile

import (
	"github.com/redshield/locsync/pkg/locations"
	"github.com/redshield/locsync/pkg/normalize"
)

// Status classifies a reconciliation row by which systems carry the record.
type Status string

// Row statuses.
const (
	StatusMatched    Status = "matched"
	StatusSourceOnly Status = "source-only"
	StatusWebOnly    Status = "web-only"
)

// Choice names the side a reviewer picked for one field difference.
type Choice string

// The two sides. ChoiceSource is the default for ordinary differences (the
// facility system is authoritative); ChoiceWeb is the default for synthetic
// publish-status rows.
const (
	ChoiceSource Choice = "GDOS"
	ChoiceWeb    Choice = "Zesty"
)

// Row joins zero-or-one facility record with zero-or-one web record under a
// single resolved identifier. Every identifier present in either system
// appears in exactly one row.
type Row struct {
	ID     string
	Status Status

	Facility *locations.FacilityRecord
	Web      *locations.WebRecord

	Suppressed        bool
	SuppressionReason string
	Duplicate         bool
	DoNotImport       bool
}

// FieldDifference is one field whose two sides disagree after
// normalization, or a synthetic publish-status action manufactured by
// policy. Choice and FinalValue are mutated only by the correction ledger.
type FieldDifference struct {
	ID    string
	Field normalize.Field

	SourceValue string
	WebValue    string

	Choice     Choice
	FinalValue string

	// Synthetic marks a difference manufactured by the suppression policy
	// rather than observed from a raw field mismatch.
	Synthetic bool

	// Display metadata carried from the facility record for reporting.
	Name         string
	Territory    string
	Division     string
	PropertyType string
}

// Derive recomputes FinalValue from the current choice.
func (d *FieldDifference) Derive() {
	if d.Choice == ChoiceWeb {
		d.FinalValue = d.WebValue
		return
	}
	d.FinalValue = d.SourceValue
}

// Result is the outcome of one reconciliation run.
type Result struct {
	Rows        []*Row
	Differences []*FieldDifference
	Summary     Summary
}

// Summary aggregates one run for reporting.
type Summary struct {
	Matched    int
	SourceOnly int
	WebOnly    int

	Differences int
	Synthetic   int

	ByTerritory    map[string]int
	ByPropertyType map[string]int

	WebSourceCounts    map[locations.WebSource]int
	SuppressionReasons map[string]int
}

// Difference returns the difference for an (identifier, field) pair, if
// present.
func (r *Result) Difference(id string, field normalize.Field) (*FieldDifference, bool) {
	for _, d := range r.Differences {
		if d.ID == id && d.Field == field {
			return d, true
		}
	}
	return nil, false
}

// Remove deletes a difference from the result. Used when a reviewer reverts
// a synthetic row to the source side: it no longer represents an open
// action item.
func (r *Result) Remove(diff *FieldDifference) {
	for i, d := range r.Differences {
		if d == diff {
			r.Differences = append(r.Differences[:i], r.Differences[i+1:]...)
			if diff.Synthetic {
				r.Summary.Synthetic--
			}
			r.Summary.Differences--
			return
		}
	}
}
