// Package store provides the correction store backends: a JSON file for
// local runs, SQLite for shared single-host deployments, and an HTTP client
// for the hosted corrections service. All backends implement ledger.Store
// with full-overwrite save semantics.
package store

import (
	"time"

	"github.com/redshield/locsync/pkg/ledger"
)

// Document is the persisted wire shape: the full correction set plus the
// time of the last overwrite.
type Document struct {
	Data        []ledger.Correction `json:"data"`
	LastUpdated *time.Time          `json:"lastUpdated"`
}

// NewDocument wraps a correction set with the current timestamp.
func NewDocument(corrections []ledger.Correction, now time.Time) Document {
	if corrections == nil {
		corrections = []ledger.Correction{}
	}
	return Document{Data: corrections, LastUpdated: &now}
}
