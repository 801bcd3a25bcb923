package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/redshield/locsync/pkg/errors"
	"github.com/redshield/locsync/pkg/ledger"
)

// FileStore keeps the correction document in one JSON file. Saves go
// through a temp file and rename, so readers never observe a torn
// document.
type FileStore struct {
	Path string
}

// NewFileStore creates a FileStore at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load implements ledger.Store. A missing file is an empty store, not an
// error.
func (s *FileStore) Load(_ context.Context) ([]ledger.Correction, time.Time, error) {
	raw, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, errors.NewStoreError("load", "file", err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, time.Time{}, errors.NewStoreError("load", "file", err)
	}

	updated := time.Time{}
	if doc.LastUpdated != nil {
		updated = *doc.LastUpdated
	}
	return doc.Data, updated, nil
}

// Save implements ledger.Store with full-overwrite semantics.
func (s *FileStore) Save(_ context.Context, corrections []ledger.Correction) error {
	raw, err := json.MarshalIndent(NewDocument(corrections, time.Now().UTC()), "", "  ")
	if err != nil {
		return errors.NewStoreError("save", "file", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return errors.NewStoreError("save", "file", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return errors.NewStoreError("save", "file", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return errors.NewStoreError("save", "file", err)
	}
	return nil
}
