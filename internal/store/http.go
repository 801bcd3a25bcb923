package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redshield/locsync/pkg/errors"
	"github.com/redshield/locsync/pkg/ledger"
)

// WorkerTokenHeader authenticates mutating requests to the corrections
// service.
const WorkerTokenHeader = "X-Worker-Token"

// HTTPStore talks to the hosted corrections service: GET returns the full
// document, PUT replaces it.
type HTTPStore struct {
	URL    string
	Token  string
	Client *http.Client
}

// NewHTTPStore creates an HTTPStore for the service at url. The token is
// only required for saves.
func NewHTTPStore(url, token string) *HTTPStore {
	return &HTTPStore{
		URL:    url,
		Token:  token,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Load implements ledger.Store.
func (s *HTTPStore) Load(ctx context.Context) ([]ledger.Correction, time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, time.Time{}, errors.NewStoreError("load", "http", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, time.Time{}, errors.NewStoreError("load", "http", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, time.Time{}, errors.NewStoreError("load", "http", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, time.Time{}, errors.NewStoreError("load", "http", err)
	}

	updated := time.Time{}
	if doc.LastUpdated != nil {
		updated = *doc.LastUpdated
	}
	return doc.Data, updated, nil
}

// Save implements ledger.Store with PUT-replace semantics.
func (s *HTTPStore) Save(ctx context.Context, corrections []ledger.Correction) error {
	raw, err := json.Marshal(NewDocument(corrections, time.Now().UTC()))
	if err != nil {
		return errors.NewStoreError("save", "http", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.URL, bytes.NewReader(raw))
	if err != nil {
		return errors.NewStoreError("save", "http", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.Token != "" {
		req.Header.Set(WorkerTokenHeader, s.Token)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return errors.NewStoreError("save", "http", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusUnauthorized:
		return errors.NewStoreError("save", "http", errors.ErrUnauthorized)
	default:
		return errors.NewStoreError("save", "http", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
}
