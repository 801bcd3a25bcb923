package server

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/redshield/locsync/internal/store"
	"github.com/redshield/locsync/pkg/ledger"
)

// decodeDocument accepts both payload shapes the clients send: the
// canonical {data:[...], lastUpdated} document and a bare correction array.
func decodeDocument(body []byte) (store.Document, error) {
	var doc store.Document
	if err := json.Unmarshal(body, &doc); err == nil && doc.Data != nil {
		return doc, nil
	}

	var corrections []ledger.Correction
	if err := json.Unmarshal(body, &corrections); err != nil {
		return store.Document{}, err
	}
	return store.Document{Data: corrections}, nil
}

// decodeDelta parses a PATCH payload: an object keyed "<gdos_id>-<field>"
// whose values are corrections to upsert, or null to delete that key.
func decodeDelta(body []byte) (map[string]*ledger.Correction, error) {
	var delta map[string]*ledger.Correction
	if err := json.Unmarshal(body, &delta); err != nil {
		return nil, err
	}
	return delta, nil
}

// mergeDelta applies a delta to the current correction set and returns the
// merged set ordered by identifier then field.
func mergeDelta(current []ledger.Correction, delta map[string]*ledger.Correction) []ledger.Correction {
	byKey := make(map[string]ledger.Correction, len(current))
	for _, cor := range current {
		byKey[cor.ID+"\x00"+string(cor.Field)] = cor
	}
	for key, cor := range delta {
		if cor == nil {
			id, field := splitDeltaKey(key)
			delete(byKey, id+"\x00"+field)
			continue
		}
		byKey[cor.ID+"\x00"+string(cor.Field)] = *cor
	}

	next := make([]ledger.Correction, 0, len(byKey))
	for _, cor := range byKey {
		next = append(next, cor)
	}
	sort.Slice(next, func(i, j int) bool {
		if next[i].ID != next[j].ID {
			return next[i].ID < next[j].ID
		}
		return next[i].Field < next[j].Field
	})
	return next
}

// splitDeltaKey splits at the last dash; field names never contain one,
// identifiers may.
func splitDeltaKey(key string) (id, field string) {
	i := strings.LastIndex(key, "-")
	if i < 0 {
		return key, ""
	}
	return key[:i], key[i+1:]
}
