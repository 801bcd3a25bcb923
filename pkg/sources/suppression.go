package sources

import (
	"context"
	"strings"

	"github.com/redshield/locsync/pkg/errors"
	"github.com/redshield/locsync/pkg/identity"
	"github.com/redshield/locsync/pkg/locations"
	"github.com/redshield/locsync/pkg/tabular"
)

// LoadSuppression loads the do-not-import list. GDOS_ID is required;
// Reason, Duplicate and DoNotImport are optional. When neither flag column
// exists, being listed at all means do-not-import.
func (l *Loader) LoadSuppression(ctx context.Context, ds *locations.Dataset) error {
	path := l.config.SuppressionListPath
	if path == "" {
		return nil
	}
	raw, err := l.fetcher.Fetch(ctx, path)
	if err != nil {
		return errors.WrapSource("suppression", path, err)
	}

	records, err := tabular.ParseRequiring(string(raw), "GDOS_ID")
	if err != nil {
		return errors.WrapSource("suppression", path, err)
	}

	for _, record := range records {
		id := identity.Canonical(record["GDOS_ID"])
		if id == "" {
			continue
		}

		reason, hasReason := record.Get("Reason")
		if !hasReason || reason == "" {
			reason = "Unknown"
		}

		entry := locations.SuppressionEntry{
			ID:          id,
			Reason:      reason,
			DoNotImport: true,
		}
		if v, ok := record.Get("Duplicate"); ok {
			entry.Duplicate = flagTrue(v)
		}
		if v, ok := record.Get("DoNotImport"); ok {
			entry.DoNotImport = flagTrue(v)
		}

		ds.Suppression.Add(entry)
	}

	l.log.Debug().Int("entries", ds.Suppression.Len()).Msg("suppression list loaded")
	return nil
}

// flagTrue reads the flag encodings the list has shipped with: "1",
// "true"/"True", and bare "yes".
func flagTrue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
