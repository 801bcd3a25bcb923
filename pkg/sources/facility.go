package sources

import (
	"context"
	"encoding/json"

	"github.com/redshield/locsync/pkg/errors"
	"github.com/redshield/locsync/pkg/extract"
	"github.com/redshield/locsync/pkg/identity"
	"github.com/redshield/locsync/pkg/locations"
)

// LoadFacilities loads every configured facility partition. Partitions are
// independently fallible: one unreadable partition is recorded as a
// failure and the remaining partitions still load.
func (l *Loader) LoadFacilities(ctx context.Context, ds *locations.Dataset) error {
	if err := l.config.Validate(); err != nil {
		return err
	}

	var firstErr error
	for _, partition := range l.config.Partitions {
		if err := l.loadFacilityPartition(ctx, ds, partition); err != nil {
			l.log.Warn().Str("partition", partition).Err(err).Msg("facility partition unavailable")
			ds.Failures = append(ds.Failures, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	// Partition failures are already recorded individually; only report
	// total failure upward.
	if firstErr != nil && len(ds.Facilities) == 0 {
		return errors.WrapSource("facility", "", firstErr)
	}
	return nil
}

func (l *Loader) loadFacilityPartition(ctx context.Context, ds *locations.Dataset, partition string) error {
	path := l.config.FacilityPath(partition)
	raw, err := l.fetcher.Fetch(ctx, path)
	if err != nil {
		return err
	}

	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return errors.WrapParse("json", path, err)
	}

	loaded := 0
	for i, row := range rows {
		rec, ok := facilityRecord(row, partition)
		if !ok {
			l.log.Warn().Str("partition", partition).Int("index", i).Msg("facility record without identifier, dropped")
			continue
		}
		ds.Facilities[rec.ID] = rec
		loaded++
	}

	l.log.Debug().Str("partition", partition).Int("records", loaded).Msg("facility partition loaded")
	return nil
}

func facilityRecord(row map[string]any, partition string) (*locations.FacilityRecord, bool) {
	id := identity.Canonical(scalarString(row["id"]))
	if id == "" {
		return nil, false
	}

	rec := &locations.FacilityRecord{
		ID:           id,
		Name:         extract.String(row["name"]),
		Address1:     extract.String(row["address1"]),
		City:         extract.String(row["city"]),
		StateCode:    extract.StringAt(row, "state.shortCode"),
		StateName:    extract.StringAt(row, "state.name"),
		Zip:          extract.StringAt(row, "zip.zipcode"),
		Phone:        extract.String(row["phoneNumber"]),
		Email:        extract.StringAt(row, "email.address"),
		Division:     extract.StringAt(row, "location.division.name"),
		PropertyType: extract.StringAt(row, "wm4SiteType.name"),
		Published:    publishedFlag(row["published"]),
		Territory:    partition,
		Raw:          row,
	}

	rec.Services = facilityServices(row["services"])
	return rec, true
}

// facilityServices flattens the services array to its names. Entries come
// as {name: ...} objects but occasionally as bare strings.
func facilityServices(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var names []string
	for _, entry := range list {
		if name := extract.Name(entry); name != nil && *name != "" {
			names = append(names, *name)
		}
	}
	return names
}
