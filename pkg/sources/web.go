package sources

import (
	"context"
	"encoding/json"

	"github.com/redshield/locsync/pkg/errors"
	"github.com/redshield/locsync/pkg/extract"
	"github.com/redshield/locsync/pkg/identity"
	"github.com/redshield/locsync/pkg/locations"
	"github.com/redshield/locsync/pkg/tabular"
)

// webContentKey prefixes the flattened keys the web-CMS primary export
// uses, e.g. "Column1.content.name".
const webContentKey = "Column1.content."

// LoadWebPrimary loads the web-CMS primary (locations) export. The payload
// is JSON, either a bare array or wrapped as {data:[...]}; records carry
// dot-flattened keys.
func (l *Loader) LoadWebPrimary(ctx context.Context, ds *locations.Dataset) error {
	path := l.config.WebPrimaryPath
	raw, err := l.fetcher.Fetch(ctx, path)
	if err != nil {
		return errors.WrapSource("web-primary", path, err)
	}

	rows, err := webPrimaryRows(raw)
	if err != nil {
		return errors.WrapSource("web-primary", path, errors.WrapParse("json", path, err))
	}

	count := 0
	for i, row := range rows {
		rec, ok := webPrimaryRecord(row)
		if !ok {
			l.log.Debug().Int("index", i).Msg("web record without any identifier, dropped")
			continue
		}
		if ds.Web.Insert(rec) {
			count++
		}
	}

	ds.WebSourceCounts[locations.WebSourcePrimary] = count
	l.log.Debug().Int("records", count).Msg("web primary export loaded")
	return nil
}

// webPrimaryRows unwraps the export envelope.
func webPrimaryRows(raw []byte) ([]map[string]any, error) {
	var wrapper struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil && wrapper.Data != nil {
		return wrapper.Data, nil
	}

	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func webPrimaryRecord(row map[string]any) (*locations.WebRecord, bool) {
	facilityID := identity.Canonical(extract.FlatString(row, webContentKey+"gdos_id"))
	cmsID := identity.Canonical(extract.FlatString(row, webContentKey+"zid"))

	key, _ := identity.Resolve(facilityID, cmsID)
	if key == "" {
		return nil, false
	}

	listed, _ := extract.Flat(row, webContentKey+"listed")

	return &locations.WebRecord{
		ID:           key,
		FacilityID:   facilityID,
		CMSID:        cmsID,
		Name:         extract.FlatString(row, webContentKey+"name"),
		Address:      extract.FlatString(row, webContentKey+"address"),
		City:         extract.FlatString(row, webContentKey+"city"),
		State:        webNamed(row, "state"),
		Territory:    webNamed(row, "territory"),
		Division:     webNamed(row, "division"),
		Zip:          extract.FlatString(row, webContentKey+"zipcode"),
		Phone:        extract.FlatString(row, webContentKey+"contact_number"),
		PropertyType: extract.FlatString(row, webContentKey+"property_type"),
		Listed:       listedFlag(listed),
		LastUpdated:  extract.FlatString(row, webContentKey+"last_updated"),
		Source:       locations.WebSourcePrimary,
		Raw:          row,
	}, true
}

// rawColumns retains a tabular record's columns so downstream comparison
// can tell an absent column from an empty value.
func rawColumns(record tabular.Record) map[string]any {
	raw := make(map[string]any, len(record))
	for column, value := range record {
		raw[column] = value
	}
	return raw
}

// webNamed resolves state/territory/division, which the export emits either
// fully flattened ("Column1.content.state.data.name") or as one key holding
// a plain string or a named object.
func webNamed(row map[string]any, field string) string {
	if s := extract.FlatString(row, webContentKey+field+".data.name"); s != "" {
		return s
	}
	v, _ := extract.Flat(row, webContentKey+field)
	return extract.NameOr(v, "")
}

// LoadDivisions loads the division locations export, a delimited-text file
// joined on its gdos_id column. Records never displace identifiers the
// primary export already populated.
func (l *Loader) LoadDivisions(ctx context.Context, ds *locations.Dataset) error {
	path := l.config.DivisionListPath
	if path == "" {
		return nil
	}
	raw, err := l.fetcher.Fetch(ctx, path)
	if err != nil {
		return errors.WrapSource("division", path, err)
	}

	records, err := tabular.ParseRequiring(string(raw), "gdos_id")
	if err != nil {
		return errors.WrapSource("division", path, err)
	}

	count := 0
	for _, record := range records {
		id := identity.Canonical(record["gdos_id"])
		if id == "" {
			continue
		}
		rec := &locations.WebRecord{
			ID:         id,
			FacilityID: id,
			Name:       record["name"],
			Address:    record["address"],
			City:       record["city"],
			State:      record["state"],
			Zip:        record["zipcode"],
			Phone:      record["contact_number"],
			Division:   record["division_code"],
			Listed:     true,
			Source:     locations.WebSourceDivision,
			Raw:        rawColumns(record),
		}
		if ds.Web.Insert(rec) {
			count++
		}
	}

	ds.WebSourceCounts[locations.WebSourceDivision] = count
	l.log.Debug().Int("records", count).Msg("division export loaded")
	return nil
}

// LoadServiceAreas loads the service-area locations export. It carries the
// thinnest field set of the three; its county column stands in for city.
func (l *Loader) LoadServiceAreas(ctx context.Context, ds *locations.Dataset) error {
	path := l.config.ServiceAreaListPath
	if path == "" {
		return nil
	}
	raw, err := l.fetcher.Fetch(ctx, path)
	if err != nil {
		return errors.WrapSource("service-area", path, err)
	}

	records, err := tabular.ParseRequiring(string(raw), "gdos_id")
	if err != nil {
		return errors.WrapSource("service-area", path, err)
	}

	count := 0
	for _, record := range records {
		id := identity.Canonical(record["gdos_id"])
		if id == "" {
			continue
		}
		rec := &locations.WebRecord{
			ID:         id,
			FacilityID: id,
			Name:       record["name"],
			City:       record["county"],
			State:      record["state"],
			Phone:      record["contact_number"],
			Listed:     true,
			Source:     locations.WebSourceServiceArea,
			Raw:        rawColumns(record),
		}
		if ds.Web.Insert(rec) {
			count++
		}
	}

	ds.WebSourceCounts[locations.WebSourceServiceArea] = count
	l.log.Debug().Int("records", count).Msg("service-area export loaded")
	return nil
}
