// Package export renders corrected location data for downstream
// consumption: a CSV of final values for every identifier carrying at least
// one reviewer deviation, and an XLSX rendering of the same rows. Final
// values come from the correction choices; everything not overridden is
// backfilled from the facility system of record.
package export

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/redshield/locsync/pkg/extract"
	"github.com/redshield/locsync/pkg/normalize"
	"github.com/redshield/locsync/pkg/reconcile"
)

// Headers is the fixed output column set, in order.
var Headers = []string{
	"GDOS ID",
	"Name",
	"Address1",
	"Address2",
	"City",
	"State",
	"Zip",
	"PhoneNumber",
	"OpenHoursText",
	"PrimaryWebsite",
	"Published",
	"Site Title",
	"Division",
	"Territory",
}

// Row is one corrected location, fully backfilled.
type Row struct {
	ID             string
	Name           string
	Address1       string
	Address2       string
	City           string
	State          string
	Zip            string
	Phone          string
	OpenHoursText  string
	PrimaryWebsite string
	Published      string
	SiteTitle      string
	Division       string
	Territory      string
}

func (r Row) values() []string {
	return []string{
		r.ID, r.Name, r.Address1, r.Address2, r.City, r.State, r.Zip,
		r.Phone, r.OpenHoursText, r.PrimaryWebsite, r.Published,
		r.SiteTitle, r.Division, r.Territory,
	}
}

// Rows builds the export set from a reconciliation result: one row per
// identifier with at least one difference whose choice deviates from the
// default source side. Overridden fields carry their derived final value;
// the rest backfill from the facility record.
func Rows(result *reconcile.Result) []Row {
	overrides := make(map[string]map[normalize.Field]string)
	for _, diff := range result.Differences {
		if diff.Choice == reconcile.ChoiceSource {
			continue
		}
		fields := overrides[diff.ID]
		if fields == nil {
			fields = make(map[normalize.Field]string)
			overrides[diff.ID] = fields
		}
		fields[diff.Field] = diff.FinalValue
	}

	byID := make(map[string]*reconcile.Row, len(result.Rows))
	for _, row := range result.Rows {
		byID[row.ID] = row
	}

	ids := make([]string, 0, len(overrides))
	for id := range overrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([]Row, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, buildRow(id, byID[id], overrides[id]))
	}
	return rows
}

func buildRow(id string, source *reconcile.Row, overrides map[normalize.Field]string) Row {
	row := Row{ID: id}

	if source != nil && source.Facility != nil {
		facility := source.Facility
		row.Name = facility.Name
		row.Address1 = facility.Address1
		row.City = facility.City
		row.State = facility.StateCode
		row.Zip = facility.Zip
		row.Phone = facility.Phone
		row.Division = facility.Division
		row.Territory = facility.Territory
		row.SiteTitle = facility.Name
		row.Published = strconv.FormatBool(facility.Published)
		row.Address2 = extract.String(facility.Raw["address2"])
		row.OpenHoursText = extract.String(facility.Raw["openHoursText"])
		row.PrimaryWebsite = extract.String(facility.Raw["primaryWebsite"])
	}

	for field, value := range overrides {
		switch field {
		case normalize.FieldName:
			row.Name = value
		case normalize.FieldAddress:
			row.Address1 = value
		case normalize.FieldZip:
			row.Zip = value
		case normalize.FieldPhone:
			row.Phone = value
		case normalize.FieldOpenHours:
			row.OpenHoursText = value
		case normalize.FieldPrimaryWebsite:
			row.PrimaryWebsite = value
		case normalize.FieldPublished:
			row.Published = value
		case normalize.FieldSiteTitle:
			row.SiteTitle = value
		}
	}

	return row
}

// WriteCSV writes the export rows as CSV with the fixed header.
func WriteCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row.values()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
