package reconcile

import (
	"github.com/redshield/locsync/pkg/extract"
	"github.com/redshield/locsync/pkg/locations"
	"github.com/redshield/locsync/pkg/normalize"
)

// ComparedField maps one logical field to where each system keeps it: a
// nested path into the facility payload, a flattened key in the web-CMS
// primary export, and a plain column name in the tabular exports.
type ComparedField struct {
	Field        normalize.Field
	FacilityPath string
	WebKey       string
	WebColumn    string
}

// DefaultFields is the compared field set. Coordinates are listed even
// though coordinate differences are never surfaced; keeping them in the set
// documents that the skip is policy, not an oversight. The site title has
// no facility-side counterpart of its own and compares against the
// facility name. The CMS keeps open hours under hours_of_operation; only
// the primary export carries it, so the two trailing entries have no
// tabular column.
func DefaultFields() []ComparedField {
	return []ComparedField{
		{Field: normalize.FieldName, FacilityPath: "name", WebKey: "Column1.content.name", WebColumn: "name"},
		{Field: normalize.FieldAddress, FacilityPath: "address1", WebKey: "Column1.content.address", WebColumn: "address"},
		{Field: normalize.FieldLatitude, FacilityPath: "location.latitude", WebKey: "Column1.content.latitude", WebColumn: "latitude"},
		{Field: normalize.FieldLongitude, FacilityPath: "location.longitude", WebKey: "Column1.content.longitude", WebColumn: "longitude"},
		{Field: normalize.FieldZip, FacilityPath: "zip.zipcode", WebKey: "Column1.content.zipcode", WebColumn: "zipcode"},
		{Field: normalize.FieldPhone, FacilityPath: "phoneNumber", WebKey: "Column1.content.contact_number", WebColumn: "contact_number"},
		{Field: normalize.FieldSiteTitle, FacilityPath: "name", WebKey: "Column1.content.siteTitle"},
		{Field: normalize.FieldOpenHours, FacilityPath: "openHoursText", WebKey: "Column1.content.hours_of_operation"},
	}
}

// facilityValue extracts one side of a comparison from the facility payload.
// Absence is distinct from an empty value.
func facilityValue(rec *locations.FacilityRecord, cf ComparedField) (any, bool) {
	if rec == nil || rec.Raw == nil {
		return nil, false
	}
	return extract.Value(rec.Raw, cf.FacilityPath)
}

// webValue extracts one side of a comparison from a web record, trying the
// primary export's flattened key first and the tabular column name second.
func webValue(rec *locations.WebRecord, cf ComparedField) (any, bool) {
	if rec == nil || rec.Raw == nil {
		return nil, false
	}
	if v, ok := extract.Flat(rec.Raw, cf.WebKey); ok {
		return v, true
	}
	return extract.Flat(rec.Raw, cf.WebColumn)
}
