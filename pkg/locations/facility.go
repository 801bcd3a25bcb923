// Package locations defines the record types shared by the source loaders,
// the reconciliation engine, and the correction ledger: facility records from
// the GDOS system of record, web records from the Zesty CMS, and the
// suppression (do-not-import) list.
package locations

// FacilityRecord is one location as exported by the facility system of
// record (GDOS). Records are created once per load cycle and replaced
// wholesale on the next one; nothing mutates them in between.
//
// Raw retains the decoded JSON payload so the reconciliation engine can
// extract nested fields by path without this package enumerating every
// field the export happens to carry.
type FacilityRecord struct {
	ID           string
	Name         string
	Address1     string
	City         string
	StateCode    string
	StateName    string
	Zip          string
	Phone        string
	Email        string
	Division     string
	PropertyType string
	Services     []string
	Published    bool

	// Territory is positional metadata from the partition the record was
	// loaded from; the payload itself does not carry it.
	Territory string

	Raw map[string]any
}

// Facilities is a keyed set of facility records.
type Facilities map[string]*FacilityRecord

// IDs returns the identifiers present in the set.
func (f Facilities) IDs() []string {
	ids := make([]string, 0, len(f))
	for id := range f {
		ids = append(ids, id)
	}
	return ids
}
