package locations

// WebSource identifies which of the web-CMS exports produced a record.
type WebSource string

// The three web-CMS origins, in load order. Load order matters: the first
// source to populate an identifier wins and later sources must not
// overwrite it.
const (
	WebSourcePrimary     WebSource = "locations"
	WebSourceDivision    WebSource = "division"
	WebSourceServiceArea WebSource = "service-area"
)

// WebRecord is one location as exported by the web CMS (Zesty). The three
// exports carry different field subsets; absent fields are zero values.
type WebRecord struct {
	// ID is the resolved join key: the shared facility-system identifier
	// when the record declares one, else the CMS-local identifier.
	ID string

	// FacilityID is the facility-system identifier the CMS record claims,
	// if any.
	FacilityID string

	// CMSID is the CMS-local identifier (zid), if any.
	CMSID string

	Name         string
	Address      string
	City         string
	State        string
	Territory    string
	Division     string
	Zip          string
	Phone        string
	PropertyType string
	Listed       bool
	LastUpdated  string

	// Source records which export produced this record.
	Source WebSource

	Raw map[string]any
}

// WebRecords is a keyed set of web records.
type WebRecords map[string]*WebRecord

// Insert adds rec under its resolved ID only if the key is not already
// present, and reports whether it was inserted. First writer wins across
// the web-CMS origins.
func (w WebRecords) Insert(rec *WebRecord) bool {
	if rec == nil || rec.ID == "" {
		return false
	}
	if _, exists := w[rec.ID]; exists {
		return false
	}
	w[rec.ID] = rec
	return true
}
