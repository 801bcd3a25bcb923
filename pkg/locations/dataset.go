package locations

// Dataset holds everything one reconciliation run loads. It is constructed
// once per run by the source loader set and passed explicitly to the
// reconciliation engine; there is no module-level state.
type Dataset struct {
	Facilities  Facilities
	Web         WebRecords
	Suppression *SuppressionList

	// WebSourceCounts tracks how many records each web-CMS export
	// contributed after first-writer-wins de-duplication.
	WebSourceCounts map[WebSource]int

	// Failures collects per-source load errors. A non-empty slice means
	// coverage is degraded, not that the run is invalid.
	Failures []error
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		Facilities:      make(Facilities),
		Web:             make(WebRecords),
		Suppression:     NewSuppressionList(),
		WebSourceCounts: make(map[WebSource]int),
	}
}
