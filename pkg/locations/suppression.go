package locations

// SuppressionEntry marks a facility identifier that must not be published
// to the web CMS. Duplicate and DoNotImport are distinct upstream signals
// and are kept separate rather than collapsed into one outcome.
type SuppressionEntry struct {
	ID          string
	Reason      string
	Duplicate   bool
	DoNotImport bool
}

// SuppressionList is a keyed set of suppression entries plus a running
// reason breakdown for reporting. At most one entry per identifier; the
// last-loaded entry wins when the source file repeats an identifier.
type SuppressionList struct {
	entries map[string]SuppressionEntry
	reasons map[string]int
}

// NewSuppressionList creates an empty suppression list.
func NewSuppressionList() *SuppressionList {
	return &SuppressionList{
		entries: make(map[string]SuppressionEntry),
		reasons: make(map[string]int),
	}
}

// Add records an entry, replacing any earlier entry for the same
// identifier and adjusting the reason breakdown.
func (s *SuppressionList) Add(entry SuppressionEntry) {
	if entry.ID == "" {
		return
	}
	if prev, ok := s.entries[entry.ID]; ok {
		s.reasons[prev.Reason]--
		if s.reasons[prev.Reason] <= 0 {
			delete(s.reasons, prev.Reason)
		}
	}
	s.entries[entry.ID] = entry
	s.reasons[entry.Reason]++
}

// Lookup returns the entry for an identifier, if present.
func (s *SuppressionList) Lookup(id string) (SuppressionEntry, bool) {
	if s == nil {
		return SuppressionEntry{}, false
	}
	entry, ok := s.entries[id]
	return entry, ok
}

// Len returns the number of suppressed identifiers.
func (s *SuppressionList) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Reasons returns the reason→count breakdown. The map is the list's own
// aggregate; callers must not mutate it.
func (s *SuppressionList) Reasons() map[string]int {
	if s == nil {
		return nil
	}
	return s.reasons
}
