package normalize

import "strings"

// placeholderWebsite is the generic donation-pickup domain the web CMS
// substitutes when a location has no real website. A difference against it
// is noise, not a data conflict.
const placeholderWebsite = "https://satruck.org/"

// Ignorable reports whether a field should be excluded from diffing given
// the web-side value. This is a separate predicate from Normalize because
// it depends on which side produced the value, not on the value's shape:
//
//   - geo-coordinates: the facility system is authoritative and its values
//     are used for sync, so coordinate differences are never surfaced
//   - primary website: ignored when the web CMS carries the known
//     placeholder domain
func Ignorable(field Field, webValue any) bool {
	switch field {
	case FieldLatitude, FieldLongitude:
		return true
	case FieldPrimaryWebsite:
		s, ok := webValue.(string)
		return ok && strings.EqualFold(strings.TrimSpace(s), placeholderWebsite)
	}
	return false
}
