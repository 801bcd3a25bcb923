// Package identity decides the canonical join key between records from the
// facility system and the web CMS. The two systems do not share one
// universal identifier: the web-CMS primary export carries the facility
// identifier as a foreign field, the division and service-area exports
// carry it natively, and a handful of CMS-only records have no facility
// identifier at all.
package identity

import "strings"

// Resolve returns the join key for a web record given the facility-system
// identifier it declares (possibly empty) and its CMS-local identifier
// (possibly empty). When the facility identifier is present it wins and
// shared is true; otherwise the record lives in its own identity space
// under its CMS identifier and can only ever classify as web-only. A
// record with neither identifier is unresolvable (key == "") and is
// dropped at load time.
func Resolve(facilityID, cmsID string) (key string, shared bool) {
	facilityID = Canonical(facilityID)
	cmsID = Canonical(cmsID)

	if facilityID != "" {
		return facilityID, true
	}
	return cmsID, false
}

// Canonical trims an identifier to its comparable form. Identifiers are
// matched byte-for-byte after trimming; unlike field values they are never
// case-folded, since both systems emit them verbatim.
func Canonical(id string) string {
	return strings.TrimSpace(id)
}
