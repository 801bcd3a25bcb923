// Package normalize canonicalizes raw scalar values so that fields from the
// facility system and the web CMS can be compared without flagging
// representation-only differences (casing, whitespace, URL scheme, the
// Family/Thrift rebranding) as real discrepancies.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Field names a compared field. The constants cover the field set both
// dashboards compare; Normalize accepts any Field value.
type Field string

// Compared fields.
const (
	FieldName           Field = "name"
	FieldAddress        Field = "address"
	FieldLatitude       Field = "latitude"
	FieldLongitude      Field = "longitude"
	FieldZip            Field = "zipcode"
	FieldPhone          Field = "phone"
	FieldSiteTitle      Field = "siteTitle"
	FieldOpenHours      Field = "openHoursText"
	FieldPrimaryWebsite Field = "primaryWebsite"
	FieldPublished      Field = "published"
)

var (
	lineBreaks = regexp.MustCompile(`[\r\n]+`)
	familyWord = regexp.MustCompile(`\bfamily\b`)
)

// Normalize canonicalizes a raw scalar for comparison. It returns nil for a
// nil input and never fails. The result is deterministic and idempotent:
// normalizing an already-normalized value yields the same string.
//
// Rules, in order:
//   - string representation of the scalar, lowercased and trimmed
//   - Unicode NFC composition, so visually identical text compares equal
//   - line breaks collapsed to single spaces for the open-hours field
//   - a leading "http://" rewritten to "https://" (scheme-only differences
//     between the two systems are not real discrepancies)
//   - for the name field, the whole word "family" folded to "thrift"
//     (rebranding alias; old and new names refer to the same location)
func Normalize(value any, field Field) *string {
	if value == nil {
		return nil
	}

	s := strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
	s = norm.NFC.String(s)

	if field == FieldOpenHours {
		s = lineBreaks.ReplaceAllString(s, " ")
	}

	if strings.HasPrefix(s, "http://") {
		s = "https://" + strings.TrimPrefix(s, "http://")
	}

	if field == FieldName {
		s = familyWord.ReplaceAllString(s, "thrift")
	}

	return &s
}

// Equal reports whether two raw values normalize to the same string. Two
// nils are equal; a nil and a non-nil are not.
func Equal(a, b any, field Field) bool {
	na := Normalize(a, field)
	nb := Normalize(b, field)
	if na == nil || nb == nil {
		return na == nil && nb == nil
	}
	return *na == *nb
}
