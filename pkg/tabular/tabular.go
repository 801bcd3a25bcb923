// Package tabular parses the delimited-text exports (division locations,
// service-area locations, the do-not-import list) into ordered records.
// Quoted fields may contain literal delimiters; a doubled quote inside a
// quoted field is an escaped quote. One malformed row is skipped without
// abandoning the rest of the file, but a file missing a required column is
// rejected whole so callers can skip the source and keep reconciling.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/redshield/locsync/pkg/errors"
	"github.com/redshield/locsync/pkg/logging"
)

// Record is one data row keyed by header name. Lookups for columns the
// file does not carry report absence rather than erroring, so callers can
// treat a missing column as "source unavailable" per field.
type Record map[string]string

// Get returns the value of a column and whether the column exists.
func (r Record) Get(column string) (string, bool) {
	v, ok := r[column]
	return v, ok
}

// Parse splits raw delimited text into records. Row 0 is the header; blank
// lines are skipped; values are trimmed with outer quotes stripped. Rows
// shorter than the header simply lack those columns. A row that fails to
// parse is logged and skipped.
func Parse(raw string) ([]Record, []string, error) {
	reader := csv.NewReader(strings.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, errors.WrapParse("csv", "", err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logging.Warn().Int("line", line).Err(err).Msg("skipping malformed row")
			continue
		}

		record := make(Record, len(headers))
		empty := true
		for i, value := range row {
			if i >= len(headers) {
				break
			}
			value = strings.TrimSpace(value)
			if value != "" {
				empty = false
			}
			record[headers[i]] = value
		}
		if empty {
			continue
		}
		records = append(records, record)
	}

	return records, headers, nil
}

// ParseRequiring parses like Parse but rejects the whole file when any of
// the required columns is absent from the header, returning an error that
// satisfies errors.IsMissingColumn. A single malformed export must not
// abort the reconciliation run; callers skip the source and continue.
func ParseRequiring(raw string, required ...string) ([]Record, error) {
	records, headers, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	for _, column := range required {
		if !slices.Contains(headers, column) {
			return nil, fmt.Errorf("%w: %s", errors.ErrMissingColumn, column)
		}
	}
	return records, nil
}
