// Package sources loads the five data origins (facility-system partition
// exports, the web-CMS primary export, the division and service-area
// exports, and the suppression list) into one locations.Dataset. Every
// loader is independently fallible: a source that cannot be loaded
// contributes an empty set and a logged warning, never an aborted run.
package sources

import (
	"github.com/redshield/locsync/pkg/errors"
)

// Config enumerates the recognized loader inputs explicitly; there are no
// implicit defaults buried in call sites.
type Config struct {
	// Partitions are the facility-system territory partitions, e.g.
	// USS, USC, USE, USW. Partition identity is positional metadata: it
	// tags every record loaded from that partition's file.
	Partitions []string `yaml:"partitions" mapstructure:"partitions"`

	// FacilityPathPrefix and FacilityPathSuffix bracket the partition code
	// to form each partition's path, e.g. "gdos/GDOS-" + "USS" + "-020726.json".
	FacilityPathPrefix string `yaml:"facility_path_prefix" mapstructure:"facility_path_prefix"`
	FacilityPathSuffix string `yaml:"facility_path_suffix" mapstructure:"facility_path_suffix"`

	// WebPrimaryPath is the web-CMS primary (locations) export.
	WebPrimaryPath string `yaml:"web_primary_path" mapstructure:"web_primary_path"`

	// DivisionListPath and ServiceAreaListPath are the two tabular web-CMS
	// exports. They load after the primary export; an identifier already
	// present is never overwritten.
	DivisionListPath    string `yaml:"division_list_path" mapstructure:"division_list_path"`
	ServiceAreaListPath string `yaml:"service_area_list_path" mapstructure:"service_area_list_path"`

	// SuppressionListPath is the do-not-import list.
	SuppressionListPath string `yaml:"suppression_list_path" mapstructure:"suppression_list_path"`
}

// FacilityPath returns the path of one partition's export.
func (c Config) FacilityPath(partition string) string {
	return c.FacilityPathPrefix + partition + c.FacilityPathSuffix
}

// Validate checks that the config can drive a load.
func (c Config) Validate() error {
	if len(c.Partitions) == 0 {
		return errors.NewValidationError("partitions", c.Partitions, "at least one facility partition is required")
	}
	if c.WebPrimaryPath == "" {
		return errors.NewValidationError("web_primary_path", c.WebPrimaryPath, "web-CMS primary export path is required")
	}
	return nil
}
