package sources

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/redshield/locsync/pkg/locations"
	"github.com/redshield/locsync/pkg/logging"
)

// Loader runs the full source loader set against one Fetcher.
type Loader struct {
	fetcher Fetcher
	config  Config
	log     *zerolog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for load warnings.
func WithLogger(log *zerolog.Logger) Option {
	return func(l *Loader) {
		l.log = log
	}
}

// New creates a Loader for the given fetcher and config.
func New(fetcher Fetcher, config Config, opts ...Option) *Loader {
	l := &Loader{
		fetcher: fetcher,
		config:  config,
		log:     logging.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadAll loads every source into a fresh dataset and never fails: a
// source that cannot be loaded is recorded in Dataset.Failures and
// contributes nothing. The load order is fixed and correctness-relevant:
// the web-CMS primary export loads before the division export, which loads
// before the service-area export, so that the first-loaded source wins for
// any identifier the exports share.
func (l *Loader) LoadAll(ctx context.Context) *locations.Dataset {
	ds := locations.NewDataset()

	if err := l.LoadFacilities(ctx, ds); err != nil {
		l.fail(ds, "facility", err)
	}
	if err := l.LoadWebPrimary(ctx, ds); err != nil {
		l.fail(ds, "web-primary", err)
	}
	if err := l.LoadDivisions(ctx, ds); err != nil {
		l.fail(ds, "division", err)
	}
	if err := l.LoadServiceAreas(ctx, ds); err != nil {
		l.fail(ds, "service-area", err)
	}
	if err := l.LoadSuppression(ctx, ds); err != nil {
		l.fail(ds, "suppression", err)
	}

	l.log.Info().
		Int("facilities", len(ds.Facilities)).
		Int("web", len(ds.Web)).
		Int("suppressed", ds.Suppression.Len()).
		Int("failures", len(ds.Failures)).
		Msg("sources loaded")

	return ds
}

func (l *Loader) fail(ds *locations.Dataset, source string, err error) {
	l.log.Warn().Str("source", source).Err(err).Msg("source unavailable, continuing without it")
	ds.Failures = append(ds.Failures, err)
}

// scalarString renders a decoded JSON scalar as a string. JSON numbers
// decode as float64; identifiers and zip codes must not pick up a
// trailing ".0" or exponent form.
func scalarString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

// publishedFlag interprets the facility published field: absent means
// published; only an explicit false unpublishes.
func publishedFlag(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return !strings.EqualFold(strings.TrimSpace(b), "false")
	}
	return true
}

// listedFlag interprets the web-CMS listed field, which arrives as numeric
// 1, string "1", or boolean true.
func listedFlag(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.TrimSpace(b) == "1" || strings.EqualFold(strings.TrimSpace(b), "true")
	case float64:
		return b == 1
	}
	return false
}
