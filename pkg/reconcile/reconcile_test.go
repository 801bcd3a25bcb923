package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redshield/locsync/pkg/locations"
	"github.com/redshield/locsync/pkg/normalize"
)

func facility(id string, fields map[string]any) *locations.FacilityRecord {
	raw := map[string]any{"id": id}
	rec := &locations.FacilityRecord{ID: id, Published: true, Raw: raw}
	for k, v := range fields {
		raw[k] = v
	}
	if name, ok := fields["name"].(string); ok {
		rec.Name = name
	}
	if published, ok := fields["published"].(bool); ok {
		rec.Published = published
	}
	return rec
}

func webPrimary(id string, fields map[string]any) *locations.WebRecord {
	raw := make(map[string]any, len(fields))
	for k, v := range fields {
		raw["Column1.content."+k] = v
	}
	return &locations.WebRecord{
		ID:     id,
		Source: locations.WebSourcePrimary,
		Raw:    raw,
	}
}

func dataset() *locations.Dataset {
	return locations.NewDataset()
}

func TestReconcileNilDataset(t *testing.T) {
	_, err := New().Reconcile(nil)
	require.Error(t, err)
}

func TestReconcileRowCompleteness(t *testing.T) {
	ds := dataset()
	ds.Facilities["1"] = facility("1", nil)
	ds.Facilities["2"] = facility("2", nil)
	ds.Web["2"] = webPrimary("2", nil)
	ds.Web["7-zzz"] = webPrimary("7-zzz", nil)

	result, err := New().Reconcile(ds)
	require.NoError(t, err)

	require.Len(t, result.Rows, 3)
	seen := map[string]Status{}
	for _, row := range result.Rows {
		_, dup := seen[row.ID]
		require.False(t, dup, "identifier %s appears twice", row.ID)
		seen[row.ID] = row.Status
	}
	assert.Equal(t, StatusSourceOnly, seen["1"])
	assert.Equal(t, StatusMatched, seen["2"])
	assert.Equal(t, StatusWebOnly, seen["7-zzz"])

	assert.Equal(t, 1, result.Summary.Matched)
	assert.Equal(t, 1, result.Summary.SourceOnly)
	assert.Equal(t, 1, result.Summary.WebOnly)
}

func TestReconcileOrganicDifference(t *testing.T) {
	ds := dataset()
	ds.Facilities["1"] = facility("1", map[string]any{
		"name":     "North Center",
		"address1": "1 Main St",
	})
	ds.Web["1"] = webPrimary("1", map[string]any{
		"name":    "North Center",
		"address": "2 Oak Ave",
	})

	result, err := New().Reconcile(ds)
	require.NoError(t, err)

	require.Len(t, result.Differences, 1)
	diff := result.Differences[0]
	assert.Equal(t, normalize.FieldAddress, diff.Field)
	assert.Equal(t, "1 Main St", diff.SourceValue)
	assert.Equal(t, "2 Oak Ave", diff.WebValue)
	assert.Equal(t, ChoiceSource, diff.Choice)
	assert.Equal(t, "1 Main St", diff.FinalValue)
	assert.False(t, diff.Synthetic)
}

func TestReconcileNameSynonymFolds(t *testing.T) {
	ds := dataset()
	ds.Facilities["1001"] = facility("1001", map[string]any{"name": "Thrift Store"})
	ds.Web["1001"] = webPrimary("1001", map[string]any{"name": "Family Store", "listed": true})

	result, err := New().Reconcile(ds)
	require.NoError(t, err)

	require.Len(t, result.Rows, 1)
	assert.Equal(t, StatusMatched, result.Rows[0].Status)
	assert.Empty(t, result.Differences)
}

func TestReconcileSiteTitleAndHoursDiff(t *testing.T) {
	ds := dataset()
	ds.Facilities["1"] = facility("1", map[string]any{
		"name":          "North Center",
		"openHoursText": "Mon 9-5\nTue 9-5",
	})
	ds.Web["1"] = webPrimary("1", map[string]any{
		"siteTitle":          "Totally Different Title",
		"hours_of_operation": "Closed forever",
	})

	result, err := New().Reconcile(ds)
	require.NoError(t, err)

	require.Len(t, result.Differences, 2)
	hours := result.Differences[0]
	assert.Equal(t, normalize.FieldOpenHours, hours.Field)
	assert.Equal(t, "Mon 9-5\nTue 9-5", hours.SourceValue)
	assert.Equal(t, "Closed forever", hours.WebValue)

	title := result.Differences[1]
	assert.Equal(t, normalize.FieldSiteTitle, title.Field)
	assert.Equal(t, "North Center", title.SourceValue)
	assert.Equal(t, "Totally Different Title", title.WebValue)
}

func TestReconcileHoursLineBreaksFold(t *testing.T) {
	ds := dataset()
	ds.Facilities["1"] = facility("1", map[string]any{"openHoursText": "Mon 9-5\nTue 9-5"})
	ds.Web["1"] = webPrimary("1", map[string]any{"hours_of_operation": "Mon 9-5 Tue 9-5"})

	result, err := New().Reconcile(ds)
	require.NoError(t, err)
	assert.Empty(t, result.Differences)
}

func TestReconcileCoordinatesNeverDiff(t *testing.T) {
	ds := dataset()
	ds.Facilities["1"] = facility("1", map[string]any{
		"location": map[string]any{"latitude": 32.77, "longitude": -96.79},
	})
	ds.Web["1"] = webPrimary("1", map[string]any{
		"latitude":  "33.00",
		"longitude": "-97.00",
	})

	result, err := New().Reconcile(ds)
	require.NoError(t, err)
	assert.Empty(t, result.Differences)
}

func TestReconcilePlaceholderWebsiteIgnored(t *testing.T) {
	fields := append(DefaultFields(), ComparedField{
		Field:        normalize.FieldPrimaryWebsite,
		FacilityPath: "primaryWebsite",
		WebKey:       "Column1.content.primaryWebsite",
		WebColumn:    "primaryWebsite",
	})

	ds := dataset()
	ds.Facilities["1"] = facility("1", map[string]any{"primaryWebsite": "https://example.org/center"})
	ds.Web["1"] = webPrimary("1", map[string]any{"primaryWebsite": "https://satruck.org/"})

	result, err := New(WithFields(fields)).Reconcile(ds)
	require.NoError(t, err)
	assert.Empty(t, result.Differences)
}

func TestReconcileAbsentSideSkipped(t *testing.T) {
	ds := dataset()
	ds.Facilities["1"] = facility("1", map[string]any{
		"zip": map[string]any{"zipcode": "75001"},
	})
	// The web record carries no zipcode key at all.
	ds.Web["1"] = webPrimary("1", map[string]any{"name": "x"})

	result, err := New().Reconcile(ds)
	require.NoError(t, err)
	assert.Empty(t, result.Differences)
}

func TestSyntheticDifferenceForSuppressedMatch(t *testing.T) {
	ds := dataset()
	ds.Facilities["1"] = facility("1", map[string]any{"name": "Center"})
	ds.Web["1"] = webPrimary("1", map[string]any{"name": "Center"})
	ds.Suppression.Add(locations.SuppressionEntry{ID: "1", Reason: "Closed", DoNotImport: true})

	result, err := New().Reconcile(ds)
	require.NoError(t, err)

	require.Len(t, result.Differences, 1)
	diff := result.Differences[0]
	assert.Equal(t, normalize.FieldPublished, diff.Field)
	assert.Equal(t, "True", diff.SourceValue)
	assert.Equal(t, "False", diff.WebValue)
	assert.Equal(t, ChoiceWeb, diff.Choice)
	assert.Equal(t, "False", diff.FinalValue)
	assert.True(t, diff.Synthetic)
	assert.Equal(t, 1, result.Summary.Synthetic)
}

func TestSyntheticDifferenceForDuplicateMatch(t *testing.T) {
	ds := dataset()
	ds.Facilities["1"] = facility("1", nil)
	ds.Web["1"] = webPrimary("1", nil)
	ds.Suppression.Add(locations.SuppressionEntry{ID: "1", Reason: "Duplicate entry", Duplicate: true})

	result, err := New().Reconcile(ds)
	require.NoError(t, err)

	require.Len(t, result.Differences, 1)
	assert.True(t, result.Differences[0].Synthetic)
}

func TestNoSyntheticForUnpublishedFacility(t *testing.T) {
	ds := dataset()
	ds.Facilities["1"] = facility("1", map[string]any{"published": false})
	ds.Web["1"] = webPrimary("1", nil)
	ds.Suppression.Add(locations.SuppressionEntry{ID: "1", Reason: "Closed", DoNotImport: true})

	result, err := New().Reconcile(ds)
	require.NoError(t, err)
	assert.Empty(t, result.Differences)
}

func TestOrphanPublishedPolicy(t *testing.T) {
	ds := dataset()
	ds.Facilities["1002"] = facility("1002", nil)
	ds.Suppression.Add(locations.SuppressionEntry{ID: "1002", Reason: "Closed", DoNotImport: true})

	result, err := New().Reconcile(ds)
	require.NoError(t, err)

	require.Len(t, result.Rows, 1)
	row := result.Rows[0]
	assert.Equal(t, StatusSourceOnly, row.Status)
	assert.True(t, row.DoNotImport)
	assert.Equal(t, "Closed", row.SuppressionReason)

	require.Len(t, result.Differences, 1)
	diff := result.Differences[0]
	assert.Equal(t, normalize.FieldPublished, diff.Field)
	assert.True(t, diff.Synthetic)
	assert.Equal(t, ChoiceWeb, diff.Choice)
}

func TestOrphanPolicyRequiresDoNotImport(t *testing.T) {
	ds := dataset()
	ds.Facilities["1"] = facility("1", nil)
	// Duplicate alone does not trigger the orphan policy; there is nothing
	// on the web side to unpublish.
	ds.Suppression.Add(locations.SuppressionEntry{ID: "1", Reason: "Duplicate entry", Duplicate: true})

	result, err := New().Reconcile(ds)
	require.NoError(t, err)
	assert.Empty(t, result.Differences)
}

func TestReconcileDeterministicOrder(t *testing.T) {
	ds := dataset()
	for _, id := range []string{"3", "1", "2"} {
		ds.Facilities[id] = facility(id, map[string]any{"name": "a", "address1": "x"})
		ds.Web[id] = webPrimary(id, map[string]any{"name": "b", "address": "y"})
	}

	first, err := New().Reconcile(ds)
	require.NoError(t, err)
	second, err := New().Reconcile(ds)
	require.NoError(t, err)

	require.Equal(t, len(first.Differences), len(second.Differences))
	for i := range first.Differences {
		assert.Equal(t, first.Differences[i].ID, second.Differences[i].ID)
		assert.Equal(t, first.Differences[i].Field, second.Differences[i].Field)
	}
	for i := 1; i < len(first.Differences); i++ {
		prev, cur := first.Differences[i-1], first.Differences[i]
		assert.True(t, prev.ID < cur.ID || (prev.ID == cur.ID && prev.Field <= cur.Field))
	}
}

func TestRemoveSyntheticDifference(t *testing.T) {
	ds := dataset()
	ds.Facilities["1"] = facility("1", nil)
	ds.Web["1"] = webPrimary("1", nil)
	ds.Suppression.Add(locations.SuppressionEntry{ID: "1", Reason: "Closed", DoNotImport: true})

	result, err := New().Reconcile(ds)
	require.NoError(t, err)
	require.Len(t, result.Differences, 1)

	result.Remove(result.Differences[0])
	assert.Empty(t, result.Differences)
	assert.Equal(t, 0, result.Summary.Differences)
	assert.Equal(t, 0, result.Summary.Synthetic)
}
