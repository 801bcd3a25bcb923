package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redshield/locsync/pkg/errors"
	"github.com/redshield/locsync/pkg/locations"
	"github.com/redshield/locsync/pkg/logging"
)

// mapFetcher serves sources from an in-memory path map; unknown paths
// behave like a dead origin.
type mapFetcher map[string]string

func (m mapFetcher) Fetch(_ context.Context, path string) ([]byte, error) {
	raw, ok := m[path]
	if !ok {
		return nil, errors.WrapIO("fetch", path, errors.ErrNotFound)
	}
	return []byte(raw), nil
}

func testConfig() Config {
	return Config{
		Partitions:          []string{"USS", "USW"},
		FacilityPathPrefix:  "gdos/GDOS-",
		FacilityPathSuffix:  ".json",
		WebPrimaryPath:      "web/locations.json",
		DivisionListPath:    "web/divisions.csv",
		ServiceAreaListPath: "web/service-areas.csv",
		SuppressionListPath: "gdos/do-not-import.csv",
	}
}

func TestLoadFacilitiesPartitionTagging(t *testing.T) {
	fetcher := mapFetcher{
		"gdos/GDOS-USS.json": `[
			{"id": "1001", "name": "Thrift Store", "address1": "1 Main St", "city": "Dallas", "state": {"shortCode": "TX", "name": "Texas"}, "zip": {"zipcode": "75001"}},
			{"id": "1002", "name": "Shelter", "published": false}
		]`,
		"gdos/GDOS-USW.json": `[
			{"id": "2001", "name": "Depot", "published": "false"},
			{"name": "no identifier, dropped"}
		]`,
	}

	loader := New(fetcher, testConfig())
	ds := locations.NewDataset()
	require.NoError(t, loader.LoadFacilities(context.Background(), ds))

	require.Len(t, ds.Facilities, 3)
	assert.Equal(t, "USS", ds.Facilities["1001"].Territory)
	assert.Equal(t, "USS", ds.Facilities["1002"].Territory)
	assert.Equal(t, "USW", ds.Facilities["2001"].Territory)

	assert.Equal(t, "1 Main St", ds.Facilities["1001"].Address1)
	assert.Equal(t, "TX", ds.Facilities["1001"].StateCode)
	assert.Equal(t, "75001", ds.Facilities["1001"].Zip)
}

func TestLoadFacilitiesPublishedDefault(t *testing.T) {
	fetcher := mapFetcher{
		"gdos/GDOS-USS.json": `[
			{"id": "1", "name": "implicit"},
			{"id": "2", "name": "explicit true", "published": true},
			{"id": "3", "name": "explicit false", "published": false},
			{"id": "4", "name": "string false", "published": "false"}
		]`,
		"gdos/GDOS-USW.json": `[]`,
	}

	loader := New(fetcher, testConfig())
	ds := locations.NewDataset()
	require.NoError(t, loader.LoadFacilities(context.Background(), ds))

	assert.True(t, ds.Facilities["1"].Published)
	assert.True(t, ds.Facilities["2"].Published)
	assert.False(t, ds.Facilities["3"].Published)
	assert.False(t, ds.Facilities["4"].Published)
}

func TestLoadFacilitiesPartitionFailureIsolated(t *testing.T) {
	fetcher := mapFetcher{
		// USS missing entirely.
		"gdos/GDOS-USW.json": `[{"id": "2001", "name": "Depot"}]`,
	}

	loader := New(fetcher, testConfig())
	ds := locations.NewDataset()
	require.NoError(t, loader.LoadFacilities(context.Background(), ds))

	assert.Len(t, ds.Facilities, 1)
	assert.NotEmpty(t, ds.Failures)
}

func TestLoadWebPrimaryEnvelopes(t *testing.T) {
	wrapped := `{"data": [{"Column1.content.gdos_id": "1001", "Column1.content.name": "Family Store"}]}`
	bare := `[{"Column1.content.gdos_id": "1001", "Column1.content.name": "Family Store"}]`

	for name, raw := range map[string]string{"wrapped": wrapped, "bare": bare} {
		t.Run(name, func(t *testing.T) {
			fetcher := mapFetcher{"web/locations.json": raw}
			loader := New(fetcher, testConfig())
			ds := locations.NewDataset()
			require.NoError(t, loader.LoadWebPrimary(context.Background(), ds))

			require.Len(t, ds.Web, 1)
			assert.Equal(t, "Family Store", ds.Web["1001"].Name)
			assert.Equal(t, locations.WebSourcePrimary, ds.Web["1001"].Source)
		})
	}
}

func TestLoadWebPrimaryIdentityAndListed(t *testing.T) {
	fetcher := mapFetcher{
		"web/locations.json": `[
			{"Column1.content.gdos_id": "1001", "Column1.content.zid": "7-aaa", "Column1.content.listed": 1},
			{"Column1.content.zid": "7-bbb", "Column1.content.listed": "1"},
			{"Column1.content.zid": "7-ccc", "Column1.content.listed": true},
			{"Column1.content.zid": "7-ddd", "Column1.content.listed": 0},
			{"Column1.content.name": "no identifiers at all"}
		]`,
	}

	loader := New(fetcher, testConfig())
	ds := locations.NewDataset()
	require.NoError(t, loader.LoadWebPrimary(context.Background(), ds))

	require.Len(t, ds.Web, 4)
	assert.Equal(t, "1001", ds.Web["1001"].ID)
	assert.Equal(t, "7-aaa", ds.Web["1001"].CMSID)
	assert.True(t, ds.Web["1001"].Listed)
	assert.True(t, ds.Web["7-bbb"].Listed)
	assert.True(t, ds.Web["7-ccc"].Listed)
	assert.False(t, ds.Web["7-ddd"].Listed)
	assert.Empty(t, ds.Web["7-bbb"].FacilityID)
}

func TestLoadWebPrimaryNamedShapes(t *testing.T) {
	fetcher := mapFetcher{
		"web/locations.json": `[
			{"Column1.content.gdos_id": "1", "Column1.content.state.data.name": "Texas"},
			{"Column1.content.gdos_id": "2", "Column1.content.state": "Oklahoma"},
			{"Column1.content.gdos_id": "3", "Column1.content.state": {"data": {"name": "Kansas"}}}
		]`,
	}

	loader := New(fetcher, testConfig())
	ds := locations.NewDataset()
	require.NoError(t, loader.LoadWebPrimary(context.Background(), ds))

	assert.Equal(t, "Texas", ds.Web["1"].State)
	assert.Equal(t, "Oklahoma", ds.Web["2"].State)
	assert.Equal(t, "Kansas", ds.Web["3"].State)
}

func TestFirstWriterWinsAcrossWebSources(t *testing.T) {
	fetcher := mapFetcher{
		"web/locations.json": `[{"Column1.content.gdos_id": "1001", "Column1.content.name": "Primary Name"}]`,
		"web/divisions.csv": "gdos_id,name,city,state,address,zipcode,contact_number,division_code\n" +
			"1001,Division Name,Austin,TX,2 Oak St,78701,555-0100,TXD\n" +
			"1002,Division Only,Austin,TX,3 Oak St,78702,555-0101,TXD\n",
		"web/service-areas.csv": "gdos_id,name,county,state,contact_number\n" +
			"1001,Service Name,Travis,TX,555-0200\n" +
			"1002,Service Name,Travis,TX,555-0201\n" +
			"1003,Service Only,Travis,TX,555-0202\n",
	}

	loader := New(fetcher, testConfig())
	ds := locations.NewDataset()
	require.NoError(t, loader.LoadWebPrimary(context.Background(), ds))
	require.NoError(t, loader.LoadDivisions(context.Background(), ds))
	require.NoError(t, loader.LoadServiceAreas(context.Background(), ds))

	require.Len(t, ds.Web, 3)
	assert.Equal(t, "Primary Name", ds.Web["1001"].Name)
	assert.Equal(t, locations.WebSourcePrimary, ds.Web["1001"].Source)
	assert.Equal(t, "Division Only", ds.Web["1002"].Name)
	assert.Equal(t, locations.WebSourceDivision, ds.Web["1002"].Source)
	assert.Equal(t, "Service Only", ds.Web["1003"].Name)
	assert.Equal(t, locations.WebSourceServiceArea, ds.Web["1003"].Source)

	assert.Equal(t, 1, ds.WebSourceCounts[locations.WebSourcePrimary])
	assert.Equal(t, 1, ds.WebSourceCounts[locations.WebSourceDivision])
	assert.Equal(t, 1, ds.WebSourceCounts[locations.WebSourceServiceArea])

	// The county column stands in for city on service-area records.
	assert.Equal(t, "Travis", ds.Web["1003"].City)
}

func TestLoadDivisionsMissingJoinColumn(t *testing.T) {
	fetcher := mapFetcher{
		"web/divisions.csv": "name,city,state\nSomewhere,Austin,TX\n",
	}

	loader := New(fetcher, testConfig())
	ds := locations.NewDataset()
	err := loader.LoadDivisions(context.Background(), ds)

	require.Error(t, err)
	assert.True(t, errors.IsMissingColumn(err))
	assert.Empty(t, ds.Web)
}

func TestLoadSuppression(t *testing.T) {
	fetcher := mapFetcher{
		"gdos/do-not-import.csv": "GDOS_ID,Reason,Duplicate,DoNotImport\n" +
			"1001,Closed,0,True\n" +
			"1002,Duplicate entry,1,False\n" +
			"1003,,0,True\n",
	}

	loader := New(fetcher, testConfig())
	ds := locations.NewDataset()
	require.NoError(t, loader.LoadSuppression(context.Background(), ds))

	require.Equal(t, 3, ds.Suppression.Len())

	entry, ok := ds.Suppression.Lookup("1001")
	require.True(t, ok)
	assert.Equal(t, "Closed", entry.Reason)
	assert.True(t, entry.DoNotImport)
	assert.False(t, entry.Duplicate)

	entry, _ = ds.Suppression.Lookup("1002")
	assert.True(t, entry.Duplicate)
	assert.False(t, entry.DoNotImport)

	entry, _ = ds.Suppression.Lookup("1003")
	assert.Equal(t, "Unknown", entry.Reason)

	assert.Equal(t, 1, ds.Suppression.Reasons()["Closed"])
	assert.Equal(t, 1, ds.Suppression.Reasons()["Unknown"])
}

func TestLoadSuppressionFlagColumnsAbsent(t *testing.T) {
	fetcher := mapFetcher{
		"gdos/do-not-import.csv": "GDOS_ID,Reason\n1001,Closed\n",
	}

	loader := New(fetcher, testConfig())
	ds := locations.NewDataset()
	require.NoError(t, loader.LoadSuppression(context.Background(), ds))

	entry, ok := ds.Suppression.Lookup("1001")
	require.True(t, ok)
	assert.True(t, entry.DoNotImport)
	assert.False(t, entry.Duplicate)
}

func TestLoadAllDegradesPerSource(t *testing.T) {
	fetcher := mapFetcher{
		"gdos/GDOS-USS.json": `[{"id": "1001", "name": "Thrift Store"}]`,
		"gdos/GDOS-USW.json": `[]`,
		"web/locations.json": `[{"Column1.content.gdos_id": "1001", "Column1.content.name": "Family Store"}]`,
		// divisions, service areas and suppression all unavailable
	}

	loader := New(fetcher, testConfig())
	ds := loader.LoadAll(context.Background())

	assert.Len(t, ds.Facilities, 1)
	assert.Len(t, ds.Web, 1)
	assert.Equal(t, 0, ds.Suppression.Len())
	assert.NotEmpty(t, ds.Failures)
}

func TestLoadAllWarnsOnDegradedSources(t *testing.T) {
	tl := logging.NewTestLogger(t)
	fetcher := mapFetcher{
		// USS present, USW missing; everything else unavailable.
		"gdos/GDOS-USS.json": `[{"id": "1001", "name": "Thrift Store"}]`,
		"web/locations.json": `[]`,
	}

	loader := New(fetcher, testConfig(), WithLogger(tl.Logger))
	ds := loader.LoadAll(context.Background())

	assert.Len(t, ds.Facilities, 1)
	assert.True(t, tl.Contains("facility partition unavailable"))
	assert.True(t, tl.Contains("source unavailable, continuing without it"))
	assert.True(t, tl.Contains("sources loaded"))
}
