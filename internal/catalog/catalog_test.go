package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/elmswell/villagesigns/internal/config"
	"github.com/elmswell/villagesigns/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const overpassBody = `{
  "elements": [
    {"lat": 52.2355, "lon": 0.9014, "tags": {"name": "Elmswell", "place": "village"}},
    {"lat": 52.3200, "lon": 1.0100, "tags": {"name": "Elmswell", "place": "hamlet"}},
    {"lat": 52.1872, "lon": 0.9708, "tags": {"name": "Woolpit", "place": "village"}},
    {"lat": 52.0500, "lon": 0.7400, "tags": {"place": "hamlet"}},
    {"lat": 52.2462, "lon": 0.7115, "tags": {"name": "Bury St Edmunds", "place": "town"}}
  ]
}`

// testSetup returns a config pointing at a temp data dir and the given
// Overpass handler, plus a counter of fetch requests.
func testSetup(t *testing.T, handler http.HandlerFunc) (*config.Config, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.OverpassURL = srv.URL

	return cfg, &hits
}

func TestLoadFetchesAndCaches(t *testing.T) {
	cfg, hits := testSetup(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, overpassBody)
	})

	settlements, err := Load(http.DefaultClient, cfg, false)
	require.NoError(t, err)

	// unnamed node dropped, duplicate name deduplicated, sorted by name
	require.Len(t, settlements, 3)
	assert.Equal(t, "Bury St Edmunds", settlements[0].Name)
	assert.Equal(t, PlaceTown, settlements[0].Place)
	assert.Equal(t, "Elmswell", settlements[1].Name)
	assert.Equal(t, geo.Point{Lat: 52.2355, Lon: 0.9014}, settlements[1].Point)
	assert.Equal(t, "Woolpit", settlements[2].Name)

	assert.EqualValues(t, 1, hits.Load())

	// cache round-trips exactly
	cached, err := readCache(CachePath(cfg.DataDir))
	require.NoError(t, err)
	assert.Equal(t, settlements, cached)
}

func TestLoadPrefersCache(t *testing.T) {
	cfg, hits := testSetup(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, overpassBody)
	})

	// first load populates the cache, second must not fetch again
	first, err := Load(http.DefaultClient, cfg, false)
	require.NoError(t, err)

	second, err := Load(http.DefaultClient, cfg, false)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, hits.Load())
}

func TestLoadRefreshBypassesCache(t *testing.T) {
	cfg, hits := testSetup(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, overpassBody)
	})

	_, err := Load(http.DefaultClient, cfg, false)
	require.NoError(t, err)

	_, err = Load(http.DefaultClient, cfg, true)
	require.NoError(t, err)

	assert.EqualValues(t, 2, hits.Load())
}

func TestLoadCorruptCacheFallsBackToFetch(t *testing.T) {
	cfg, hits := testSetup(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, overpassBody)
	})

	require.NoError(t, os.WriteFile(CachePath(cfg.DataDir), []byte("{not json"), 0644))

	settlements, err := Load(http.DefaultClient, cfg, false)
	require.NoError(t, err)
	assert.Len(t, settlements, 3)
	assert.EqualValues(t, 1, hits.Load())
}

func TestLoadFetchFailureDegradesToCache(t *testing.T) {
	cfg, _ := testSetup(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	seed := []Settlement{
		{Name: "Woolpit", Point: geo.Point{Lat: 52.1872, Lon: 0.9708}, Place: PlaceVillage},
	}
	require.NoError(t, writeCache(CachePath(cfg.DataDir), seed))

	// refresh requested, fetch broken: the stale cache still wins over failure
	settlements, err := Load(http.DefaultClient, cfg, true)
	require.NoError(t, err)
	assert.Equal(t, seed, settlements)
}

func TestLoadUnavailableWhenBothFail(t *testing.T) {
	cfg, _ := testSetup(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := Load(http.DefaultClient, cfg, false)
	require.Error(t, err)

	var unavailable *UnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, CachePath(cfg.DataDir), unavailable.CachePath)
	assert.Error(t, unavailable.FetchErr)
}

func TestBuildQuery(t *testing.T) {
	q := buildQuery("Suffolk", 6)
	assert.Contains(t, q, `area["name"="Suffolk"]`)
	assert.Contains(t, q, `"admin_level"="6"`)
	assert.Contains(t, q, `hamlet|village|town|city`)
}
