package processor

import (
	"testing"
	"time"

	"github.com/elmswell/villagesigns/internal/geo"
	"github.com/elmswell/villagesigns/internal/photos"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// metersPerDegreeLat matches the haversine sphere: 6371e3 * pi / 180.
const metersPerDegreeLat = 111194.92664455873

var signBase = geo.Point{Lat: 52.2355, Lon: 0.9014}

// north returns a point the given number of meters due north of base.
func north(base geo.Point, meters float64) geo.Point {
	return geo.Point{Lat: base.Lat + meters/metersPerDegreeLat, Lon: base.Lon}
}

func record(id string, p geo.Point, taken time.Time) photos.Record {
	return photos.Record{ID: id, Path: "photos/" + id, Point: p, TakenAt: taken}
}

func TestDedupeChainsTransitively(t *testing.T) {
	day := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	// consecutive gaps of 40 m, but 80 m end to end
	records := []photos.Record{
		record("p1.jpg", signBase, day),
		record("p2.jpg", north(signBase, 40), day.Add(time.Hour)),
		record("p3.jpg", north(signBase, 80), day.Add(2*time.Hour)),
	}

	require.Greater(t, geo.Distance(records[0].Point, records[2].Point), 50.0)

	visits := Dedupe(records, 50)
	require.Len(t, visits, 1)
	assert.Equal(t, "p3.jpg", visits[0].Photo.ID, "most recent photo represents the visit")
	assert.Equal(t, day.Add(2*time.Hour), visits[0].TakenAt)
	assert.Equal(t, north(signBase, 80), visits[0].Point)
}

func TestDedupeBoundaryIsInclusive(t *testing.T) {
	day := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	a := record("a.jpg", signBase, day)
	b := record("b.jpg", north(signBase, 50), day.Add(time.Minute))
	gap := geo.Distance(a.Point, b.Point)

	t.Run("distance equal to radius merges", func(t *testing.T) {
		visits := Dedupe([]photos.Record{a, b}, gap)
		assert.Len(t, visits, 1)
	})

	t.Run("distance beyond radius splits", func(t *testing.T) {
		visits := Dedupe([]photos.Record{a, b}, gap*0.999999)
		assert.Len(t, visits, 2)
	})
}

func TestDedupeTimestampTieBreaksOnID(t *testing.T) {
	day := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	records := []photos.Record{
		record("zzz.jpg", signBase, day),
		record("aaa.jpg", north(signBase, 10), day),
	}

	visits := Dedupe(records, 50)
	require.Len(t, visits, 1)
	assert.Equal(t, "aaa.jpg", visits[0].Photo.ID)
}

func TestDedupeIsOrderIndependent(t *testing.T) {
	day := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	records := []photos.Record{
		record("p1.jpg", signBase, day),
		record("p2.jpg", north(signBase, 40), day.Add(time.Hour)),
		record("p3.jpg", north(signBase, 80), day.Add(2*time.Hour)),
		record("p4.jpg", north(signBase, 5000), day.Add(3*time.Hour)),
	}

	want := Dedupe(records, 50)
	require.Len(t, want, 2)

	permutations := [][]int{
		{3, 2, 1, 0},
		{1, 3, 0, 2},
		{2, 0, 3, 1},
	}
	for _, perm := range permutations {
		shuffled := make([]photos.Record, len(records))
		for i, idx := range perm {
			shuffled[i] = records[idx]
		}
		assert.Equal(t, want, Dedupe(shuffled, 50))
	}
}

func TestDedupeEmptyInput(t *testing.T) {
	assert.Empty(t, Dedupe(nil, 50))
}

func TestDedupeDistantRecordsStaySeparate(t *testing.T) {
	day := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	records := []photos.Record{
		record("a.jpg", signBase, day),
		record("b.jpg", north(signBase, 200), day),
		record("c.jpg", north(signBase, 400), day),
	}

	visits := Dedupe(records, 50)
	assert.Len(t, visits, 3)
}
