package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointValid(t *testing.T) {
	tests := []struct {
		name  string
		point Point
		want  bool
	}{
		{"suffolk", Point{Lat: 52.2355, Lon: 0.9014}, true},
		{"equator origin", Point{}, true},
		{"north pole", Point{Lat: 90, Lon: 0}, true},
		{"date line", Point{Lat: 0, Lon: -180}, true},
		{"latitude too high", Point{Lat: 90.01, Lon: 0}, false},
		{"latitude too low", Point{Lat: -90.01, Lon: 0}, false},
		{"longitude too high", Point{Lat: 0, Lon: 180.5}, false},
		{"longitude too low", Point{Lat: 0, Lon: -181}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.point.Valid())
		})
	}
}

func TestDistance(t *testing.T) {
	elmswell := Point{Lat: 52.2355, Lon: 0.9014}

	t.Run("zero for identical points", func(t *testing.T) {
		assert.Zero(t, Distance(elmswell, elmswell))
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		a := Point{Lat: 52, Lon: 1}
		b := Point{Lat: 53, Lon: 1}
		// 6371e3 * pi / 180
		assert.InDelta(t, 111194.9, Distance(a, b), 1.0)
	})

	t.Run("symmetric", func(t *testing.T) {
		bury := Point{Lat: 52.2462, Lon: 0.7115}
		assert.Equal(t, Distance(elmswell, bury), Distance(bury, elmswell))
	})

	t.Run("kilometers", func(t *testing.T) {
		a := Point{Lat: 52, Lon: 1}
		b := Point{Lat: 53, Lon: 1}
		assert.InDelta(t, 111.1949, DistanceKM(a, b), 0.001)
	})
}
