package photos

import (
	"os"
	"time"

	"github.com/elmswell/villagesigns/internal/geo"

	"github.com/rwcarlsen/goexif/exif"
)

// extract reads a single image file and builds its Record.
//
// Files without usable GPS data are not an error: extract returns ok=false
// and the caller counts the skip. The capture timestamp falls back to the
// file modification time when EXIF has no usable date, so every record has
// a deterministic ordering key.
func extract(path, id string) (Record, bool) {
	f, err := os.Open(path)
	if err != nil {
		return Record{}, false
	}
	defer func() { _ = f.Close() }()

	x, err := exif.Decode(f)
	if err != nil {
		return Record{}, false
	}

	lat, lon, err := x.LatLong()
	if err != nil {
		return Record{}, false
	}

	point := geo.Point{Lat: lat, Lon: lon}
	if !point.Valid() {
		return Record{}, false
	}

	return Record{
		ID:      id,
		Path:    path,
		Point:   point,
		TakenAt: captureTime(x, path),
	}, true
}

// captureTime returns the embedded capture time, else the file modification
// time, else the zero time.
func captureTime(x *exif.Exif, path string) time.Time {
	if t, err := x.DateTime(); err == nil {
		return t
	}

	if info, err := os.Stat(path); err == nil {
		return info.ModTime()
	}

	return time.Time{}
}
