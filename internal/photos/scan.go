// Package photos extracts geotagged records from an image directory and
// prepares web-sized copies of representative photos.
package photos

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/elmswell/villagesigns/internal/geo"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

// Record is one geotagged photo. Immutable once extracted.
type Record struct {
	TakenAt time.Time
	ID      string // base filename, stable across runs
	Path    string
	Point   geo.Point
}

// Stats counts the outcome of a directory scan.
type Stats struct {
	Candidates int // files with a recognized image extension
	Extracted  int
	Skipped    int // no usable GPS or timestamp
}

// recognized image extensions, lower case
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
	".heic": true,
	".heif": true,
}

// Scan extracts a Record for every image in dir that carries usable GPS
// data. Extraction runs on a small worker pool; results are sorted by ID so
// directory iteration order never leaks into downstream stages.
//
// A missing directory yields an empty result, not an error.
func Scan(dir string, concurrency int) ([]Record, Stats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("dir", dir).Msg("Photo directory does not exist")
			return nil, Stats{}, nil
		}
		return nil, Stats{}, err
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			candidates = append(candidates, entry.Name())
		}
	}

	if concurrency <= 0 {
		concurrency = 1
	}

	bar := progressbar.NewOptions(len(candidates),
		progressbar.OptionSetDescription("scanning photos"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)

	jobs := make(chan string, len(candidates))
	results := make(chan Record, len(candidates))

	go func() {
		for _, name := range candidates {
			jobs <- name
		}
		close(jobs)
	}()

	var wg sync.WaitGroup

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				rec, ok := extract(filepath.Join(dir, name), name)
				if ok {
					results <- rec
				} else {
					log.Debug().Str("photo", name).Msg("No usable GPS data, skipping")
				}
				_ = bar.Add(1)
			}
		}()
	}
	wg.Wait()
	close(results)

	records := make([]Record, 0, len(candidates))
	for rec := range results {
		records = append(records, rec)
	}

	// Deterministic order regardless of worker scheduling
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	stats := Stats{
		Candidates: len(candidates),
		Extracted:  len(records),
		Skipped:    len(candidates) - len(records),
	}

	return records, stats, nil
}
