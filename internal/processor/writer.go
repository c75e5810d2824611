package processor

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	mjson "github.com/tdewolff/minify/v2/json"
)

// WriteJSON writes the report dataset for the static site. With compact set
// the payload is minified, otherwise indented for readable diffs.
func WriteJSON(report Report, path string, compact bool) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if compact {
		m := minify.New()
		m.AddFunc("application/json", mjson.Minify)

		var buf bytes.Buffer
		if err := m.Minify("application/json", &buf, bytes.NewReader(data)); err != nil {
			return err
		}
		data = buf.Bytes()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}

	log.Info().
		Str("path", path).
		Int("visited", report.Stats.Visited).
		Int("total", report.Stats.Total).
		Msg("Report written")

	return nil
}

// WriteCSV writes the unvisited settlements sorted by distance from home,
// nearest first. Ties keep name order for stable output.
func WriteCSV(report Report, path string) error {
	rows := make([]UnvisitedEntry, len(report.Unvisited))
	copy(rows, report.Unvisited)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].DistanceKM < rows[j].DistanceKM
	})

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Settlement", "Distance from home (km)"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{row.Name, strconv.FormatFloat(row.DistanceKM, 'f', 1, 64)}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()

	return w.Error()
}
