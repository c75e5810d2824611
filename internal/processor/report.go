package processor

import (
	"math"
	"sort"
	"time"

	"github.com/elmswell/villagesigns/internal/catalog"
	"github.com/elmswell/villagesigns/internal/geo"
	"github.com/elmswell/villagesigns/internal/photos"
)

// VisitedEntry is a settlement with at least one matched visit.
type VisitedEntry struct {
	catalog.Settlement
	Photo string `json:"photo"`
	Date  string `json:"date,omitempty"`
}

// UnvisitedEntry is a settlement with no matched visit, annotated with its
// distance from the home point for trip planning.
type UnvisitedEntry struct {
	catalog.Settlement
	DistanceKM float64 `json:"distance_km"`
}

// Stats summarizes the report.
type Stats struct {
	Visited   int    `json:"visited"`
	Total     int    `json:"total"`
	Generated string `json:"generated"`
}

// Report is the full visited/unvisited dataset consumed by the static site.
type Report struct {
	Visited   []VisitedEntry   `json:"visited"`
	Unvisited []UnvisitedEntry `json:"unvisited"`
	Stats     Stats            `json:"stats"`
}

// Assemble merges the match results with the full catalog. Every settlement
// appears exactly once, visited or not, sorted by name. A settlement with
// multiple matches keeps its most recent visit; generated is taken as a
// parameter so identical inputs produce identical reports.
func Assemble(settlements []catalog.Settlement, matches []MatchResult, home geo.Point, generated time.Time) Report {
	latest := make(map[string]MatchResult, len(matches))
	for _, m := range matches {
		cur, ok := latest[m.Settlement.Name]
		if !ok || moreRecent(m, cur) {
			latest[m.Settlement.Name] = m
		}
	}

	report := Report{
		Visited:   []VisitedEntry{},
		Unvisited: []UnvisitedEntry{},
	}

	for _, s := range settlements {
		m, visited := latest[s.Name]
		if !visited {
			report.Unvisited = append(report.Unvisited, UnvisitedEntry{
				Settlement: s,
				DistanceKM: roundKM(geo.DistanceKM(home, s.Point)),
			})
			continue
		}

		entry := VisitedEntry{
			Settlement: s,
			Photo:      "photos/" + photos.WebName(m.Visit.Photo.ID),
		}
		if !m.Visit.TakenAt.IsZero() {
			entry.Date = m.Visit.TakenAt.Format("2006-01-02")
		}
		report.Visited = append(report.Visited, entry)
	}

	sort.Slice(report.Visited, func(i, j int) bool {
		return report.Visited[i].Name < report.Visited[j].Name
	})
	sort.Slice(report.Unvisited, func(i, j int) bool {
		return report.Unvisited[i].Name < report.Unvisited[j].Name
	})

	report.Stats = Stats{
		Visited:   len(report.Visited),
		Total:     len(settlements),
		Generated: generated.Format("2006-01-02"),
	}

	return report
}

// moreRecent reports whether a should replace b as a settlement's
// representative match. Equal timestamps resolve by photo ID.
func moreRecent(a, b MatchResult) bool {
	if a.Visit.TakenAt.Equal(b.Visit.TakenAt) {
		return a.Visit.Photo.ID < b.Visit.Photo.ID
	}
	return a.Visit.TakenAt.After(b.Visit.TakenAt)
}

// roundKM rounds to one decimal, matching the precision shown on the site.
func roundKM(km float64) float64 {
	return math.Round(km*10) / 10
}
