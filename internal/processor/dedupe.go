// Package processor implements the visit pipeline: deduplication, settlement
// matching and report assembly.
package processor

import (
	"sort"
	"time"

	"github.com/elmswell/villagesigns/internal/geo"
	"github.com/elmswell/villagesigns/internal/photos"

	"github.com/rs/zerolog/log"
)

// Visit is one deduplicated geographic event representing one or more
// nearby photos. Its point and timestamp come from the representative photo.
type Visit struct {
	TakenAt time.Time
	Point   geo.Point
	Photo   photos.Record
}

// Dedupe clusters records whose pairwise distance chains stay within
// radiusM (inclusive) and keeps one representative per cluster: the record
// with the most recent timestamp, ties broken by the lexicographically
// smallest ID.
//
// Clustering is transitive: A near B and B near C merge all three even when
// A and C exceed the radius. Union-find over the distance adjacency keeps
// the result independent of input order.
func Dedupe(records []photos.Record, radiusM float64) []Visit {
	sorted := make([]photos.Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	parent := make([]int, len(sorted))
	for i := range parent {
		parent[i] = i
	}

	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			if rb < ra {
				ra, rb = rb, ra
			}
			parent[rb] = ra
		}
	}

	for i := range sorted {
		for j := i + 1; j < len(sorted); j++ {
			if geo.Distance(sorted[i].Point, sorted[j].Point) <= radiusM {
				union(i, j)
			}
		}
	}

	clusters := make(map[int][]photos.Record)
	for i, rec := range sorted {
		root := find(i)
		clusters[root] = append(clusters[root], rec)
	}

	visits := make([]Visit, 0, len(clusters))
	for _, members := range clusters {
		rep := representative(members)
		if len(members) > 1 {
			log.Debug().
				Int("photos", len(members)).
				Str("representative", rep.ID).
				Msg("Collapsed photo cluster into one visit")
		}
		visits = append(visits, Visit{
			Point:   rep.Point,
			TakenAt: rep.TakenAt,
			Photo:   rep,
		})
	}

	sort.Slice(visits, func(i, j int) bool { return visits[i].Photo.ID < visits[j].Photo.ID })

	return visits
}

// representative picks the most recent record; identical timestamps resolve
// to the smallest ID. Members arrive sorted by ID, so keeping the first of
// equals is the deterministic choice.
func representative(members []photos.Record) photos.Record {
	rep := members[0]
	for _, m := range members[1:] {
		if m.TakenAt.After(rep.TakenAt) {
			rep = m
		}
	}
	return rep
}
