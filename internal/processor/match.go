package processor

import (
	"github.com/elmswell/villagesigns/internal/catalog"
	"github.com/elmswell/villagesigns/internal/geo"

	"github.com/rs/zerolog/log"
)

// distanceTieKM is the tolerance within which two settlement distances are
// considered equal, resolving the tie by name instead.
const distanceTieKM = 1e-9

// MatchResult pairs a visit with its nearest settlement.
type MatchResult struct {
	Visit      Visit
	Settlement catalog.Settlement
	DistanceKM float64
}

// Match assigns each visit to the nearest settlement within radiusKM
// (inclusive). Visits outside the radius are unmatched and silently dropped;
// that is expected for photos taken on open road. Equidistant settlements
// resolve to the lexicographically smaller name.
func Match(visits []Visit, settlements []catalog.Settlement, radiusKM float64) []MatchResult {
	results := make([]MatchResult, 0, len(visits))

	for _, visit := range visits {
		best, bestDist, found := nearest(visit.Point, settlements)
		if !found || bestDist > radiusKM {
			log.Info().
				Str("photo", visit.Photo.ID).
				Float64("radius_km", radiusKM).
				Msg("No settlement within radius, visit unmatched")
			continue
		}

		log.Debug().
			Str("photo", visit.Photo.ID).
			Str("settlement", best.Name).
			Float64("distance_km", bestDist).
			Msg("Matched visit to settlement")

		results = append(results, MatchResult{
			Visit:      visit,
			Settlement: best,
			DistanceKM: bestDist,
		})
	}

	return results
}

// nearest returns the closest settlement to p. Distances equal within the
// tie tolerance prefer the smaller name, independent of catalog order.
func nearest(p geo.Point, settlements []catalog.Settlement) (catalog.Settlement, float64, bool) {
	var best catalog.Settlement
	bestDist := 0.0
	found := false

	for _, s := range settlements {
		d := geo.DistanceKM(p, s.Point)

		switch {
		case !found, d < bestDist-distanceTieKM:
			best, bestDist, found = s, d, true
		case d <= bestDist+distanceTieKM && s.Name < best.Name:
			best, bestDist = s, d
		}
	}

	return best, bestDist, found
}
