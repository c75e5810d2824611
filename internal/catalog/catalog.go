// Package catalog loads the settlement list from cache or OpenStreetMap.
package catalog

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/elmswell/villagesigns/internal/config"
	"github.com/elmswell/villagesigns/internal/geo"

	"github.com/rs/zerolog/log"
)

// Place classifies a settlement by its OSM place tag.
type Place string

const (
	PlaceHamlet  Place = "hamlet"
	PlaceVillage Place = "village"
	PlaceTown    Place = "town"
	PlaceCity    Place = "city"
)

// Settlement is a named place inside the configured county. The catalog is
// read-only input for the rest of the pipeline.
type Settlement struct {
	Name      string `json:"name"`
	geo.Point
	Place Place `json:"place"`
}

// UnavailableError indicates that neither the cache nor the remote fetch
// could produce a settlement list. This is fatal for the whole run.
type UnavailableError struct {
	CachePath string
	FetchErr  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("settlement catalog unavailable (cache %q unusable, fetch failed: %v)",
		e.CachePath, e.FetchErr)
}

func (e *UnavailableError) Unwrap() error {
	return e.FetchErr
}

// Load returns the settlement catalog, sorted by name.
//
// Unless refresh is requested, the JSON cache is tried first; a missing or
// unparseable cache falls through to a fresh Overpass fetch whose result is
// persisted back to the cache. If the fetch fails, a readable cache is still
// used as a degraded fallback; only when both fail is UnavailableError
// returned.
func Load(client *http.Client, cfg *config.Config, refresh bool) ([]Settlement, error) {
	cachePath := CachePath(cfg.DataDir)

	if !refresh {
		settlements, err := readCache(cachePath)
		if err == nil {
			log.Info().
				Int("settlements", len(settlements)).
				Str("cache", cachePath).
				Msg("Loaded settlements from cache")
			return settlements, nil
		}
		log.Debug().Err(err).Str("cache", cachePath).Msg("Cache unusable, fetching")
	}

	settlements, fetchErr := fetchOverpass(client, cfg)
	if fetchErr != nil {
		// Degrade to the cache even when a refresh was requested.
		if cached, err := readCache(cachePath); err == nil {
			log.Warn().
				Err(fetchErr).
				Int("settlements", len(cached)).
				Msg("Fetch failed, using cached settlements")
			return cached, nil
		}
		return nil, &UnavailableError{CachePath: cachePath, FetchErr: fetchErr}
	}

	if err := writeCache(cachePath, settlements); err != nil {
		log.Warn().Err(err).Str("cache", cachePath).Msg("Failed to write settlement cache")
	}

	log.Info().
		Int("settlements", len(settlements)).
		Str("county", cfg.County).
		Msg("Fetched settlements from OpenStreetMap")

	return settlements, nil
}

// normalize drops unnamed features, deduplicates by name (first wins) and
// sorts the result by name for reproducible output.
func normalize(settlements []Settlement) []Settlement {
	seen := make(map[string]bool, len(settlements))
	out := make([]Settlement, 0, len(settlements))

	for _, s := range settlements {
		if s.Name == "" || seen[s.Name] {
			continue
		}
		if !s.Point.Valid() {
			log.Debug().Str("name", s.Name).Msg("Settlement has invalid coordinates, dropping")
			continue
		}
		seen[s.Name] = true
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}
