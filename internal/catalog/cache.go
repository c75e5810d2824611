package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// CachePath returns the settlement cache location inside the data directory.
func CachePath(dataDir string) string {
	return filepath.Join(dataDir, "settlements.json")
}

// readCache deserializes the settlement cache. The result passes through the
// same normalization as fetched data so stale caches from older runs still
// come out deduplicated and sorted.
func readCache(path string) ([]Settlement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var settlements []Settlement
	if err := json.Unmarshal(data, &settlements); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return normalize(settlements), nil
}

// writeCache persists the settlement list as indented JSON.
func writeCache(path string, settlements []Settlement) error {
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

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	return enc.Encode(settlements)
}
