// Package config handles configuration loading and shared defaults.
package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/elmswell/villagesigns/internal/geo"

	"gopkg.in/yaml.v3"
)

// Config represents the root configuration file structure.
type Config struct {
	// Administrative area queried for settlements
	County     string `yaml:"county,omitempty"`
	AdminLevel int    `yaml:"admin_level,omitempty"`

	OverpassURL string `yaml:"overpass_url,omitempty"`

	// Reference point for "distance from home" on unvisited settlements
	Home geo.Point `yaml:"home,omitempty"`

	PhotosDir string `yaml:"photos,omitempty"`
	DataDir   string `yaml:"data,omitempty"`
	DocsDir   string `yaml:"docs,omitempty"`

	DedupRadiusM  float64 `yaml:"dedup_radius_m,omitempty"`
	MatchRadiusKM float64 `yaml:"match_radius_km,omitempty"`

	MaxPhotoPx  int     `yaml:"max_photo_px,omitempty"`
	WebpQuality float32 `yaml:"webp_quality,omitempty"`
}

// Default returns the built-in configuration for the Suffolk build.
func Default() *Config {
	return &Config{
		County:        "Suffolk",
		AdminLevel:    6,
		OverpassURL:   "https://overpass-api.de/api/interpreter",
		Home:          geo.Point{Lat: 52.2355, Lon: 0.9014}, // Elmswell
		PhotosDir:     "photos",
		DataDir:       "data",
		DocsDir:       "docs",
		DedupRadiusM:  50,
		MatchRadiusKM: 1.5,
		MaxPhotoPx:    1200,
		WebpQuality:   85,
	}
}

// Load reads and parses the YAML configuration file from the specified path.
// A missing file is not an error: the built-in defaults are returned.
// Values omitted from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	return cfg, nil
}

// applyDefaults fills zero values left by a partial config file.
func (cfg *Config) applyDefaults() {
	def := Default()

	if cfg.County == "" {
		cfg.County = def.County
	}
	if cfg.AdminLevel <= 0 {
		cfg.AdminLevel = def.AdminLevel
	}
	if cfg.OverpassURL == "" {
		cfg.OverpassURL = def.OverpassURL
	}
	if cfg.Home == (geo.Point{}) {
		cfg.Home = def.Home
	}
	if cfg.PhotosDir == "" {
		cfg.PhotosDir = def.PhotosDir
	}
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.DocsDir == "" {
		cfg.DocsDir = def.DocsDir
	}
	if cfg.DedupRadiusM <= 0 {
		cfg.DedupRadiusM = def.DedupRadiusM
	}
	if cfg.MatchRadiusKM <= 0 {
		cfg.MatchRadiusKM = def.MatchRadiusKM
	}
	if cfg.MaxPhotoPx <= 0 {
		cfg.MaxPhotoPx = def.MaxPhotoPx
	}
	if cfg.WebpQuality <= 0 {
		cfg.WebpQuality = def.WebpQuality
	}
}
