package main

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/elmswell/villagesigns/internal/catalog"
	"github.com/elmswell/villagesigns/internal/config"
	"github.com/elmswell/villagesigns/internal/logger"
	"github.com/elmswell/villagesigns/internal/photos"
	"github.com/elmswell/villagesigns/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string `short:"c" long:"config"              env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	Refresh     bool   `short:"r" long:"refresh-settlements" description:"Re-fetch settlement data from OpenStreetMap (ignores cache)"`
	Concurrency int    `short:"p" long:"concurrency"         env:"CONCURRENCY" description:"Photo extraction concurrency" default:"4"`
	Force       bool   `short:"f" long:"force"               description:"Force overwrite of existing web photos"`
	Pretty      bool   `long:"pretty"                        description:"Write indented instead of minified data.json"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	client := &http.Client{Timeout: 120 * time.Second}

	// Settlements first: without a catalog no meaningful output exists.
	settlements, err := catalog.Load(client, cfg, opts.Refresh)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load settlement catalog")
	}

	records, stats, err := photos.Scan(cfg.PhotosDir, opts.Concurrency)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.PhotosDir).Msg("Failed to scan photo directory")
	}
	log.Info().
		Int("candidates", stats.Candidates).
		Int("extracted", stats.Extracted).
		Int("skipped", stats.Skipped).
		Msg("Photo scan finished")

	visits := processor.Dedupe(records, cfg.DedupRadiusM)
	log.Info().
		Int("records", len(records)).
		Int("visits", len(visits)).
		Msg("Deduplicated photo records into visits")

	matches := processor.Match(visits, settlements, cfg.MatchRadiusKM)
	log.Info().
		Int("visits", len(visits)).
		Int("matched", len(matches)).
		Msg("Matched visits to settlements")

	report := processor.Assemble(settlements, matches, cfg.Home, time.Now())

	writeWebPhotos(cfg, matches, opts.Force)

	if err := processor.WriteJSON(report, filepath.Join(cfg.DocsDir, "data.json"), !opts.Pretty); err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}
	if err := processor.WriteCSV(report, filepath.Join(cfg.DocsDir, "unvisited.csv")); err != nil {
		log.Fatal().Err(err).Msg("Failed to write unvisited CSV")
	}

	log.Info().
		Int("visited", report.Stats.Visited).
		Int("total", report.Stats.Total).
		Msg("Build finished successfully")
}

// writeWebPhotos encodes a web-sized copy of each matched visit's
// representative photo. Encode failures lose the preview image only, never
// the visit.
func writeWebPhotos(cfg *config.Config, matches []processor.MatchResult, force bool) {
	outDir := filepath.Join(cfg.DocsDir, "photos")

	for _, m := range matches {
		src := m.Visit.Photo.Path
		if _, err := photos.EncodeWeb(src, outDir, cfg.MaxPhotoPx, cfg.WebpQuality, force); err != nil {
			log.Warn().
				Err(err).
				Str("photo", m.Visit.Photo.ID).
				Str("settlement", m.Settlement.Name).
				Msg("Failed to encode web photo")
		}
	}
}
