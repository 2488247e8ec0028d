package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/tatodeck/internal/audio"
	"github.com/franz/tatodeck/internal/download"
	"github.com/franz/tatodeck/internal/export"
	"github.com/franz/tatodeck/internal/store"
	"github.com/franz/tatodeck/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the whole pipeline: download, ingest, export, audio",
	Long: `Run the complete deck build for a language pair.

The four stages run in order:
1. Download the Tatoeba export archives (skipped when already present)
2. Rebuild the corpus database from the CSVs
3. Export the tab-separated Anki deck
4. Fetch the MP3 audio for every card

The audio stage is resumable: re-running skips files already on disk.`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("exports-url", download.DefaultBaseURL, "Tatoeba exports endpoint")
	runCmd.Flags().String("audio-url", audio.DefaultBaseURL, "Tatoeba audio endpoint")
	runCmd.Flags().Int("concurrency", audio.DefaultConcurrency, "number of parallel audio downloads")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	applyLogLevel()
	ctx := context.Background()

	target, base, err := languagePair()
	if err != nil {
		return err
	}

	dbPath := viper.GetString("db")
	csvDir := viper.GetString("csv-dir")
	outputDir := viper.GetString("output")

	exportsURL, _ := cmd.Flags().GetString("exports-url")
	audioURL, _ := cmd.Flags().GetString("audio-url")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	startTime := time.Now()

	// Phase 1: Download
	util.InfoLog("=== Phase 1: Download exports ===")
	util.InfoLog("CSV directory: %s", csvDir)

	d := download.New(&download.Config{
		BaseURL: exportsURL,
		Dir:     csvDir,
	})

	dlRes, err := d.Ensure(ctx)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	util.SuccessLog("Exports ready (%d fetched, %d already present)", dlRes.Downloaded, dlRes.Skipped)

	// Phase 2: Ingest
	util.InfoLog("")
	util.InfoLog("=== Phase 2: Build corpus ===")
	util.InfoLog("Database: %s", dbPath)

	db, err := store.Create(dbPath)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	if err := ingestAll(ctx, db, csvDir); err != nil {
		return err
	}

	counts, err := db.Counts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count corpus rows: %w", err)
	}
	logCounts(counts)

	// Phase 3: Export
	util.InfoLog("")
	util.InfoLog("=== Phase 3: Export deck ===")
	util.InfoLog("Pair: %s from %s", target, base)

	exporter := export.New(&export.Config{
		Store:        db,
		LearningLang: target,
		BaseLang:     base,
		OutputDir:    outputDir,
	})

	expRes, err := exporter.Export(ctx)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	util.SuccessLog("Deck written: %s (%s cards)", expRes.Path, humanize.Comma(int64(expRes.Rows)))

	if expRes.Rows == 0 {
		util.WarnLog("No sentence pairs found for %s from %s - skipping audio", target, base)
		return nil
	}

	// Phase 4: Audio
	util.InfoLog("")
	util.InfoLog("=== Phase 4: Fetch audio ===")

	audioDir := filepath.Join(outputDir, "audio")
	fetcher := audio.New(&audio.Config{
		Store:       db,
		BaseURL:     audioURL,
		Dir:         audioDir,
		Lang:        target,
		Concurrency: concurrency,
	})

	audioRes, err := fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("audio fetch failed: %w", err)
	}
	util.SuccessLog("Audio ready (%d fetched, %d already present)", audioRes.Fetched, audioRes.Skipped)
	if audioRes.Failed > 0 {
		util.WarnLog("%d downloads failed - re-run to retry them", audioRes.Failed)
	}

	// Summary
	util.InfoLog("")
	util.SuccessLog("=== Deck build complete in %v ===", time.Since(startTime).Round(time.Second))
	util.InfoLog("Deck file: %s", expRes.Path)
	util.InfoLog("Audio files: %s", audioDir)
	util.InfoLog("")
	util.InfoLog("To use the deck in Anki:")
	util.InfoLog("  1. Copy the contents of %s into your collection.media folder", audioDir)
	util.InfoLog("  2. Import %s (fields separated by tabs, allow HTML)", expRes.Path)

	return nil
}
