package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/tatodeck/internal/export"
	"github.com/franz/tatodeck/internal/store"
	"github.com/franz/tatodeck/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export an Anki deck for a language pair",
	Long: `Export a tab-separated Anki deck from the corpus database.

Each row pairs a sentence in the target language with a translation in
the base language, plus a [sound:...] reference and the sentence's
tags. Only sentences with recorded audio are exported.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	applyLogLevel()
	ctx := context.Background()

	target, base, err := languagePair()
	if err != nil {
		return err
	}

	dbPath := viper.GetString("db")
	outputDir := viper.GetString("output")

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w (run 'tatodeck ingest' first)", err)
	}
	defer db.Close()

	util.InfoLog("=== Exporting deck ===")
	util.InfoLog("Pair: %s from %s", target, base)
	util.InfoLog("Output directory: %s", outputDir)

	exporter := export.New(&export.Config{
		Store:        db,
		LearningLang: target,
		BaseLang:     base,
		OutputDir:    outputDir,
	})

	start := time.Now()

	res, err := exporter.Export(ctx)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	util.SuccessLog("Export complete in %v", time.Since(start).Round(time.Millisecond))
	util.InfoLog("  Cards: %s", humanize.Comma(int64(res.Rows)))
	util.InfoLog("  Deck: %s", res.Path)
	if res.Rows == 0 {
		util.WarnLog("No sentence pairs found for %s from %s", target, base)
	}

	util.InfoLog("")
	util.InfoLog("Next step: tatodeck audio --target %s", target)

	return nil
}
