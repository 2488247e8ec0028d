package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/franz/tatodeck/internal/corpus"
	"github.com/franz/tatodeck/internal/store"
	"github.com/franz/tatodeck/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the pipeline",
	Long: `Show which pipeline stages have run: which export CSVs are on disk,
what the corpus database contains, and how many audio files have been
fetched so far.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	applyLogLevel()
	ctx := context.Background()

	dbPath := viper.GetString("db")
	csvDir := viper.GetString("csv-dir")
	outputDir := viper.GetString("output")

	util.InfoLog("=== Pipeline status ===")

	// Export CSVs
	util.InfoLog("")
	util.InfoLog("Export CSVs in %s:", csvDir)
	present := 0
	for _, name := range []string{corpus.SentencesFile, corpus.AudioFile, corpus.LinksFile, corpus.TagsFile} {
		info, err := os.Stat(filepath.Join(csvDir, name))
		if err != nil {
			util.WarnLog("  %s: missing", name)
			continue
		}
		present++
		util.InfoLog("  %s: %s", name, humanize.Bytes(uint64(info.Size())))
	}
	if present == 0 {
		util.InfoLog("  Run 'tatodeck download' to fetch them")
	}

	// Corpus database
	util.InfoLog("")
	db, err := store.Open(dbPath)
	if err != nil {
		util.WarnLog("Corpus database %s: not built (run 'tatodeck ingest')", dbPath)
	} else {
		defer db.Close()
		counts, err := db.Counts(ctx)
		if err != nil {
			return fmt.Errorf("failed to count corpus rows: %w", err)
		}
		util.InfoLog("Corpus database %s:", dbPath)
		util.InfoLog("  Sentences: %s", humanize.Comma(counts.Sentences))
		util.InfoLog("  With audio: %s", humanize.Comma(counts.Audio))
		util.InfoLog("  Links: %s", humanize.Comma(counts.Links))
		util.InfoLog("  Tags: %s", humanize.Comma(counts.Tags))
	}

	// Decks and audio
	util.InfoLog("")
	decks, _ := filepath.Glob(filepath.Join(outputDir, "*_from_*.csv"))
	if len(decks) == 0 {
		util.InfoLog("Decks in %s: none (run 'tatodeck export')", outputDir)
	} else {
		util.InfoLog("Decks in %s:", outputDir)
		for _, deck := range decks {
			util.InfoLog("  %s", filepath.Base(deck))
		}
	}

	audioDir := filepath.Join(outputDir, "audio")
	entries, err := os.ReadDir(audioDir)
	if err != nil {
		util.InfoLog("Audio files: none (run 'tatodeck audio')")
		return nil
	}
	mp3s := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".mp3") {
			mp3s++
		}
	}
	util.InfoLog("Audio files in %s: %s", audioDir, humanize.Comma(int64(mp3s)))

	return nil
}
