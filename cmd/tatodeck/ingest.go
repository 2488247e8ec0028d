package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/tatodeck/internal/corpus"
	"github.com/franz/tatodeck/internal/ingest"
	"github.com/franz/tatodeck/internal/store"
	"github.com/franz/tatodeck/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the corpus database from the export CSVs",
	Long: `Load the Tatoeba export CSVs into a fresh SQLite corpus database.

The database is rebuilt from scratch on every run so the corpus always
reflects the CSVs on disk. Malformed lines are counted and skipped, the
rest are committed in large batches.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	applyLogLevel()
	ctx := context.Background()

	dbPath := viper.GetString("db")
	csvDir := viper.GetString("csv-dir")

	util.InfoLog("=== Building corpus database ===")
	util.InfoLog("Database: %s", dbPath)
	util.InfoLog("CSV directory: %s", csvDir)

	db, err := store.Create(dbPath)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	start := time.Now()

	if err := ingestAll(ctx, db, csvDir); err != nil {
		return err
	}

	util.SuccessLog("Ingestion complete in %v", time.Since(start).Round(time.Millisecond))

	counts, err := db.Counts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count corpus rows: %w", err)
	}
	logCounts(counts)

	util.InfoLog("")
	util.InfoLog("Next step: tatodeck export --target <lang> --base <lang>")

	return nil
}

// ingestAll loads all four export CSVs into the store. Also used by
// the run command.
func ingestAll(ctx context.Context, db *store.Store, csvDir string) error {
	loader := ingest.New(&ingest.Config{
		Store:    db,
		Progress: true,
	})

	steps := []struct {
		file string
		load func(context.Context, io.Reader) (*ingest.Result, error)
	}{
		{corpus.SentencesFile, loader.LoadSentences},
		{corpus.AudioFile, loader.LoadAudioMeta},
		{corpus.LinksFile, loader.LoadLinks},
		{corpus.TagsFile, loader.LoadTags},
	}

	for _, step := range steps {
		path := filepath.Join(csvDir, step.file)

		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("export CSV missing: %s (run 'tatodeck download' first)", path)
			}
			return fmt.Errorf("failed to open %s: %w", path, err)
		}

		util.InfoLog("Loading %s", step.file)
		res, err := step.load(ctx, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", step.file, err)
		}

		util.InfoLog("  Rows loaded: %s", humanize.Comma(int64(res.Loaded)))
		if res.Malformed > 0 {
			util.WarnLog("  Malformed lines skipped: %s", humanize.Comma(int64(res.Malformed)))
		}
		if res.Dropped > 0 {
			util.WarnLog("  Rows dropped on write: %s", humanize.Comma(int64(res.Dropped)))
		}
	}

	return nil
}

func logCounts(counts *store.TableCounts) {
	util.InfoLog("Corpus contents:")
	util.InfoLog("  Sentences: %s", humanize.Comma(counts.Sentences))
	util.InfoLog("  With audio: %s", humanize.Comma(counts.Audio))
	util.InfoLog("  Links: %s", humanize.Comma(counts.Links))
	util.InfoLog("  Tags: %s", humanize.Comma(counts.Tags))
}
