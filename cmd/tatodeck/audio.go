package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/tatodeck/internal/audio"
	"github.com/franz/tatodeck/internal/store"
	"github.com/franz/tatodeck/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var audioCmd = &cobra.Command{
	Use:   "audio",
	Short: "Fetch the MP3 audio for every exported card",
	Long: `Fetch the native speaker recording for every target-language
sentence that has audio in the corpus.

Files already on disk are skipped, so an interrupted run can simply be
restarted. Failures on individual sentences are logged and do not stop
the rest of the batch.`,
	RunE: runAudio,
}

func init() {
	rootCmd.AddCommand(audioCmd)

	audioCmd.Flags().String("audio-url", audio.DefaultBaseURL, "Tatoeba audio endpoint")
	audioCmd.Flags().Int("concurrency", audio.DefaultConcurrency, "number of parallel downloads")
	viper.BindPFlag("audio-url", audioCmd.Flags().Lookup("audio-url"))
	viper.BindPFlag("concurrency", audioCmd.Flags().Lookup("concurrency"))
}

func runAudio(cmd *cobra.Command, args []string) error {
	applyLogLevel()
	ctx := context.Background()

	target := viper.GetString("target")
	if target == "" {
		return fmt.Errorf("target language is required (use --target/-t or set in config)")
	}

	dbPath := viper.GetString("db")
	audioDir := filepath.Join(viper.GetString("output"), "audio")

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w (run 'tatodeck ingest' first)", err)
	}
	defer db.Close()

	util.InfoLog("=== Fetching audio ===")
	util.InfoLog("Language: %s", target)
	util.InfoLog("Audio directory: %s", audioDir)

	fetcher := audio.New(&audio.Config{
		Store:       db,
		BaseURL:     GetConfigString("audio-url", audio.DefaultBaseURL),
		Dir:         audioDir,
		Lang:        target,
		Concurrency: GetConfigInt("concurrency", audio.DefaultConcurrency),
	})

	start := time.Now()

	res, err := fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("audio fetch failed: %w", err)
	}

	util.SuccessLog("Audio fetch complete in %v", time.Since(start).Round(time.Millisecond))
	util.InfoLog("  Sentences with audio: %s", humanize.Comma(int64(res.Total)))
	util.InfoLog("  Fetched: %s (%s)", humanize.Comma(int64(res.Fetched)), humanize.Bytes(uint64(res.BytesFetched)))
	util.InfoLog("  Already present: %s", humanize.Comma(int64(res.Skipped)))
	if res.Failed > 0 {
		util.WarnLog("  Failed: %s (re-run to retry)", humanize.Comma(int64(res.Failed)))
	}

	return nil
}
