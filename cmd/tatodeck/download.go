package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/tatodeck/internal/download"
	"github.com/franz/tatodeck/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the Tatoeba export archives",
	Long: `Download the weekly Tatoeba export archives and extract their CSVs.

Four exports are fetched: sentences, links, tags and the audio index.
Archives whose CSV is already present in the csv directory are skipped,
so re-running the command only fetches what is missing.`,
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().String("exports-url", download.DefaultBaseURL, "Tatoeba exports endpoint")
	viper.BindPFlag("exports-url", downloadCmd.Flags().Lookup("exports-url"))
}

func runDownload(cmd *cobra.Command, args []string) error {
	applyLogLevel()
	ctx := context.Background()

	csvDir := viper.GetString("csv-dir")

	util.InfoLog("=== Downloading Tatoeba exports ===")
	util.InfoLog("Endpoint: %s", GetConfigString("exports-url", download.DefaultBaseURL))
	util.InfoLog("CSV directory: %s", csvDir)

	d := download.New(&download.Config{
		BaseURL: GetConfigString("exports-url", download.DefaultBaseURL),
		Dir:     csvDir,
	})

	start := time.Now()

	res, err := d.Ensure(ctx)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	util.SuccessLog("Download complete in %v", time.Since(start).Round(time.Millisecond))
	util.InfoLog("  Archives fetched: %d", res.Downloaded)
	util.InfoLog("  Already present: %d", res.Skipped)
	if res.Bytes > 0 {
		util.InfoLog("  Extracted: %s", humanize.Bytes(uint64(res.Bytes)))
	}

	util.InfoLog("")
	util.InfoLog("Next step: tatodeck ingest")

	return nil
}
