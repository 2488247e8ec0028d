package main

import (
	"fmt"
	"os"

	"github.com/franz/tatodeck/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set at build time
	Version = "dev"

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "tatodeck",
		Short: "Tatodeck - build Anki sentence decks from Tatoeba exports",
		Long: `tatodeck turns the Tatoeba sentence corpus into Anki-importable
flashcard decks with native speaker audio.

It downloads the weekly Tatoeba exports, ingests them into a local
SQLite corpus, exports a tab-separated deck for a language pair, and
fetches the MP3 audio for every card.`,
		Version: Version,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./tatodeck.yaml)")
	rootCmd.PersistentFlags().String("db", "tatoeba.sqlite3", "corpus database file")
	rootCmd.PersistentFlags().String("csv-dir", "csv", "directory holding the Tatoeba export CSVs")
	rootCmd.PersistentFlags().StringP("target", "t", "", "language being learned (ISO 639-3, e.g. jpn)")
	rootCmd.PersistentFlags().StringP("base", "b", "", "language the learner already knows (ISO 639-3, e.g. eng)")
	rootCmd.PersistentFlags().StringP("output", "o", "output", "directory the deck and audio are written to")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")

	// Bind flags to viper
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("csv-dir", rootCmd.PersistentFlags().Lookup("csv-dir"))
	viper.BindPFlag("target", rootCmd.PersistentFlags().Lookup("target"))
	viper.BindPFlag("base", rootCmd.PersistentFlags().Lookup("base"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in common locations
		viper.AddConfigPath(".")
		viper.SetConfigName("tatodeck")
		viper.SetConfigType("yaml")
	}

	// Read in environment variables that match
	viper.SetEnvPrefix("TATODECK")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && !viper.GetBool("quiet") {
		util.InfoLog("Using config file: %s", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
