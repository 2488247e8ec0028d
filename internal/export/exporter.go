// Package export serializes the corpus join into the flashcard import
// file: one tab-delimited row per (learning, base) sentence pair with
// audio, plus the sentence's tags rendered as an HTML list.
package export

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/franz/tatodeck/internal/audio"
	"github.com/franz/tatodeck/internal/store"
	"github.com/franz/tatodeck/internal/util"
)

// Header is the column layout flashcard users map fields from
var Header = []string{"sentence_id", "learning_text", "base_text", "audio", "tags"}

// Exporter writes the deck file for one language pair
type Exporter struct {
	store        *store.Store
	learningLang string
	baseLang     string
	outputDir    string
}

// Config holds exporter configuration
type Config struct {
	Store        *store.Store
	LearningLang string
	BaseLang     string
	OutputDir    string
}

// New creates a new Exporter
func New(cfg *Config) *Exporter {
	return &Exporter{
		store:        cfg.Store,
		learningLang: cfg.LearningLang,
		baseLang:     cfg.BaseLang,
		outputDir:    cfg.OutputDir,
	}
}

// Result represents export results
type Result struct {
	Rows int
	Path string
}

// OutputName returns the deck file name for a language pair
func OutputName(learningLang, baseLang string) string {
	return fmt.Sprintf("%s_from_%s.csv", learningLang, baseLang)
}

// AudioRef renders the sound field for a sentence. The embedded file
// name is the contract with the audio fetcher's on-disk naming.
func AudioRef(lang string, id int64) string {
	return fmt.Sprintf("[sound:%s]", audio.FileName(lang, id))
}

// FormatTags renders tags as an HTML list. Zero tags render as an
// empty but well-formed container, never an error.
func FormatTags(tags []string) string {
	return `<ul class="tags"><li>` + strings.Join(tags, "</li><li>") + "</li></ul>"
}

// Export writes one row per qualifying pair, ordered by sentence id.
// Fields are written verbatim: no field can contain a tab (tabs were
// the input delimiter) and the tags field carries literal quotes that
// quoting-aware writers would mangle.
func (e *Exporter) Export(ctx context.Context) (*Result, error) {
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(e.outputDir, OutputName(e.learningLang, e.baseLang))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, strings.Join(Header, "\t"))

	rows := 0
	err = e.store.ExportPairs(ctx, e.learningLang, e.baseLang, func(p store.ExportPair) error {
		_, werr := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			p.SentenceID,
			p.LearningText,
			p.BaseText,
			AudioRef(e.learningLang, p.SentenceID),
			FormatTags(p.Tags))
		if werr != nil {
			return werr
		}
		rows++
		return nil
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to export pairs: %w", err)
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to flush output file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close output file: %w", err)
	}

	util.SuccessLog("Exported %d pairs to %s", rows, path)
	return &Result{Rows: rows, Path: path}, nil
}
