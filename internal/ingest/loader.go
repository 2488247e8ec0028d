// Package ingest streams the extracted Tatoeba export files into the
// corpus store: parse each line, buffer typed records, commit them in
// fixed-size transactions. Ingestion is deliberately single-threaded —
// the batch commit is the serialization point and a second writer would
// buy coordination cost, not throughput.
package ingest

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/franz/tatodeck/internal/corpus"
	"github.com/franz/tatodeck/internal/store"
	"github.com/franz/tatodeck/internal/util"
	"github.com/schollz/progressbar/v3"
)

// DefaultBatchSize is the number of rows committed per transaction
const DefaultBatchSize = 1000

// Loader streams one export file at a time into the corpus store
type Loader struct {
	store     *store.Store
	batchSize int
	progress  bool
}

// Config holds loader configuration
type Config struct {
	Store     *store.Store
	BatchSize int  // rows per transaction (0 = DefaultBatchSize)
	Progress  bool // render a progress bar on TTYs
}

// New creates a new Loader
func New(cfg *Config) *Loader {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Loader{
		store:     cfg.Store,
		batchSize: batchSize,
		progress:  cfg.Progress,
	}
}

// Result aggregates per-file ingestion counts
type Result struct {
	Lines     int // data lines read (header excluded)
	Loaded    int // rows handed to the store (duplicates ignored there)
	Malformed int // lines rejected by the parser and skipped
	Dropped   int // rows lost to row-level write failures
}

// insertFunc writes one parsed record inside the supplied transaction.
type insertFunc func(tx *sql.Tx) error

// LoadSentences ingests a sentences export (id, lang, text).
func (l *Loader) LoadSentences(ctx context.Context, r io.Reader) (*Result, error) {
	return l.load(ctx, r, corpus.SentencesFile, func(line string) (insertFunc, error) {
		rec, err := corpus.ParseSentence(line)
		if err != nil {
			return nil, err
		}
		return func(tx *sql.Tx) error { return store.InsertSentence(tx, rec) }, nil
	})
}

// LoadAudioMeta ingests a sentences_with_audio export (id, username, license, attribution_url, ...).
func (l *Loader) LoadAudioMeta(ctx context.Context, r io.Reader) (*Result, error) {
	return l.load(ctx, r, corpus.AudioFile, func(line string) (insertFunc, error) {
		rec, err := corpus.ParseAudioMeta(line)
		if err != nil {
			return nil, err
		}
		return func(tx *sql.Tx) error { return store.InsertAudioMeta(tx, rec) }, nil
	})
}

// LoadLinks ingests a links export (id, translation_id).
func (l *Loader) LoadLinks(ctx context.Context, r io.Reader) (*Result, error) {
	return l.load(ctx, r, corpus.LinksFile, func(line string) (insertFunc, error) {
		rec, err := corpus.ParseLink(line)
		if err != nil {
			return nil, err
		}
		return func(tx *sql.Tx) error { return store.InsertLink(tx, rec) }, nil
	})
}

// LoadTags ingests a tags export (id, tag_name).
func (l *Loader) LoadTags(ctx context.Context, r io.Reader) (*Result, error) {
	return l.load(ctx, r, corpus.TagsFile, func(line string) (insertFunc, error) {
		rec, err := corpus.ParseTag(line)
		if err != nil {
			return nil, err
		}
		return func(tx *sql.Tx) error { return store.InsertTag(tx, rec) }, nil
	})
}

// load is the shared streaming loop: skip the header line, parse each
// data line, buffer the insert, flush every batchSize rows and once
// more at EOF. Memory use is bounded by the batch, never the file.
func (l *Loader) load(ctx context.Context, r io.Reader, name string, parse func(string) (insertFunc, error)) (*Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	res := &Result{}

	var bar *progressbar.ProgressBar
	if l.progress && util.IsTerminal(os.Stderr.Fd()) && !util.IsQuiet() {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Ingesting "+name),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("rows"),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}

	batch := make([]insertFunc, 0, l.batchSize)
	header := true

	for scanner.Scan() {
		if header {
			header = false
			continue
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		res.Lines++

		fn, err := parse(line)
		if err != nil {
			var perr *corpus.ParseError
			if errors.As(err, &perr) {
				// Skip and continue: corpora routinely contain a small
				// fraction of malformed lines.
				res.Malformed++
				util.DebugLog("Skipping %s line %d: %v", name, res.Lines, perr)
				continue
			}
			return res, err
		}

		batch = append(batch, fn)
		if len(batch) >= l.batchSize {
			if err := l.flush(ctx, batch, res); err != nil {
				return res, err
			}
			if bar != nil {
				bar.Add(len(batch))
			}
			batch = batch[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("failed reading %s: %w", name, err)
	}

	if len(batch) > 0 {
		if err := l.flush(ctx, batch, res); err != nil {
			return res, err
		}
		if bar != nil {
			bar.Add(len(batch))
		}
	}
	if bar != nil {
		bar.Finish()
	}

	if res.Malformed > 0 {
		util.WarnLog("%s: skipped %d malformed lines", name, res.Malformed)
	}
	return res, nil
}

// flush commits one batch in a single transaction. If the transaction
// fails, every row is retried in its own transaction so one bad row
// cannot take the rest of the batch with it; only rows that fail on
// their own are dropped, and each drop is logged.
func (l *Loader) flush(ctx context.Context, batch []insertFunc, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := l.store.Transaction(func(tx *sql.Tx) error {
		for _, fn := range batch {
			if err := fn(tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		res.Loaded += len(batch)
		return nil
	}

	util.WarnLog("Batch write failed (%d rows), retrying row by row: %v", len(batch), err)
	for _, fn := range batch {
		rowErr := l.store.Transaction(func(tx *sql.Tx) error { return fn(tx) })
		if rowErr != nil {
			res.Dropped++
			util.WarnLog("Dropping row after write failure: %v", rowErr)
			continue
		}
		res.Loaded++
	}
	return nil
}
