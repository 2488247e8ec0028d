// Package audio fetches the per-sentence MP3 recordings referenced by
// the exported deck. Fetching is idempotent and resumable: assets
// already on disk are skipped without a network call, and a second run
// over the same id set does zero network work.
package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/tatodeck/internal/store"
	"github.com/franz/tatodeck/internal/util"
	"github.com/schollz/progressbar/v3"
)

// DefaultBaseURL is the Tatoeba audio endpoint
const DefaultBaseURL = "https://audio.tatoeba.org/sentences"

// DefaultConcurrency bounds the worker pool. The bound respects the
// remote service's implicit rate limits, not local resources.
const DefaultConcurrency = 4

// DefaultTimeout is the per-request timeout. Without it one stalled
// connection would block a pool slot indefinitely.
const DefaultTimeout = 30 * time.Second

// FileName is the on-disk asset name for a sentence. It is a contract
// with the exporter's [sound:...] field and must match it exactly.
func FileName(lang string, id int64) string {
	return fmt.Sprintf("tatoeba_%s_%d.mp3", lang, id)
}

// Fetcher downloads missing audio assets for one learning language
type Fetcher struct {
	store       *store.Store
	baseURL     string
	dir         string
	lang        string
	concurrency int
	client      *http.Client
}

// Config holds fetcher configuration
type Config struct {
	Store       *store.Store
	BaseURL     string        // audio endpoint (DefaultBaseURL if empty)
	Dir         string        // directory assets are written to
	Lang        string        // learning language code
	Concurrency int           // worker pool width (DefaultConcurrency if <= 0)
	Timeout     time.Duration // per-request timeout (DefaultTimeout if 0)
}

// New creates a new Fetcher
func New(cfg *Config) *Fetcher {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		store:       cfg.Store,
		baseURL:     baseURL,
		dir:         cfg.Dir,
		lang:        cfg.Lang,
		concurrency: concurrency,
		client:      &http.Client{Timeout: timeout},
	}
}

// Result represents fetch results
type Result struct {
	Total        int
	Fetched      int
	Skipped      int
	Failed       int
	BytesFetched int64
}

// Fetch ensures a local audio file exists for every learning-language
// sentence that has an audio row. Per-item failures are logged and
// counted; they never abort sibling fetches.
func (f *Fetcher) Fetch(ctx context.Context) (*Result, error) {
	ids, err := f.store.AudioSentenceIDs(ctx, f.lang)
	if err != nil {
		return nil, fmt.Errorf("failed to list audio sentence ids: %w", err)
	}
	if len(ids) == 0 {
		util.InfoLog("No audio assets referenced for %s", f.lang)
		return &Result{}, nil
	}

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}

	total := len(ids)
	util.InfoLog("Fetching audio for %d sentences (%d workers)", total, f.concurrency)

	var processed, fetched, skipped, failed atomic.Int64
	var bytesFetched atomic.Int64

	var bar *progressbar.ProgressBar
	if util.IsTerminal(os.Stderr.Fd()) && !util.IsQuiet() {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Fetching audio"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}

	// Plain-log progress for non-TTY runs
	progressCtx, cancelProgress := context.WithCancel(ctx)
	defer cancelProgress()
	if bar == nil {
		go func() {
			ticker := time.NewTicker(5 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-progressCtx.Done():
					return
				case <-ticker.C:
					util.InfoLog("Audio: %d/%d - fetched: %d, skipped: %d, failed: %d",
						processed.Load(), total, fetched.Load(), skipped.Load(), failed.Load())
				}
			}
		}()
	}

	idsChan := make(chan int64, f.concurrency*2)
	doneChan := make(chan struct{})

	for i := 0; i < f.concurrency; i++ {
		go func() {
			for id := range idsChan {
				select {
				case <-ctx.Done():
					doneChan <- struct{}{}
					return
				default:
				}

				n, wasSkipped, err := f.fetchOne(ctx, id)
				processed.Add(1)
				switch {
				case err != nil:
					// Left unfetched for this run; a rerun will retry it
					util.WarnLog("Failed to fetch audio for sentence %d: %v", id, err)
					failed.Add(1)
				case wasSkipped:
					skipped.Add(1)
				default:
					fetched.Add(1)
					bytesFetched.Add(n)
				}
				if bar != nil {
					bar.Add(1)
				}
			}
			doneChan <- struct{}{}
		}()
	}

	go func() {
		for _, id := range ids {
			select {
			case <-ctx.Done():
				close(idsChan)
				return
			case idsChan <- id:
			}
		}
		close(idsChan)
	}()

	for i := 0; i < f.concurrency; i++ {
		<-doneChan
	}
	cancelProgress()
	if bar != nil {
		bar.Finish()
	}

	result := &Result{
		Total:        total,
		Fetched:      int(fetched.Load()),
		Skipped:      int(skipped.Load()),
		Failed:       int(failed.Load()),
		BytesFetched: bytesFetched.Load(),
	}

	util.SuccessLog("Audio fetch complete: %d fetched (%s), %d already present, %d failed",
		result.Fetched, humanize.Bytes(uint64(result.BytesFetched)), result.Skipped, result.Failed)

	return result, nil
}

// fetchOne ensures the asset for one sentence id exists locally.
// Returns bytes written and whether the id was skipped as already present.
func (f *Fetcher) fetchOne(ctx context.Context, id int64) (int64, bool, error) {
	dest := filepath.Join(f.dir, FileName(f.lang, id))
	if _, err := os.Stat(dest); err == nil {
		return 0, true, nil
	}

	url := fmt.Sprintf("%s/%s/%d.mp3", f.baseURL, f.lang, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, false, fmt.Errorf("unexpected status %s", resp.Status)
	}

	// Write through a temp name so a crashed run never leaves a partial
	// file that a rerun would skip as complete.
	tmp := dest + ".partial"
	out, err := os.Create(tmp)
	if err != nil {
		return 0, false, fmt.Errorf("failed to create asset file: %w", err)
	}

	n, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return 0, false, fmt.Errorf("failed to write asset: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return 0, false, fmt.Errorf("failed to finalize asset: %w", err)
	}

	return n, false, nil
}
