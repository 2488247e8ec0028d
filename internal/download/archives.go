// Package download retrieves the Tatoeba export archives and extracts
// the CSV member of each. An archive whose CSV is already extracted is
// skipped, so interrupted runs resume where they left off.
package download

import (
	"archive/tar"
	"compress/bzip2"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/franz/tatodeck/internal/corpus"
	"github.com/franz/tatodeck/internal/util"
	"github.com/schollz/progressbar/v3"
)

// DefaultBaseURL is the Tatoeba exports endpoint
const DefaultBaseURL = "https://downloads.tatoeba.org/exports"

// Archive pairs a remote tarball with the CSV member extracted from it
type Archive struct {
	Name string // remote tarball name
	CSV  string // extracted member kept on disk
}

// Archives are the four exports the pipeline consumes
var Archives = []Archive{
	{Name: "sentences.tar.bz2", CSV: corpus.SentencesFile},
	{Name: "sentences_with_audio.tar.bz2", CSV: corpus.AudioFile},
	{Name: "links.tar.bz2", CSV: corpus.LinksFile},
	{Name: "tags.tar.bz2", CSV: corpus.TagsFile},
}

// Downloader fetches and extracts the export archives
type Downloader struct {
	baseURL string
	dir     string
	client  *http.Client
	retry   *util.RetryConfig
}

// Config holds downloader configuration
type Config struct {
	BaseURL string            // exports endpoint (DefaultBaseURL if empty)
	Dir     string            // directory the CSVs are extracted to
	Retry   *util.RetryConfig // retry policy for transient network errors
}

// New creates a new Downloader
func New(cfg *Config) *Downloader {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	retry := cfg.Retry
	if retry == nil {
		retry = util.DefaultRetryConfig()
	}
	return &Downloader{
		baseURL: baseURL,
		dir:     cfg.Dir,
		// No overall timeout: the archives are hundreds of megabytes
		client: &http.Client{},
		retry:  retry,
	}
}

// Result represents download results
type Result struct {
	Downloaded int
	Skipped    int
	Bytes      int64
}

// Ensure makes every export CSV present in the directory, downloading
// and extracting only the missing ones.
func (d *Downloader) Ensure(ctx context.Context) (*Result, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create csv directory: %w", err)
	}

	res := &Result{}
	for _, a := range Archives {
		dest := filepath.Join(d.dir, a.CSV)
		if _, err := os.Stat(dest); err == nil {
			util.DebugLog("%s already extracted, skipping download", a.CSV)
			res.Skipped++
			continue
		}

		n, err := util.RetryWithBackoff(d.retry, func() (int64, error) {
			return d.fetchArchive(ctx, a, dest)
		}, "download "+a.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", a.Name, err)
		}

		util.InfoLog("Extracted %s (%s)", a.CSV, humanize.Bytes(uint64(n)))
		res.Downloaded++
		res.Bytes += n
	}
	return res, nil
}

// fetchArchive streams one tarball through bzip2 and tar, extracting
// the CSV member straight to dest. Nothing is kept on disk besides the
// extracted CSV; the rename at the end makes the extraction atomic.
func (d *Downloader) fetchArchive(ctx context.Context, a Archive, dest string) (int64, error) {
	url := d.baseURL + "/" + a.Name

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var body io.Reader = resp.Body
	if util.IsTerminal(os.Stderr.Fd()) && !util.IsQuiet() {
		bar := progressbar.DefaultBytes(resp.ContentLength, "Downloading "+a.Name)
		body = io.TeeReader(resp.Body, bar)
	}

	tr := tar.NewReader(bzip2.NewReader(body))
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed reading archive: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		if !strings.HasSuffix(header.Name, a.CSV) {
			continue
		}

		tmp := dest + ".partial"
		out, err := os.Create(tmp)
		if err != nil {
			return 0, fmt.Errorf("failed to create %s: %w", tmp, err)
		}
		n, err := io.Copy(out, tr)
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(tmp)
			return 0, fmt.Errorf("failed to extract %s: %w", a.CSV, err)
		}
		if err := os.Rename(tmp, dest); err != nil {
			os.Remove(tmp)
			return 0, fmt.Errorf("failed to finalize %s: %w", a.CSV, err)
		}
		return n, nil
	}

	return 0, fmt.Errorf("no %s member found in %s", a.CSV, a.Name)
}
