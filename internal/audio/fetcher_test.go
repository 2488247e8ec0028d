package audio

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/franz/tatodeck/internal/corpus"
	"github.com/franz/tatodeck/internal/store"
)

// fixtureStore seeds jpn sentences 1..n, all with audio rows.
func fixtureStore(t *testing.T, n int) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tatoeba.sqlite3")
	s, err := store.Create(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	err = s.Transaction(func(tx *sql.Tx) error {
		for i := 1; i <= n; i++ {
			rec := corpus.Sentence{ID: int64(i), Lang: "jpn", Text: fmt.Sprintf("文%d", i)}
			if err := store.InsertSentence(tx, rec); err != nil {
				return err
			}
			if err := store.InsertAudioMeta(tx, corpus.AudioMeta{SentenceID: int64(i)}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("fixture insert failed: %v", err)
	}
	return s
}

func TestFileName(t *testing.T) {
	if got := FileName("jpn", 1276); got != "tatoeba_jpn_1276.mp3" {
		t.Errorf("FileName = %q, want tatoeba_jpn_1276.mp3", got)
	}
}

func TestFetchWritesAssets(t *testing.T) {
	s := fixtureStore(t, 3)

	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprintf(w, "mp3-bytes-for-%s", r.URL.Path)
	}))
	defer server.Close()

	dir := t.TempDir()
	f := New(&Config{Store: s, BaseURL: server.URL, Dir: dir, Lang: "jpn"})

	res, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if res.Total != 3 || res.Fetched != 3 || res.Skipped != 0 || res.Failed != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
	if requests.Load() != 3 {
		t.Errorf("expected 3 requests, got %d", requests.Load())
	}

	for i := 1; i <= 3; i++ {
		name := filepath.Join(dir, FileName("jpn", int64(i)))
		data, err := os.ReadFile(name)
		if err != nil {
			t.Fatalf("asset %s missing: %v", name, err)
		}
		want := fmt.Sprintf("mp3-bytes-for-/jpn/%d.mp3", i)
		if string(data) != want {
			t.Errorf("asset %d content = %q, want %q", i, data, want)
		}
	}
}

func TestFetchSecondRunDoesNoNetworkWork(t *testing.T) {
	s := fixtureStore(t, 3)

	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte("audio"))
	}))
	defer server.Close()

	dir := t.TempDir()
	cfg := &Config{Store: s, BaseURL: server.URL, Dir: dir, Lang: "jpn"}

	if _, err := New(cfg).Fetch(context.Background()); err != nil {
		t.Fatalf("first Fetch failed: %v", err)
	}
	firstRequests := requests.Load()

	res, err := New(cfg).Fetch(context.Background())
	if err != nil {
		t.Fatalf("second Fetch failed: %v", err)
	}
	if requests.Load() != firstRequests {
		t.Errorf("second run made %d network calls, want 0", requests.Load()-firstRequests)
	}
	if res.Skipped != 3 || res.Fetched != 0 {
		t.Errorf("second run result = %+v, want all skipped", res)
	}
}

func TestFetchIsolatesPerItemFailure(t *testing.T) {
	s := fixtureStore(t, 3)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/jpn/2.mp3" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("audio"))
	}))
	defer server.Close()

	dir := t.TempDir()
	f := New(&Config{Store: s, BaseURL: server.URL, Dir: dir, Lang: "jpn"})

	res, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if res.Failed != 1 {
		t.Errorf("Failed = %d, want 1", res.Failed)
	}
	if res.Fetched != 2 {
		t.Errorf("Fetched = %d, want 2 (siblings must not be aborted)", res.Fetched)
	}

	if _, err := os.Stat(filepath.Join(dir, FileName("jpn", 2))); !os.IsNotExist(err) {
		t.Error("failed asset must not leave a file behind")
	}
	if _, err := os.Stat(filepath.Join(dir, FileName("jpn", 2)+".partial")); !os.IsNotExist(err) {
		t.Error("failed asset must not leave a partial file behind")
	}
}

func TestFetchEmptyIDSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tatoeba.sqlite3")
	s, err := store.Create(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	f := New(&Config{Store: s, BaseURL: "http://unreachable.invalid", Dir: t.TempDir(), Lang: "jpn"})
	res, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if res.Total != 0 {
		t.Errorf("Total = %d, want 0", res.Total)
	}
}
