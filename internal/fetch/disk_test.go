package fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type stubFetcher struct {
	mu    sync.Mutex
	body  string
	err   error
	calls int
}

func (s *stubFetcher) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []byte(s.body), nil
}

const corpusBody = `{"books":[{"book":"Luke","chapters":[]}]}`

func newDisk(t *testing.T, upstream Fetcher, maxAge time.Duration) *DiskFetcher {
	t.Helper()
	d, err := NewDiskFetcher(filepath.Join(t.TempDir(), "cache"), upstream, maxAge)
	if err != nil {
		t.Fatalf("NewDiskFetcher() error = %v", err)
	}
	return d
}

func TestDiskFetcher_StoresAndReuses(t *testing.T) {
	upstream := &stubFetcher{body: corpusBody}
	d := newDisk(t, upstream, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		data, err := d.Fetch(ctx, "new-testament.json")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if string(data) != corpusBody {
			t.Errorf("Fetch() = %q", data)
		}
	}
	if upstream.calls != 1 {
		t.Errorf("upstream calls = %d, want 1", upstream.calls)
	}

	for _, name := range []string{"new-testament.json.xz", "new-testament.json.blake3"} {
		if _, err := os.Stat(filepath.Join(d.Dir(), name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	digestFile, _ := os.ReadFile(filepath.Join(d.Dir(), "new-testament.json.blake3"))
	if len(digestFile) != 65 {
		t.Errorf("digest sidecar = %q", digestFile)
	}
}

func TestDiskFetcher_SurvivesNewInstance(t *testing.T) {
	dir := t.TempDir()
	first := &stubFetcher{body: corpusBody}
	d1, _ := NewDiskFetcher(dir, first, 0)
	if _, err := d1.Fetch(context.Background(), "a.json"); err != nil {
		t.Fatal(err)
	}

	second := &stubFetcher{err: errors.New("offline")}
	d2, _ := NewDiskFetcher(dir, second, 0)
	data, err := d2.Fetch(context.Background(), "a.json")
	if err != nil {
		t.Fatalf("Fetch() from warm cache error = %v", err)
	}
	if string(data) != corpusBody || second.calls != 0 {
		t.Errorf("Fetch() = %q, upstream calls = %d", data, second.calls)
	}
}

func TestDiskFetcher_CorruptEntryRefetched(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(d *DiskFetcher)
	}{
		{"bad digest", func(d *DiskFetcher) {
			os.WriteFile(d.digestPath("a.json"), []byte("00\n"), 0644)
		}},
		{"missing digest", func(d *DiskFetcher) {
			os.Remove(d.digestPath("a.json"))
		}},
		{"garbage blob", func(d *DiskFetcher) {
			os.WriteFile(d.blobPath("a.json"), []byte("not xz"), 0644)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := &stubFetcher{body: corpusBody}
			d := newDisk(t, upstream, 0)
			ctx := context.Background()

			if _, err := d.Fetch(ctx, "a.json"); err != nil {
				t.Fatal(err)
			}
			tt.corrupt(d)

			data, err := d.Fetch(ctx, "a.json")
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if string(data) != corpusBody {
				t.Errorf("Fetch() = %q", data)
			}
			if upstream.calls != 2 {
				t.Errorf("upstream calls = %d, want 2", upstream.calls)
			}
			if _, err := d.load("a.json"); err != nil {
				t.Errorf("entry not repaired: %v", err)
			}
		})
	}
}

func TestDiskFetcher_MaxAge(t *testing.T) {
	upstream := &stubFetcher{body: corpusBody}
	d := newDisk(t, upstream, time.Hour)
	ctx := context.Background()

	if _, err := d.Fetch(ctx, "a.json"); err != nil {
		t.Fatal(err)
	}

	old := timeNow
	timeNow = func() time.Time { return time.Now().Add(2 * time.Hour) }
	defer func() { timeNow = old }()

	if _, err := d.Fetch(ctx, "a.json"); err != nil {
		t.Fatal(err)
	}
	if upstream.calls != 2 {
		t.Errorf("upstream calls = %d, want 2 after expiry", upstream.calls)
	}
}

func TestDiskFetcher_UpstreamError(t *testing.T) {
	cause := &HTTPError{StatusCode: 404, Status: "404 Not Found"}
	d := newDisk(t, &stubFetcher{err: cause}, 0)

	_, err := d.Fetch(context.Background(), "a.json")
	if !errors.Is(err, cause) {
		t.Errorf("Fetch() error = %v, want upstream error", err)
	}
	if _, statErr := os.Stat(d.blobPath("a.json")); !os.IsNotExist(statErr) {
		t.Error("failed fetch should not leave a cache entry")
	}
}

func TestDiskFetcher_WriteFailureStillReturnsBody(t *testing.T) {
	d := newDisk(t, &stubFetcher{body: corpusBody}, 0)

	old := osRename
	osRename = func(string, string) error { return errors.New("disk full") }
	defer func() { osRename = old }()

	data, err := d.Fetch(context.Background(), "a.json")
	if err != nil || string(data) != corpusBody {
		t.Errorf("Fetch() = %q, %v", data, err)
	}
	entries, _ := os.ReadDir(d.Dir())
	if len(entries) != 0 {
		t.Errorf("temp files left behind: %d", len(entries))
	}
}

func TestDiskFetcher_RejectsUnsafeFileID(t *testing.T) {
	upstream := &stubFetcher{body: corpusBody}
	d := newDisk(t, upstream, 0)

	for _, id := range []string{"", "../escape.json", "a/b.json", ".."} {
		if _, err := d.Fetch(context.Background(), id); err == nil {
			t.Errorf("Fetch(%q) expected error", id)
		}
	}
	if upstream.calls != 0 {
		t.Errorf("upstream calls = %d, want 0", upstream.calls)
	}
}

func TestDiskFetcher_Remove(t *testing.T) {
	upstream := &stubFetcher{body: corpusBody}
	d := newDisk(t, upstream, 0)
	ctx := context.Background()

	d.Fetch(ctx, "a.json")
	if err := d.Remove("a.json"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := d.Remove("a.json"); err != nil {
		t.Errorf("second Remove() error = %v", err)
	}
	d.Fetch(ctx, "a.json")
	if upstream.calls != 2 {
		t.Errorf("upstream calls = %d, want 2", upstream.calls)
	}
}

func TestNewDiskFetcher_Errors(t *testing.T) {
	if _, err := NewDiskFetcher(t.TempDir(), nil, 0); err == nil {
		t.Error("nil upstream expected error")
	}
	if _, err := NewDiskFetcher("", &stubFetcher{}, 0); err == nil {
		t.Error("empty dir expected error")
	}
}

func TestDiskFetcher_Clear(t *testing.T) {
	d := newDisk(t, &stubFetcher{body: corpusBody}, 0)
	ctx := context.Background()
	d.Fetch(ctx, "a.json")
	d.Fetch(ctx, "b.json")
	os.WriteFile(filepath.Join(d.Dir(), "notes.txt"), []byte("keep"), 0644)

	n, err := d.Clear()
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Clear() = %d, want 2", n)
	}
	entries, _ := os.ReadDir(d.Dir())
	if len(entries) != 1 || entries[0].Name() != "notes.txt" {
		t.Errorf("left behind: %v", entries)
	}
}

func TestOffline(t *testing.T) {
	d := newDisk(t, Offline, 0)
	if _, err := d.Fetch(context.Background(), "a.json"); !errors.Is(err, ErrOffline) {
		t.Errorf("Fetch() error = %v, want ErrOffline", err)
	}
}
