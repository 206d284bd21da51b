package fetch

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/versefetch/internal/logging"
	"github.com/FocuswithJustin/versefetch/internal/validation"
)

// Fetcher retrieves the raw bytes of a corpus file.
type Fetcher interface {
	Fetch(ctx context.Context, fileID string) ([]byte, error)
}

const (
	compressedExt = ".xz"
	digestExt     = ".blake3"
)

// ErrOffline is returned by Offline for every file.
var ErrOffline = errors.New("offline: corpus file not cached")

// Offline is an upstream that never reaches the network. A DiskFetcher
// wrapping it serves cached files only.
var Offline Fetcher = offline{}

type offline struct{}

func (offline) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	return nil, fmt.Errorf("%s: %w", fileID, ErrOffline)
}

// Injectable for tests.
var (
	osRename    = os.Rename
	xzNewWriter = xz.NewWriter
	xzNewReader = xz.NewReader
	timeNow     = time.Now
)

// DiskFetcher keeps xz-compressed copies of corpus files on disk and only
// asks the wrapped Fetcher for files that are missing, stale or corrupt.
//
// Each file is stored as <dir>/<fileID>.xz next to a <fileID>.blake3 sidecar
// holding the hex BLAKE3 digest of the uncompressed body.
type DiskFetcher struct {
	dir    string
	next   Fetcher
	maxAge time.Duration
}

// NewDiskFetcher creates a DiskFetcher rooted at dir. A maxAge of zero keeps
// entries forever.
func NewDiskFetcher(dir string, next Fetcher, maxAge time.Duration) (*DiskFetcher, error) {
	if next == nil {
		return nil, fmt.Errorf("disk cache needs an upstream fetcher")
	}
	if err := validation.ValidatePath(dir); err != nil {
		return nil, fmt.Errorf("invalid cache directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &DiskFetcher{dir: dir, next: next, maxAge: maxAge}, nil
}

// Dir returns the cache directory.
func (d *DiskFetcher) Dir() string {
	return d.dir
}

// Fetch returns the cached body for fileID, refreshing it from upstream when needed.
func (d *DiskFetcher) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	if err := validation.ValidateFilename(fileID); err != nil {
		return nil, err
	}

	data, err := d.load(fileID)
	if err == nil {
		logging.DebugContext(ctx, "disk cache hit", "file", fileID, "bytes", len(data))
		return data, nil
	}
	if !os.IsNotExist(err) {
		logging.WarnContext(ctx, "disk cache entry discarded", "file", fileID, "reason", err.Error())
	}

	data, err = d.next.Fetch(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if err := d.store(fileID, data); err != nil {
		// The body is still good; only the local copy is lost.
		logging.WarnContext(ctx, "disk cache write failed", "file", fileID, "error", err.Error())
	}
	return data, nil
}

// Remove deletes the cached copy of fileID, if any.
func (d *DiskFetcher) Remove(fileID string) error {
	if err := validation.ValidateFilename(fileID); err != nil {
		return err
	}
	for _, p := range []string{d.blobPath(fileID), d.digestPath(fileID)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Clear removes every cache entry and leftover temp file in the cache
// directory and returns the number of entries removed.
func (d *DiskFetcher) Clear() (int, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			continue
		}
		switch {
		case strings.HasSuffix(name, compressedExt):
			removed++
		case strings.HasSuffix(name, digestExt), strings.HasPrefix(name, ".entry-"):
		default:
			continue
		}
		if err := os.Remove(filepath.Join(d.dir, name)); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
	}
	return removed, nil
}

func (d *DiskFetcher) blobPath(fileID string) string {
	return filepath.Join(d.dir, fileID+compressedExt)
}

func (d *DiskFetcher) digestPath(fileID string) string {
	return filepath.Join(d.dir, fileID+digestExt)
}

// load reads and verifies a cached entry. A missing entry yields an
// os.IsNotExist error.
func (d *DiskFetcher) load(fileID string) ([]byte, error) {
	info, err := os.Stat(d.blobPath(fileID))
	if err != nil {
		return nil, err
	}
	if d.maxAge > 0 && timeNow().Sub(info.ModTime()) > d.maxAge {
		return nil, fmt.Errorf("entry older than %s", d.maxAge)
	}

	want, err := os.ReadFile(d.digestPath(fileID))
	if err != nil {
		return nil, fmt.Errorf("missing digest: %w", err)
	}

	f, err := os.Open(d.blobPath(fileID))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := xzNewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create xz reader: %w", err)
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	if len(data) > MaxBodySize {
		return nil, fmt.Errorf("entry exceeds %d bytes", MaxBodySize)
	}

	if got := digest(data); got != strings.TrimSpace(string(want)) {
		return nil, fmt.Errorf("digest mismatch: got %s", got)
	}
	return data, nil
}

// store writes the blob first and the digest last, so a crash between the
// two leaves an entry that fails verification rather than a wrong one.
func (d *DiskFetcher) store(fileID string, data []byte) error {
	var buf bytes.Buffer
	w, err := xzNewWriter(&buf)
	if err != nil {
		return fmt.Errorf("failed to create xz writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to compress: %w", err)
	}

	if err := os.Remove(d.digestPath(fileID)); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := d.writeAtomic(d.blobPath(fileID), buf.Bytes()); err != nil {
		return err
	}
	return d.writeAtomic(d.digestPath(fileID), []byte(digest(data)+"\n"))
}

func (d *DiskFetcher) writeAtomic(path string, data []byte) error {
	tempFile, err := os.CreateTemp(d.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := osRename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

func digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
