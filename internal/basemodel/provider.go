// Package basemodel supplies the base model bytes to the engine: from a local
// file, or downloaded once into a cache path and reused afterwards. The
// engine never schedules retries itself; a failed fetch surfaces as-is.
package basemodel

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"adapterd/internal/common/fsutil"
)

// ProgressFunc receives fetch progress as a fraction in [0, 1] plus a short
// human-readable message. Implementations must be cheap; it is called from
// the download loop.
type ProgressFunc func(fraction float64, message string)

// Provider reports whether the base model is already present locally and
// yields its bytes as a stream.
type Provider interface {
	// Cached reports whether the base model file exists locally.
	Cached() bool
	// Open makes the base model available locally (downloading when absent)
	// and returns a reader over its bytes plus the total size.
	Open(ctx context.Context, progress ProgressFunc) (io.ReadCloser, int64, error)
}

// FileProvider serves a base model from a fixed local path.
type FileProvider struct {
	path string
}

// NewFileProvider expands a leading '~' and returns a provider over path.
func NewFileProvider(path string) (*FileProvider, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	return &FileProvider{path: p}, nil
}

func (p *FileProvider) Cached() bool { return fsutil.PathExists(p.path) }

func (p *FileProvider) Open(_ context.Context, progress ProgressFunc) (io.ReadCloser, int64, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, 0, fmt.Errorf("open base model: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("stat base model: %w", err)
	}
	if progress != nil {
		progress(1, "base model present")
	}
	return f, fi.Size(), nil
}

// HTTPProvider downloads the base model to a cache path on first use and
// serves the cached file afterwards.
type HTTPProvider struct {
	URL       string
	CachePath string
	Client    *http.Client
}

// NewHTTPProvider expands a leading '~' in cachePath.
func NewHTTPProvider(url, cachePath string) (*HTTPProvider, error) {
	p, err := fsutil.ExpandHome(cachePath)
	if err != nil {
		return nil, err
	}
	return &HTTPProvider{URL: url, CachePath: p, Client: http.DefaultClient}, nil
}

func (p *HTTPProvider) Cached() bool { return fsutil.PathExists(p.CachePath) }

func (p *HTTPProvider) Open(ctx context.Context, progress ProgressFunc) (io.ReadCloser, int64, error) {
	if !p.Cached() {
		if err := p.download(ctx, progress); err != nil {
			return nil, 0, err
		}
	}
	f, err := os.Open(p.CachePath)
	if err != nil {
		return nil, 0, fmt.Errorf("open cached base model: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("stat cached base model: %w", err)
	}
	return f, fi.Size(), nil
}

// download fetches URL into CachePath via a temp file so a torn download can
// never be mistaken for a cached model.
func (p *HTTPProvider) download(ctx context.Context, progress ProgressFunc) error {
	if err := os.MkdirAll(filepath.Dir(p.CachePath), 0o755); err != nil {
		return fmt.Errorf("cache dir: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch base model: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch base model: unexpected status %s", resp.Status)
	}

	tmp := p.CachePath + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	pw := &progressWriter{total: resp.ContentLength, fn: progress}
	if _, err := io.Copy(io.MultiWriter(f, pw), resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("download base model: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, p.CachePath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit download: %w", err)
	}
	if progress != nil {
		progress(1, "download complete")
	}
	return nil
}

type progressWriter struct {
	n     int64
	total int64
	fn    ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.n += int64(len(b))
	if p.fn != nil && p.total > 0 {
		p.fn(float64(p.n)/float64(p.total), "downloading base model")
	}
	return len(b), nil
}
