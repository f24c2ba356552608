package transfer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// Downloader stages verified downloads on disk, one file per content hash.
// It is safe for concurrent use as long as no two downloads share a hash.
type Downloader struct {
	client *http.Client
	dir    string
	logger *zap.Logger
}

// NewDownloader creates a staging directory inside parent (or the system
// temporary directory when parent is empty).
func NewDownloader(client *http.Client, parent string, logger *zap.Logger) (*Downloader, error) {
	dir, err := os.MkdirTemp(parent, "ci-mirrors-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	return &Downloader{client: client, dir: dir, logger: logger}, nil
}

// Dir returns the staging directory.
func (d *Downloader) Dir() string {
	return d.dir
}

// Download fetches source into the staging directory and verifies it against
// sha256. A file failing verification is left in place and must not be used.
func (d *Downloader) Download(ctx context.Context, source, sha256 string) error {
	path, err := d.pathFor(sha256)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create staging file: %w", err)
	}
	defer f.Close()

	d.logger.Info("Downloading", zap.String("url", source))
	buf := bufio.NewWriter(f)
	res, err := FetchAndVerify(ctx, d.client, source, sha256, buf)
	if flushErr := buf.Flush(); err == nil && flushErr != nil {
		err = fmt.Errorf("failed to write staging file: %w", flushErr)
	}
	if err != nil {
		return err
	}

	d.logger.Info("Downloaded",
		zap.String("url", source),
		zap.String("size", humanize.Bytes(uint64(res.Size))),
	)
	return f.Close()
}

// Open returns the staged file for sha256 and its size.
func (d *Downloader) Open(sha256 string) (io.ReadCloser, int64, error) {
	path, err := d.pathFor(sha256)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open staged file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("failed to stat staged file: %w", err)
	}
	return f, info.Size(), nil
}

// Close removes the staging directory and everything in it.
func (d *Downloader) Close() error {
	return os.RemoveAll(d.dir)
}

func (d *Downloader) pathFor(sha256 string) (string, error) {
	if sha256 == "" || sha256 == "." || sha256 == ".." || strings.ContainsAny(sha256, `/\`) {
		return "", fmt.Errorf("invalid hash %q", sha256)
	}
	return filepath.Join(d.dir, sha256), nil
}
