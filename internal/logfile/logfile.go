// File: internal/logfile/logfile.go
package logfile

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	homedir "github.com/mitchellh/go-homedir"
)

// Open opens a build log for reading, expanding a leading ~ and
// transparently decoding .gz and .br archives, since CI systems usually
// hand logs over compressed. The caller owns the returned closer.
func Open(path string) (io.ReadCloser, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand log path %q: %w", path, err)
	}

	f, err := os.Open(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to open build log: %w", err)
	}

	switch strings.ToLower(filepath.Ext(expanded)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to read gzip log %q: %w", expanded, err)
		}
		return &decoded{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case ".br":
		return &decoded{Reader: brotli.NewReader(f), closers: []io.Closer{f}}, nil
	default:
		return f, nil
	}
}

// decoded pairs a decoding reader with the closers behind it, innermost
// first.
type decoded struct {
	io.Reader
	closers []io.Closer
}

func (d *decoded) Close() error {
	var errs []error
	for _, c := range d.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
