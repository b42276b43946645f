// Package fetcher reads the raw dataset resource from local files, HTTP(S),
// or FTP, enforcing a byte bound so an oversized or runaway source fails the
// load instead of exhausting memory.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/civicdata/cpahealth/internal/model"
)

// Source opens a raw dataset resource for reading.
type Source interface {
	// Open fetches the resource and returns its body. The caller must
	// close the returned ReadCloser.
	Open(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

// MultiSource dispatches on URL scheme: file paths and file:// URLs go to
// the local source, http(s):// to the HTTP fetcher, ftp:// to the FTP fetcher.
type MultiSource struct {
	HTTP  Source
	FTP   Source
	Local Source
}

// NewMultiSource builds the default scheme dispatcher.
func NewMultiSource(httpOpts HTTPOptions, ftpOpts FTPOptions) *MultiSource {
	return &MultiSource{
		HTTP:  NewHTTPFetcher(httpOpts),
		FTP:   NewFTPFetcher(ftpOpts),
		Local: LocalSource{},
	}
}

// Open routes the URL to the scheme-appropriate source.
func (m *MultiSource) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(model.ErrIngestion, "fetcher: parse source %q: %v", rawURL, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "", "file":
		return m.Local.Open(ctx, rawURL)
	case "http", "https":
		return m.HTTP.Open(ctx, rawURL)
	case "ftp":
		return m.FTP.Open(ctx, rawURL)
	default:
		return nil, eris.Wrapf(model.ErrIngestion, "fetcher: unsupported scheme %q", u.Scheme)
	}
}

// ReadAllBounded drains r up to maxBytes. Reading even one byte past the
// bound fails with ErrIngestion so truncated datasets are never parsed.
func ReadAllBounded(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, eris.Wrapf(model.ErrIngestion, "fetcher: read source: %v", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, eris.Wrapf(model.ErrIngestion, "fetcher: read source: %v", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, eris.Wrapf(model.ErrIngestion, "fetcher: source exceeds %d byte limit", maxBytes)
	}
	return data, nil
}

// Fetch opens the source and reads it whole under the byte bound.
func Fetch(ctx context.Context, src Source, rawURL string, maxBytes int64) ([]byte, error) {
	body, err := src.Open(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	return ReadAllBounded(body, maxBytes)
}
