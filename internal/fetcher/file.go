package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/civicdata/cpahealth/internal/model"
)

// LocalSource reads the dataset from the local filesystem. Accepts plain
// paths and file:// URLs.
type LocalSource struct{}

// Open opens the file for reading.
func (LocalSource) Open(_ context.Context, rawURL string) (io.ReadCloser, error) {
	path := rawURL
	if strings.HasPrefix(rawURL, "file://") {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, eris.Wrapf(model.ErrIngestion, "fetcher: parse file url: %v", err)
		}
		path = u.Path
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(model.ErrIngestion, "fetcher: open %s: %v", path, err)
	}
	return f, nil
}
