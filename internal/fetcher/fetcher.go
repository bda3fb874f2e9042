package fetcher

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
)

// Fetcher defines the interface for downloading remote pages and documents.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// FetchJSON downloads url and decodes the body as a single JSON object.
func FetchJSON[T any](ctx context.Context, f Fetcher, url string) (*T, error) {
	body, err := f.Download(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck
	return DecodeJSONObject[T](body)
}

// FetchBytes downloads url and reads the whole body.
func FetchBytes(ctx context.Context, f Fetcher, url string) ([]byte, error) {
	body, err := f.Download(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, eris.Wrapf(err, "read body of %s", url)
	}
	return data, nil
}
