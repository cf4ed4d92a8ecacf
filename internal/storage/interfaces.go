package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ImageFetcher downloads the raw bytes of an image. Decoding is left to the
// channel provider so every source shares one decoder.
type ImageFetcher interface {
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)
}

// ErrImageTooLarge is returned when a payload exceeds the configured limit
var ErrImageTooLarge = errors.New("image exceeds size limit")

// readLimited reads r fully, failing once more than maxBytes are available.
// A non-positive limit disables the check.
func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, maxBytes)
	}
	return data, nil
}
