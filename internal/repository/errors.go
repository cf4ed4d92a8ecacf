package repository

import "errors"

var (
	// ErrMissingImage indicates a request named no image source
	ErrMissingImage = errors.New("request must contain pngBase64 or imageUrl")

	// ErrAmbiguousImageSource indicates both sources were given
	ErrAmbiguousImageSource = errors.New("request must contain only one of pngBase64 and imageUrl")

	// ErrInvalidImageURL indicates an invalid image URL
	ErrInvalidImageURL = errors.New("invalid image URL")

	// ErrUnsupportedScheme indicates no fetcher is registered for the URL scheme
	ErrUnsupportedScheme = errors.New("unsupported image URL scheme")

	// ErrInvalidBase64 indicates the inline payload is not base64
	ErrInvalidBase64 = errors.New("pngBase64 is not valid base64")

	// ErrImageNotFound indicates the image was not found
	ErrImageNotFound = errors.New("image not found")

	// ErrImageTooLarge indicates the image exceeds the configured byte limit
	ErrImageTooLarge = errors.New("image too large")

	// ErrRepositoryUnavailable indicates the backing store could not be reached
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
