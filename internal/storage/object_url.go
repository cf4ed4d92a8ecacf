package storage

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrObjectNotFound is returned when a container or bucket has no such object
var ErrObjectNotFound = errors.New("object not found")

// parseObjectURL splits scheme://<container>/<object/key> into its parts
func parseObjectURL(rawURL, scheme string) (container, object string, err error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid object URL: %w", err)
	}
	if !strings.EqualFold(parsed.Scheme, scheme) {
		return "", "", fmt.Errorf("expected %s URL, got scheme %q", scheme, parsed.Scheme)
	}
	object = strings.TrimPrefix(parsed.Path, "/")
	if parsed.Host == "" || object == "" {
		return "", "", fmt.Errorf("object URL must have the form %s://<container>/<object>", scheme)
	}
	return parsed.Host, object, nil
}
