//go:build !opencv

package backend

import "errors"

// OpenCVAvailable reports whether this binary was built with OpenCV support
const OpenCVAvailable = false

// ErrOpenCVUnavailable is returned when the opencv backend is requested from
// a binary built without the opencv tag.
var ErrOpenCVUnavailable = errors.New("backend: opencv support not compiled in (rebuild with -tags opencv)")

// OpenCV is unavailable in this build
type OpenCV struct {
	*CPU
}

// NewOpenCV always fails without the opencv build tag
func NewOpenCV() (*OpenCV, error) {
	return nil, ErrOpenCVUnavailable
}
