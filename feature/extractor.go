package feature

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrConfiguration is returned when an extractor resource is missing or malformed.
	ErrConfiguration = errors.New("extractor configuration error")

	// ErrNilImage is returned when Extract is called without an image.
	ErrNilImage = errors.New("image is nil")
)

// ConfigError indicates a resource an extractor needs at construction time
// could not be loaded.
//
// It satisfies errors.Is(err, ErrConfiguration); the underlying error (if any)
// can be accessed via errors.Unwrap.
type ConfigError struct {
	Resource string
	cause    error
}

// NewConfigError wraps cause as a configuration failure of resource.
func NewConfigError(resource string, cause error) *ConfigError {
	return &ConfigError{Resource: resource, cause: cause}
}

func (e *ConfigError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%v: %s", ErrConfiguration, e.Resource)
	}
	return fmt.Sprintf("%v: %s: %v", ErrConfiguration, e.Resource, e.cause)
}

func (e *ConfigError) Unwrap() error { return e.cause }

// Is reports ErrConfiguration as a match.
func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

// Extractor produces keypoints and one descriptor per keypoint from a
// grayscale image.
//
// Implementations must return slices of equal length, at most their
// configured maximum feature count, and must be pure: the same image always
// yields the same output. Implementations are safe for concurrent use.
type Extractor[D Descriptor] interface {
	Extract(img *image.Gray) ([]Keypoint, []D, error)
}

// Detector finds keypoints in a grayscale image.
type Detector interface {
	Detect(img *image.Gray) []Keypoint
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc[D Descriptor] func(img *image.Gray) ([]Keypoint, []D, error)

// Extract calls f(img).
func (f ExtractorFunc[D]) Extract(img *image.Gray) ([]Keypoint, []D, error) {
	return f(img)
}
