package latentset

import (
	"errors"
	"fmt"

	"github.com/hupe1980/latentset/preprocess"
)

var (
	// ErrInvalidConfig is returned when a dataset cannot be constructed from its inputs.
	ErrInvalidConfig = preprocess.ErrInvalidConfig

	// ErrNotImplemented is returned by pipelines lacking a capability.
	ErrNotImplemented = preprocess.ErrNotImplemented

	// ErrIndexOutOfRange is returned for indices outside [0, Len()).
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNoEncoder is returned when a latent must be computed but no encoder is configured.
	ErrNoEncoder = errors.New("no encoder configured")

	// ErrInvalidQuery is returned for a nil or unknown Query.
	ErrInvalidQuery = errors.New("invalid query")
)

// ShapeError reports a tensor with an unexpected shape.
type ShapeError = preprocess.ShapeError

// MissingVideoError names a listed video that is not a regular file.
//
// It matches ErrInvalidConfig via errors.Is.
type MissingVideoError struct {
	Path string
}

func (e *MissingVideoError) Error() string {
	return fmt.Sprintf("video file not found: %s", e.Path)
}

func (e *MissingVideoError) Unwrap() error { return ErrInvalidConfig }

// CountMismatchError reports prompt and video lists of different length.
//
// It matches ErrInvalidConfig via errors.Is.
type CountMismatchError struct {
	Prompts int
	Videos  int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("expected the number of prompts and videos to match, got %d prompts and %d videos", e.Prompts, e.Videos)
}

func (e *CountMismatchError) Unwrap() error { return ErrInvalidConfig }

// IndexOutOfRangeError reports an index outside the dataset.
type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range [0,%d)", e.Index, e.Len)
}

func (e *IndexOutOfRangeError) Unwrap() error { return ErrIndexOutOfRange }
