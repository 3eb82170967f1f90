package preprocess

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/latentset/tensor"
)

var (
	// ErrNotImplemented is returned by Unimplemented.
	ErrNotImplemented = errors.New("preprocess: not implemented")
	// ErrInvalidConfig is returned for invalid pipeline configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Pipeline converts a video into a normalized, fixed-shape frame tensor.
type Pipeline interface {
	// Preprocess decodes videoPath into a [F, C, H, W] tensor of raw intensities.
	Preprocess(ctx context.Context, videoPath string) (*tensor.Tensor, error)
	// Transform maps raw intensities to the encoder's input range.
	Transform(frames *tensor.Tensor) (*tensor.Tensor, error)
}

// Unimplemented is a Pipeline whose methods always fail. Embed it in
// partial pipelines so that missing capabilities fail loudly.
type Unimplemented struct{}

func (Unimplemented) Preprocess(context.Context, string) (*tensor.Tensor, error) {
	return nil, fmt.Errorf("%w: Preprocess", ErrNotImplemented)
}

func (Unimplemented) Transform(*tensor.Tensor) (*tensor.Tensor, error) {
	return nil, fmt.Errorf("%w: Transform", ErrNotImplemented)
}

// ShapeError reports a frame tensor that does not have the promised shape.
type ShapeError struct {
	Path  string
	Shape []int
	Want  string
}

func (e *ShapeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("unexpected frame shape %v: want %s", e.Shape, e.Want)
	}
	return fmt.Sprintf("unexpected frame shape %v for %s: want %s", e.Shape, e.Path, e.Want)
}

// normalize is the Transform shared by both variants: per-frame x/255*2-1,
// restacked along the frame axis.
func normalize(frames *tensor.Tensor) (*tensor.Tensor, error) {
	if frames == nil || frames.Rank() != 4 {
		var shape []int
		if frames != nil {
			shape = frames.Shape()
		}
		return nil, &ShapeError{Shape: shape, Want: "[F, C, H, W]"}
	}
	return tensor.NormalizeFrames(frames)
}
