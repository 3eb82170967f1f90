package preprocess

import (
	"context"

	"github.com/hupe1980/latentset/tensor"
)

// ResizeDecoder returns at most maxFrames frames of a video, each resized to
// exactly height x width, as a [F, C, H, W] tensor of 0..255 values.
type ResizeDecoder interface {
	DecodeResize(ctx context.Context, path string, maxFrames, height, width int) (*tensor.Tensor, error)
}

// BucketDecoder picks the closest-fitting bucket for a video and returns its
// frames resampled to exactly that shape.
type BucketDecoder interface {
	DecodeBuckets(ctx context.Context, path string, buckets []Bucket) (*tensor.Tensor, error)
}

// ResizeDecoderFunc adapts a function to ResizeDecoder.
type ResizeDecoderFunc func(ctx context.Context, path string, maxFrames, height, width int) (*tensor.Tensor, error)

func (f ResizeDecoderFunc) DecodeResize(ctx context.Context, path string, maxFrames, height, width int) (*tensor.Tensor, error) {
	return f(ctx, path, maxFrames, height, width)
}

// BucketDecoderFunc adapts a function to BucketDecoder.
type BucketDecoderFunc func(ctx context.Context, path string, buckets []Bucket) (*tensor.Tensor, error)

func (f BucketDecoderFunc) DecodeBuckets(ctx context.Context, path string, buckets []Bucket) (*tensor.Tensor, error) {
	return f(ctx, path, buckets)
}
