package preprocess

import (
	"context"
	"fmt"
	"slices"

	"github.com/hupe1980/latentset/tensor"
)

// Bucket is a target (frames, height, width) shape.
type Bucket struct {
	Frames int
	Height int
	Width  int
}

func (b Bucket) String() string {
	return fmt.Sprintf("%dx%dx%d", b.Frames, b.Height, b.Width)
}

// Ratios are the encoder's compression factors per dimension.
type Ratios struct {
	Temporal int
	Height   int
	Width    int
}

// WorkingBuckets divides every raw bucket dimension by its ratio, using
// integer floor division.
func WorkingBuckets(raw []Bucket, r Ratios) []Bucket {
	out := make([]Bucket, len(raw))
	for i, b := range raw {
		out[i] = Bucket{
			Frames: b.Frames / r.Temporal,
			Height: b.Height / r.Height,
			Width:  b.Width / r.Width,
		}
	}
	return out
}

// BucketConfig configures a BucketPipeline.
type BucketConfig struct {
	Buckets []Bucket
	Ratios  Ratios
}

// BucketPipeline fits every video to the closest of a fixed set of buckets.
type BucketPipeline struct {
	buckets []Bucket
	decoder BucketDecoder
}

// NewBucketPipeline computes the working bucket set once and returns a
// pipeline matching against it.
func NewBucketPipeline(cfg BucketConfig, decoder BucketDecoder) (*BucketPipeline, error) {
	r := cfg.Ratios
	if r.Temporal <= 0 || r.Height <= 0 || r.Width <= 0 {
		return nil, fmt.Errorf("%w: compression ratios must be positive, got %d, %d, %d",
			ErrInvalidConfig, r.Temporal, r.Height, r.Width)
	}
	if len(cfg.Buckets) == 0 {
		return nil, fmt.Errorf("%w: no resolution buckets", ErrInvalidConfig)
	}
	for _, b := range cfg.Buckets {
		if b.Frames <= 0 || b.Height <= 0 || b.Width <= 0 {
			return nil, fmt.Errorf("%w: bucket %s has non-positive dimensions", ErrInvalidConfig, b)
		}
	}
	if decoder == nil {
		return nil, fmt.Errorf("%w: bucket decoder is nil", ErrInvalidConfig)
	}
	working := WorkingBuckets(cfg.Buckets, r)
	for i, b := range working {
		if b.Frames <= 0 || b.Height <= 0 || b.Width <= 0 {
			return nil, fmt.Errorf("%w: bucket %s divided by ratios %d, %d, %d gives %s",
				ErrInvalidConfig, cfg.Buckets[i], r.Temporal, r.Height, r.Width, b)
		}
	}
	return &BucketPipeline{buckets: working, decoder: decoder}, nil
}

// Buckets returns a copy of the working bucket set.
func (p *BucketPipeline) Buckets() []Bucket { return slices.Clone(p.buckets) }

// Preprocess implements Pipeline.
func (p *BucketPipeline) Preprocess(ctx context.Context, videoPath string) (*tensor.Tensor, error) {
	frames, err := p.decoder.DecodeBuckets(ctx, videoPath, slices.Clone(p.buckets))
	if err != nil {
		return nil, err
	}
	if frames == nil {
		return nil, &ShapeError{Path: videoPath, Want: fmt.Sprintf("one of %v", p.buckets)}
	}
	if frames.Rank() == 4 {
		got := Bucket{Frames: frames.Dim(0), Height: frames.Dim(2), Width: frames.Dim(3)}
		if slices.Contains(p.buckets, got) {
			return frames, nil
		}
	}
	return nil, &ShapeError{Path: videoPath, Shape: frames.Shape(), Want: fmt.Sprintf("one of %v", p.buckets)}
}

// Transform implements Pipeline.
func (p *BucketPipeline) Transform(frames *tensor.Tensor) (*tensor.Tensor, error) {
	return normalize(frames)
}
