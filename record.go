package latentset

import (
	"github.com/hupe1980/latentset/tensor"
)

// Metadata describes the latent's temporal and spatial extent.
type Metadata struct {
	NumFrames int
	Height    int
	Width     int
}

// Record is one retrieved sample.
type Record struct {
	Prompt   string
	Latent   *tensor.Tensor // [C, F, H, W]
	Metadata Metadata
}

func newRecord(prompt, video string, latent *tensor.Tensor) (*Record, error) {
	if latent == nil || latent.Rank() != 4 {
		var shape []int
		if latent != nil {
			shape = latent.Shape()
		}
		return nil, &ShapeError{Path: video, Shape: shape, Want: "latent [C, F, H, W]"}
	}
	return &Record{
		Prompt: prompt,
		Latent: latent,
		Metadata: Metadata{
			NumFrames: latent.Dim(1),
			Height:    latent.Dim(2),
			Width:     latent.Dim(3),
		},
	}, nil
}

// Query selects what Get returns. It is either an Index or Prefetched.
type Query interface {
	isQuery()
}

// Index retrieves the sample at a position.
type Index int

// Prefetched is a batch of records already fetched, typically by a sampler.
// Get returns it unchanged.
type Prefetched []*Record

func (Index) isQuery()      {}
func (Prefetched) isQuery() {}
