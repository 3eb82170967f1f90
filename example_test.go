package latentset_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hupe1980/latentset"
	"github.com/hupe1980/latentset/preprocess"
	"github.com/hupe1980/latentset/tensor"
)

// Example demonstrates computing a latent once and reading it back from the cache.
func Example() {
	root, err := os.MkdirTemp("", "latentset-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(root)

	_ = os.WriteFile(filepath.Join(root, "clip.mp4"), []byte("video"), 0o644)
	_ = os.WriteFile(filepath.Join(root, "prompts.txt"), []byte("a cat playing piano\n"), 0o644)
	_ = os.WriteFile(filepath.Join(root, "videos.txt"), []byte("clip.mp4\n"), 0o644)

	// A stand-in decoder producing mid-gray frames.
	decoder := preprocess.ResizeDecoderFunc(func(_ context.Context, _ string, frames, h, w int) (*tensor.Tensor, error) {
		raw := make([]byte, frames*3*h*w)
		for i := range raw {
			raw[i] = 128
		}
		return tensor.FromUint8([]int{frames, 3, h, w}, raw)
	})
	pipeline, err := preprocess.NewResizePipeline(preprocess.ResizeConfig{MaxFrames: 8, Height: 16, Width: 16}, decoder)
	if err != nil {
		log.Fatal(err)
	}

	encodes := 0
	// A stand-in encoder with 4x temporal and 8x spatial compression.
	encode := func(_ context.Context, batch *tensor.Tensor) (*tensor.Tensor, error) {
		encodes++
		s := batch.Shape()
		return tensor.Zeros(s[0], 16, s[2]/4, s[3]/8, s[4]/8)
	}

	ds, err := latentset.New(root, "prompts.txt", "videos.txt", pipeline, latentset.WithEncoder(encode))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	for range 2 {
		rec, err := ds.At(ctx, 0)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(rec.Prompt, rec.Latent.Shape(), rec.Metadata)
	}
	fmt.Println("encoder calls:", encodes)

	// Output:
	// a cat playing piano [16 2 2 2] {2 2 2}
	// a cat playing piano [16 2 2 2] {2 2 2}
	// encoder calls: 1
}
