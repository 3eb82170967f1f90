package main

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hupe1980/latentset/codec"
	"github.com/hupe1980/latentset/tensor"
)

// processEncoder runs an external command per batch. The batch goes to stdin
// as an uncompressed float32 blob; stdout must hold the encoded latent blob.
type processEncoder struct {
	argv []string
	in   codec.Codec
}

func newProcessEncoder(argv []string) *processEncoder {
	return &processEncoder{argv: argv, in: codec.Codec{DType: codec.Float32, Compression: codec.None}}
}

func (e *processEncoder) Encode(ctx context.Context, batch *tensor.Tensor) (*tensor.Tensor, error) {
	in, err := e.in.Marshal(batch)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, e.argv[0], e.argv[1:]...)
	cmd.Stdin = bytes.NewReader(in)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("encoder %s: %w: %s", e.argv[0], err, strings.TrimSpace(stderr.String()))
	}
	return codec.Unmarshal(out)
}
